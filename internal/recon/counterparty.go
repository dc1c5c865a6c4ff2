package recon

import (
	"context"

	"olp/backend/internal/ledger"
	"olp/backend/pkg/logger"
)

// fallbackContactName labels counterparties for orders without any
// usable customer name.
const fallbackContactName = "Webshop customer"

// ContactDirectory is the slice of the ledger gateway the resolver needs.
type ContactDirectory interface {
	SearchContactByEmail(ctx context.Context, email string) (*ledger.Contact, error)
	CreateContact(ctx context.Context, req ledger.ContactRequest) (*ledger.Contact, error)
}

// CounterpartyCache dedups counterparty creation within one run. It is
// created per batch and passed in explicitly, so no state leaks across
// runs.
type CounterpartyCache struct {
	byKey map[string]*ledger.Contact
}

func NewCounterpartyCache() *CounterpartyCache {
	return &CounterpartyCache{byKey: make(map[string]*ledger.Contact)}
}

func (c *CounterpartyCache) get(key string) *ledger.Contact {
	return c.byKey[key]
}

func (c *CounterpartyCache) put(key string, contact *ledger.Contact) {
	c.byKey[key] = contact
}

// CounterpartyResolver finds or creates the ledger contact for an order.
// Lookup order: run cache, remote search by email, create.
type CounterpartyResolver struct {
	dir    ContactDirectory
	cache  *CounterpartyCache
	logger logger.Logger
}

func NewCounterpartyResolver(dir ContactDirectory, cache *CounterpartyCache, log logger.Logger) *CounterpartyResolver {
	return &CounterpartyResolver{
		dir:    dir,
		cache:  cache,
		logger: log,
	}
}

// Resolve returns the counterparty for the order, creating it remotely
// on a true cache-and-search miss.
//
// A failed remote search is logged and treated as "not found": a
// duplicate contact is a lesser harm than a stalled pipeline.
func (r *CounterpartyResolver) Resolve(ctx context.Context, o Order) (*ledger.Contact, error) {
	key := o.CounterpartyKey()

	if contact := r.cache.get(key); contact != nil {
		return contact, nil
	}

	email := o.Contact.Email
	if email != "" {
		contact, err := r.dir.SearchContactByEmail(ctx, email)
		if err != nil {
			r.logger.Warnf(ctx, "[CounterpartyResolver] contact search failed for %s, proceeding to create: %v", key, err)
		} else if contact != nil {
			r.cache.put(key, contact)
			return contact, nil
		}
	}

	contact, err := r.dir.CreateContact(ctx, buildContactRequest(o))
	if err != nil {
		return nil, err
	}

	r.cache.put(key, contact)
	r.logger.Infof(ctx, "[CounterpartyResolver] created counterparty %s for %s", contact.ID, key)
	return contact, nil
}

func buildContactRequest(o Order) ledger.ContactRequest {
	name := o.Contact.Name
	if name == "" {
		name = fallbackContactName
	}
	return ledger.ContactRequest{
		Name:    name,
		Email:   o.Contact.Email,
		Address: o.Contact.Address,
		City:    o.Contact.City,
		ZipCode: o.Contact.ZipCode,
		Country: o.Contact.Country,
	}
}
