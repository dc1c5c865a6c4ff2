package recon

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"olp/backend/internal/ledger"
	"olp/backend/pkg/logger"
)

type fakeDirectory struct {
	contacts    map[string]*ledger.Contact // by email
	searchErr   error
	createErr   error
	searchCalls int
	createCalls int
}

func (d *fakeDirectory) SearchContactByEmail(ctx context.Context, email string) (*ledger.Contact, error) {
	d.searchCalls++
	if d.searchErr != nil {
		return nil, d.searchErr
	}
	return d.contacts[email], nil
}

func (d *fakeDirectory) CreateContact(ctx context.Context, req ledger.ContactRequest) (*ledger.Contact, error) {
	d.createCalls++
	if d.createErr != nil {
		return nil, d.createErr
	}
	c := &ledger.Contact{ID: "created-1", Name: req.Name, Email: req.Email}
	return c, nil
}

func TestResolveFindsExistingContact(t *testing.T) {
	dir := &fakeDirectory{contacts: map[string]*ledger.Contact{
		"kari@example.com": {ID: "c-77", Name: "Kari Nordmann", Email: "kari@example.com"},
	}}
	r := NewCounterpartyResolver(dir, NewCounterpartyCache(), logger.NopLogger{})

	o := Order{ID: "1", Contact: Contact{Email: "kari@example.com", Name: "Kari Nordmann"}}
	contact, err := r.Resolve(context.Background(), o)
	require.NoError(t, err)
	assert.Equal(t, "c-77", contact.ID)
	assert.Equal(t, 0, dir.createCalls)
}

func TestResolveCreatesOnMiss(t *testing.T) {
	dir := &fakeDirectory{contacts: map[string]*ledger.Contact{}}
	r := NewCounterpartyResolver(dir, NewCounterpartyCache(), logger.NopLogger{})

	o := Order{ID: "1", Contact: Contact{Email: "new@example.com", Name: "New Customer"}}
	contact, err := r.Resolve(context.Background(), o)
	require.NoError(t, err)
	assert.Equal(t, "created-1", contact.ID)
	assert.Equal(t, 1, dir.createCalls)
}

func TestResolveCachesWithinRun(t *testing.T) {
	dir := &fakeDirectory{contacts: map[string]*ledger.Contact{}}
	cache := NewCounterpartyCache()
	r := NewCounterpartyResolver(dir, cache, logger.NopLogger{})

	o := Order{ID: "1", Contact: Contact{Email: "repeat@example.com"}}
	_, err := r.Resolve(context.Background(), o)
	require.NoError(t, err)
	_, err = r.Resolve(context.Background(), o)
	require.NoError(t, err)

	assert.Equal(t, 1, dir.searchCalls)
	assert.Equal(t, 1, dir.createCalls)
}

func TestResolveSearchFailureProceedsToCreate(t *testing.T) {
	dir := &fakeDirectory{searchErr: errors.New("ledger unavailable")}
	r := NewCounterpartyResolver(dir, NewCounterpartyCache(), logger.NopLogger{})

	o := Order{ID: "1", Contact: Contact{Email: "x@example.com"}}
	contact, err := r.Resolve(context.Background(), o)
	require.NoError(t, err)
	assert.Equal(t, "created-1", contact.ID)
}

func TestResolveFallbackName(t *testing.T) {
	dir := &fakeDirectory{}
	r := NewCounterpartyResolver(dir, NewCounterpartyCache(), logger.NopLogger{})

	// No email and no name: synthetic key, placeholder name.
	o := Order{ID: "42", Contact: Contact{}}
	contact, err := r.Resolve(context.Background(), o)
	require.NoError(t, err)
	assert.Equal(t, "Webshop customer", contact.Name)
	assert.Equal(t, 0, dir.searchCalls)
}
