package recon

import (
	"context"

	"olp/backend/internal/ledger"
	"olp/backend/pkg/logger"
)

// SaleIndex is a local read model of already-created postings, used to
// answer "does this business key exist" without a remote call.
type SaleIndex interface {
	FindSaleByReference(ctx context.Context, reference string) (remoteID string, found bool, err error)
}

// SaleSearcher is the slice of the ledger gateway the guard needs.
type SaleSearcher interface {
	SearchSaleByRef(ctx context.Context, reference string) (*ledger.Sale, error)
}

// IdempotencyGuard decides whether a posting for a business key already
// exists. It consults the local mirror first and falls back to a remote
// search; a mirror failure degrades to the remote check rather than
// risking a duplicate posting.
type IdempotencyGuard struct {
	index    SaleIndex
	searcher SaleSearcher
	logger   logger.Logger
}

func NewIdempotencyGuard(index SaleIndex, searcher SaleSearcher, log logger.Logger) *IdempotencyGuard {
	return &IdempotencyGuard{
		index:    index,
		searcher: searcher,
		logger:   log,
	}
}

// Existing returns the remote posting for the business key, or nil when
// none exists yet.
func (g *IdempotencyGuard) Existing(ctx context.Context, businessKey string) (*ledger.Sale, error) {
	if g.index != nil {
		remoteID, found, err := g.index.FindSaleByReference(ctx, businessKey)
		if err != nil {
			g.logger.Warnf(ctx, "[IdempotencyGuard] mirror lookup failed for %s, falling back to remote: %v", businessKey, err)
		} else if found {
			// The mirror proves existence but may lag on settlement and
			// attachment state, so re-read the authoritative record.
			sale, err := g.searcher.SearchSaleByRef(ctx, businessKey)
			if err != nil {
				return nil, err
			}
			if sale != nil {
				return sale, nil
			}
			g.logger.Warnf(ctx, "[IdempotencyGuard] mirror has %s (remote %s) but remote search came back empty, treating as new", businessKey, remoteID)
			return nil, nil
		}
	}

	return g.searcher.SearchSaleByRef(ctx, businessKey)
}
