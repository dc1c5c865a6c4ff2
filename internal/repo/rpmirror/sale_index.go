package rpmirror

import "context"

// SaleIndex adapts the mirror repository to the idempotency guard's
// reference lookup.
type SaleIndex struct {
	repo MirrorRepository
}

func NewSaleIndex(repo MirrorRepository) *SaleIndex {
	return &SaleIndex{repo: repo}
}

func (s *SaleIndex) FindSaleByReference(ctx context.Context, reference string) (string, bool, error) {
	sale, err := s.repo.FindSaleByReference(ctx, reference)
	if err != nil {
		return "", false, err
	}
	if sale == nil {
		return "", false, nil
	}
	return sale.RemoteID, true, nil
}
