package rpmirror

import (
	"context"

	"gorm.io/gorm"

	"olp/backend/internal/entity"
)

// MirrorRepository maintains the local read copy of remote ledger state.
// Written by the sync pass and by the worker after successful creates;
// read by the idempotency guard and the ops mirror endpoints.
type MirrorRepository interface {
	UpsertContacts(ctx context.Context, contacts []entity.MirrorContact) error
	UpsertSales(ctx context.Context, sales []entity.MirrorSale) error
	UpsertAccounts(ctx context.Context, accounts []entity.MirrorAccount) error

	// FindSaleByReference answers the idempotency guard from local state.
	FindSaleByReference(ctx context.Context, reference string) (*entity.MirrorSale, error)
	FindContactByEmail(ctx context.Context, email string) (*entity.MirrorContact, error)

	ListSales(ctx context.Context, page, limit int) ([]entity.MirrorSale, int64, error)
	ListContacts(ctx context.Context, page, limit int) ([]entity.MirrorContact, int64, error)
	ListAccounts(ctx context.Context) ([]entity.MirrorAccount, error)

	// WithTx returns a repository bound to tx so a sync page-set and its
	// checkpoint can commit atomically.
	WithTx(tx *gorm.DB) MirrorRepository
}
