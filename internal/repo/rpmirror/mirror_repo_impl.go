package rpmirror

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"olp/backend/internal/entity"
)

// MirrorRepositoryImpl is the MySQL implementation.
type MirrorRepositoryImpl struct {
	db *gorm.DB
}

func NewMirrorRepository(db *gorm.DB) MirrorRepository {
	return &MirrorRepositoryImpl{db: db}
}

func (r *MirrorRepositoryImpl) WithTx(tx *gorm.DB) MirrorRepository {
	return &MirrorRepositoryImpl{db: tx}
}

func (r *MirrorRepositoryImpl) UpsertContacts(ctx context.Context, contacts []entity.MirrorContact) error {
	if len(contacts) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "remote_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"email", "name", "payload", "synced_at", "updated_at"}),
		}).
		Create(&contacts).Error
}

func (r *MirrorRepositoryImpl) UpsertSales(ctx context.Context, sales []entity.MirrorSale) error {
	if len(sales) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "remote_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"reference", "sale_date", "gross_minor", "currency",
				"attachment_count", "payload", "synced_at", "updated_at",
			}),
		}).
		Create(&sales).Error
}

func (r *MirrorRepositoryImpl) UpsertAccounts(ctx context.Context, accounts []entity.MirrorAccount) error {
	if len(accounts) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "code"}},
			DoUpdates: clause.AssignmentColumns([]string{"name", "payload", "synced_at", "updated_at"}),
		}).
		Create(&accounts).Error
}

func (r *MirrorRepositoryImpl) FindSaleByReference(ctx context.Context, reference string) (*entity.MirrorSale, error) {
	var po entity.MirrorSale
	err := r.db.WithContext(ctx).Where("reference = ?", reference).First(&po).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &po, nil
}

func (r *MirrorRepositoryImpl) FindContactByEmail(ctx context.Context, email string) (*entity.MirrorContact, error) {
	var po entity.MirrorContact
	err := r.db.WithContext(ctx).Where("email = ?", strings.ToLower(email)).First(&po).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &po, nil
}

func (r *MirrorRepositoryImpl) ListSales(ctx context.Context, page, limit int) ([]entity.MirrorSale, int64, error) {
	var total int64
	var pos []entity.MirrorSale

	query := r.db.WithContext(ctx).Model(&entity.MirrorSale{})
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	if err := query.Offset(offset).Limit(limit).Order("sale_date DESC").Find(&pos).Error; err != nil {
		return nil, 0, err
	}
	return pos, total, nil
}

func (r *MirrorRepositoryImpl) ListContacts(ctx context.Context, page, limit int) ([]entity.MirrorContact, int64, error) {
	var total int64
	var pos []entity.MirrorContact

	query := r.db.WithContext(ctx).Model(&entity.MirrorContact{})
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	if err := query.Offset(offset).Limit(limit).Order("name ASC").Find(&pos).Error; err != nil {
		return nil, 0, err
	}
	return pos, total, nil
}

func (r *MirrorRepositoryImpl) ListAccounts(ctx context.Context) ([]entity.MirrorAccount, error) {
	var pos []entity.MirrorAccount
	if err := r.db.WithContext(ctx).Order("code ASC").Find(&pos).Error; err != nil {
		return nil, err
	}
	return pos, nil
}
