package rpcheckpoint

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"olp/backend/internal/entity"
)

// CheckpointRepository persists durable sync markers.
type CheckpointRepository interface {
	// Get returns the checkpoint value for key, or "" when none exists.
	Get(ctx context.Context, key string) (string, error)

	// Set upserts the checkpoint. Callers invoke this inside the same
	// transaction that commits the batch the checkpoint describes.
	Set(ctx context.Context, key, value string) error

	// All returns every checkpoint, for the ops status endpoint.
	All(ctx context.Context) ([]entity.Checkpoint, error)
}

// CheckpointRepositoryImpl is the MySQL implementation.
type CheckpointRepositoryImpl struct {
	db *gorm.DB
}

func NewCheckpointRepository(db *gorm.DB) CheckpointRepository {
	return &CheckpointRepositoryImpl{db: db}
}

func (r *CheckpointRepositoryImpl) Get(ctx context.Context, key string) (string, error) {
	var po entity.Checkpoint
	err := r.db.WithContext(ctx).Where("ckpt_key = ?", key).First(&po).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", nil
		}
		return "", err
	}
	return po.Value, nil
}

func (r *CheckpointRepositoryImpl) Set(ctx context.Context, key, value string) error {
	po := entity.Checkpoint{
		Key:       key,
		Value:     value,
		UpdatedAt: time.Now(),
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "ckpt_key"}},
			DoUpdates: clause.AssignmentColumns([]string{"ckpt_value", "updated_at"}),
		}).
		Create(&po).Error
}

func (r *CheckpointRepositoryImpl) All(ctx context.Context) ([]entity.Checkpoint, error) {
	var pos []entity.Checkpoint
	if err := r.db.WithContext(ctx).Order("ckpt_key ASC").Find(&pos).Error; err != nil {
		return nil, err
	}
	return pos, nil
}
