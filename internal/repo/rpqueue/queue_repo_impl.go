package rpqueue

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"olp/backend/internal/entity"
)

// QueueRepositoryImpl is the MySQL implementation.
type QueueRepositoryImpl struct {
	db *gorm.DB
}

// NewQueueRepository builds the MySQL-backed queue repository.
func NewQueueRepository(db *gorm.DB) QueueRepository {
	return &QueueRepositoryImpl{db: db}
}

// Enqueue relies on the unique index on order_key: a second delivery of
// the same order becomes a no-op insert.
func (r *QueueRepositoryImpl) Enqueue(ctx context.Context, orderKey, source string) (bool, error) {
	now := time.Now()
	po := &entity.QueueEntry{
		OrderKey:  orderKey,
		State:     entity.QueueStatePending,
		Source:    source,
		CreatedAt: now,
		UpdatedAt: now,
	}

	res := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(po)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *QueueRepositoryImpl) Claim(ctx context.Context, orderKey string) (*entity.QueueEntry, error) {
	var claimed *entity.QueueEntry

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var po entity.QueueEntry
		err := tx.
			Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("order_key = ?", orderKey).
			First(&po).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil
			}
			return err
		}

		if po.State != entity.QueueStatePending && po.State != entity.QueueStateFailed {
			return nil
		}

		updates := map[string]interface{}{
			"state":      entity.QueueStateInProgress,
			"attempts":   po.Attempts + 1,
			"updated_at": time.Now(),
		}
		if err := tx.Model(&entity.QueueEntry{}).
			Where("id = ?", po.ID).
			Updates(updates).Error; err != nil {
			return err
		}

		po.State = entity.QueueStateInProgress
		po.Attempts++
		claimed = &po
		return nil
	})
	if err != nil {
		return nil, err
	}
	return claimed, nil
}

func (r *QueueRepositoryImpl) Finish(ctx context.Context, orderKey, postingID, lastStep string) error {
	return r.transition(ctx, orderKey, map[string]interface{}{
		"state":      entity.QueueStateDone,
		"last_error": "",
		"last_step":  lastStep,
		"posting_id": postingID,
		"updated_at": time.Now(),
	})
}

func (r *QueueRepositoryImpl) Fail(ctx context.Context, orderKey, lastErr, lastStep string) error {
	return r.transition(ctx, orderKey, map[string]interface{}{
		"state":      entity.QueueStateFailed,
		"last_error": lastErr,
		"last_step":  lastStep,
		"updated_at": time.Now(),
	})
}

func (r *QueueRepositoryImpl) Release(ctx context.Context, orderKey, lastErr, lastStep string) error {
	return r.transition(ctx, orderKey, map[string]interface{}{
		"state":      entity.QueueStatePending,
		"last_error": lastErr,
		"last_step":  lastStep,
		"updated_at": time.Now(),
	})
}

func (r *QueueRepositoryImpl) Requeue(ctx context.Context, orderKey string) error {
	return r.db.WithContext(ctx).Model(&entity.QueueEntry{}).
		Where("order_key = ? AND state = ?", orderKey, entity.QueueStateFailed).
		Updates(map[string]interface{}{
			"state":      entity.QueueStatePending,
			"updated_at": time.Now(),
		}).Error
}

func (r *QueueRepositoryImpl) Get(ctx context.Context, orderKey string) (*entity.QueueEntry, error) {
	var po entity.QueueEntry
	err := r.db.WithContext(ctx).Where("order_key = ?", orderKey).First(&po).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &po, nil
}

func (r *QueueRepositoryImpl) Status(ctx context.Context) (*StatusSummary, error) {
	summary := &StatusSummary{}

	type stateCount struct {
		State string
		N     int64
	}
	var counts []stateCount
	if err := r.db.WithContext(ctx).Model(&entity.QueueEntry{}).
		Select("state, COUNT(*) AS n").
		Group("state").
		Scan(&counts).Error; err != nil {
		return nil, err
	}
	for _, c := range counts {
		switch c.State {
		case entity.QueueStatePending:
			summary.Pending = c.N
		case entity.QueueStateInProgress:
			summary.InProgress = c.N
		case entity.QueueStateDone:
			summary.Done = c.N
		case entity.QueueStateFailed:
			summary.Failed = c.N
		}
	}

	var oldest entity.QueueEntry
	err := r.db.WithContext(ctx).
		Where("state = ?", entity.QueueStatePending).
		Order("created_at ASC").
		First(&oldest).Error
	if err == nil {
		summary.OldestPendingAt = &oldest.CreatedAt
		summary.OldestPendingAge = time.Since(oldest.CreatedAt).Truncate(time.Second).String()
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	return summary, nil
}

func (r *QueueRepositoryImpl) transition(ctx context.Context, orderKey string, updates map[string]interface{}) error {
	return r.db.WithContext(ctx).Model(&entity.QueueEntry{}).
		Where("order_key = ?", orderKey).
		Updates(updates).Error
}
