package rpqueue

import (
	"context"
	"time"

	"olp/backend/internal/entity"
)

// StatusSummary is the operational view of the queue.
type StatusSummary struct {
	Pending          int64      `json:"pending"`
	InProgress       int64      `json:"in_progress"`
	Done             int64      `json:"done"`
	Failed           int64      `json:"failed"`
	OldestPendingAge string     `json:"oldest_pending_age,omitempty"`
	OldestPendingAt  *time.Time `json:"oldest_pending_at,omitempty"`
}

// QueueRepository persists the durable work queue. Implemented in MySQL;
// entries are never deleted.
type QueueRepository interface {
	// Enqueue inserts a pending entry for orderKey. Returns false when an
	// entry already exists (duplicate delivery), which is not an error.
	Enqueue(ctx context.Context, orderKey, source string) (bool, error)

	// Claim moves a pending or failed entry to in-progress and bumps the
	// attempt counter. Returns nil when the entry is not claimable
	// (already done or currently in progress).
	Claim(ctx context.Context, orderKey string) (*entity.QueueEntry, error)

	// Finish marks the entry done, recording the posting id and the final
	// state-machine step reached.
	Finish(ctx context.Context, orderKey, postingID, lastStep string) error

	// Fail marks the entry failed with the error text and step reached.
	Fail(ctx context.Context, orderKey, lastErr, lastStep string) error

	// Release puts an in-progress entry back to pending after a transient
	// failure so a redelivery can pick it up.
	Release(ctx context.Context, orderKey, lastErr, lastStep string) error

	// Requeue resets a failed entry to pending (operator action).
	Requeue(ctx context.Context, orderKey string) error

	// Get returns the entry for orderKey, or nil.
	Get(ctx context.Context, orderKey string) (*entity.QueueEntry, error)

	// Status returns queue depth per state and the oldest pending age.
	Status(ctx context.Context) (*StatusSummary, error)
}
