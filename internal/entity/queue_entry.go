package entity

import (
	"time"
)

// Queue entry states. Entries are never deleted; the table doubles as the
// audit trail of every reconciliation attempt.
const (
	QueueStatePending    = "PENDING"
	QueueStateInProgress = "IN_PROGRESS"
	QueueStateDone       = "DONE"
	QueueStateFailed     = "FAILED"
)

// QueueEntry is one order waiting for (or finished with) reconciliation.
// The unique index on order_key is the ingestion-side dedup primitive.
type QueueEntry struct {
	ID        uint64 `gorm:"column:id;primaryKey;autoIncrement"`
	OrderKey  string `gorm:"column:order_key;type:varchar(64);not null;uniqueIndex:uk_order_key"`
	State     string `gorm:"column:state;type:varchar(16);not null;default:'PENDING';index:idx_state"`
	Attempts  int    `gorm:"column:attempts;not null;default:0"`
	LastError string `gorm:"column:last_error;type:text"`
	// LastStep records how far the state machine got, for triage.
	LastStep string `gorm:"column:last_step;type:varchar(32)"`
	// PostingID is the remote ledger id once a posting exists.
	PostingID string    `gorm:"column:posting_id;type:varchar(64)"`
	Source    string    `gorm:"column:source;type:varchar(16);not null;default:'webhook'"`
	CreatedAt time.Time `gorm:"column:created_at;not null;index:idx_created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at;not null"`
}

func (QueueEntry) TableName() string {
	return "queue_entries"
}

// Enqueue sources.
const (
	QueueSourceWebhook  = "webhook"
	QueueSourceBackfill = "backfill"
	QueueSourceManual   = "manual"
)
