package entity

import "time"

// Checkpoint is a durable key/value marker of sync progress. It is
// advanced only after the batch it describes has fully committed.
type Checkpoint struct {
	Key       string    `gorm:"column:ckpt_key;primaryKey;type:varchar(64)"`
	Value     string    `gorm:"column:ckpt_value;type:varchar(255);not null"`
	UpdatedAt time.Time `gorm:"column:updated_at;not null"`
}

func (Checkpoint) TableName() string {
	return "checkpoints"
}

// Well-known checkpoint keys.
const (
	CheckpointSyncContacts = "sync:contacts"
	CheckpointSyncSales    = "sync:sales"
	CheckpointSyncAccounts = "sync:accounts"
)
