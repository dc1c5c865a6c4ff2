package entity

import (
	"time"

	"gorm.io/datatypes"
)

// MirrorContact is a local read copy of a remote ledger contact, keyed by
// the authoritative remote id. Refreshed by the sync pass.
type MirrorContact struct {
	RemoteID  string         `gorm:"column:remote_id;primaryKey;type:varchar(64)"`
	Email     string         `gorm:"column:email;type:varchar(255);index:idx_contact_email"`
	Name      string         `gorm:"column:name;type:varchar(255)"`
	Payload   datatypes.JSON `gorm:"column:payload;type:json"`
	SyncedAt  time.Time      `gorm:"column:synced_at;not null"`
	CreatedAt time.Time      `gorm:"column:created_at;not null"`
	UpdatedAt time.Time      `gorm:"column:updated_at;not null"`
}

func (MirrorContact) TableName() string {
	return "mirror_contacts"
}

// MirrorSale is a local read copy of a remote posting. Reference holds the
// business key, so the idempotency guard can answer from the mirror.
type MirrorSale struct {
	RemoteID        string         `gorm:"column:remote_id;primaryKey;type:varchar(64)"`
	Reference       string         `gorm:"column:reference;type:varchar(64);index:idx_sale_reference"`
	Date            string         `gorm:"column:sale_date;type:varchar(10)"`
	GrossMinor      int64          `gorm:"column:gross_minor;not null;default:0"`
	Currency        string         `gorm:"column:currency;type:varchar(3)"`
	AttachmentCount int            `gorm:"column:attachment_count;not null;default:0"`
	Payload         datatypes.JSON `gorm:"column:payload;type:json"`
	SyncedAt        time.Time      `gorm:"column:synced_at;not null"`
	CreatedAt       time.Time      `gorm:"column:created_at;not null"`
	UpdatedAt       time.Time      `gorm:"column:updated_at;not null"`
}

func (MirrorSale) TableName() string {
	return "mirror_sales"
}

// MirrorAccount is a local read copy of the remote chart of accounts.
type MirrorAccount struct {
	Code      string         `gorm:"column:code;primaryKey;type:varchar(16)"`
	Name      string         `gorm:"column:name;type:varchar(255)"`
	Payload   datatypes.JSON `gorm:"column:payload;type:json"`
	SyncedAt  time.Time      `gorm:"column:synced_at;not null"`
	CreatedAt time.Time      `gorm:"column:created_at;not null"`
	UpdatedAt time.Time      `gorm:"column:updated_at;not null"`
}

func (MirrorAccount) TableName() string {
	return "mirror_accounts"
}
