package models

import (
	"time"

	"github.com/google/uuid"
)

// ResaleLedgerEntry records the reseller margin realized on one resale order
// item. Writes are best-effort side effects of order materialization.
type ResaleLedgerEntry struct {
	ID          uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderID     uuid.UUID `gorm:"column:order_id;type:uuid;not null;index"`
	OrderItemID uuid.UUID `gorm:"column:order_item_id;type:uuid;not null"`
	UserID      uuid.UUID `gorm:"column:user_id;type:uuid;not null;index"`
	BaseCents   int       `gorm:"column:base_cents;not null"`
	ResaleCents int       `gorm:"column:resale_cents;not null"`
	MarginCents int       `gorm:"column:margin_cents;not null"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime"`
}
