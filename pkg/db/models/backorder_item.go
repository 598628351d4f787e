package models

import (
	"time"

	"github.com/google/uuid"
)

// BackorderItem records one out-of-stock line inside a draft. ProductID is
// never null here: unresolvable lines are skipped before drafting.
// AvailableQty captures the stock level observed at partition time for
// reporting.
type BackorderItem struct {
	ID             uuid.UUID  `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	DraftID        uuid.UUID  `gorm:"column:draft_id;type:uuid;not null;index"`
	ProductID      uuid.UUID  `gorm:"column:product_id;type:uuid;not null"`
	VariantID      *uuid.UUID `gorm:"column:variant_id;type:uuid"`
	Name           string     `gorm:"column:name;not null"`
	Qty            int        `gorm:"column:qty;not null"`
	UnitPriceCents int        `gorm:"column:unit_price_cents;not null"`
	AvailableQty   int        `gorm:"column:available_qty;not null;default:0"`
	CreatedAt      time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}
