package models

import (
	"time"

	"github.com/google/uuid"
)

// CartLine is one user-selected quantity of a product awaiting checkout.
// RawProductRef is whatever identifier the client captured when the line was
// added: a product id, a SKU, a composite id, or a free-form name. The
// resolver maps it back to the catalog at checkout time.
//
// CachedStockQty snapshots the stock the client saw when the line was added.
// It is the degraded-mode fallback when a live lookup fails and is never
// trusted over a live read.
type CartLine struct {
	ID               uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	UserID           uuid.UUID `gorm:"column:user_id;type:uuid;not null;index"`
	RawProductRef    string    `gorm:"column:raw_product_ref;not null"`
	SizeHint         *string   `gorm:"column:size_hint"`
	ColorHint        *string   `gorm:"column:color_hint"`
	Quantity         int       `gorm:"column:quantity;not null"`
	UnitPriceCents   int       `gorm:"column:unit_price_cents;not null"`
	IsResale         bool      `gorm:"column:is_resale;not null;default:false"`
	ResalePriceCents *int      `gorm:"column:resale_price_cents"`
	CachedStockQty   *int      `gorm:"column:cached_stock_qty"`
	CreatedAt        time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt        time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
