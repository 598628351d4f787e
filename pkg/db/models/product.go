package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// Product represents a canonical catalog listing. The checkout engine treats
// this table as read-only.
type Product struct {
	ID          uuid.UUID        `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	SKU         string           `gorm:"column:sku;not null;uniqueIndex"`
	Name        string           `gorm:"column:name;not null"`
	Description *string          `gorm:"column:description"`
	Tags        pq.StringArray   `gorm:"column:tags;type:text[]"`
	PriceCents  int              `gorm:"column:price_cents;not null"`
	StockQty    int              `gorm:"column:stock_qty;not null;default:0"`
	IsActive    bool             `gorm:"column:is_active;not null;default:true"`
	Variants    []ProductVariant `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE"`
	CreatedAt   time.Time        `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time        `gorm:"column:updated_at;autoUpdateTime"`
}
