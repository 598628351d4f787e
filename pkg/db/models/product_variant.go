package models

import (
	"time"

	"github.com/google/uuid"
)

// ProductVariant is one size/color combination of a product with its own
// live stock count.
type ProductVariant struct {
	ID           uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	ProductID    uuid.UUID `gorm:"column:product_id;type:uuid;not null;index"`
	SizeLabel    string    `gorm:"column:size_label;not null;default:''"`
	ColorLabel   string    `gorm:"column:color_label;not null;default:''"`
	AvailableQty int       `gorm:"column:available_qty;not null;default:0"`
	CreatedAt    time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
