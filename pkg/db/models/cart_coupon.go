package models

import (
	"time"

	"github.com/google/uuid"
)

// CartCoupon records the coupon code a user has applied to their live cart.
// The code is re-validated against the coupon table at checkout time; this
// row only carries intent.
type CartCoupon struct {
	UserID    uuid.UUID `gorm:"column:user_id;type:uuid;primaryKey"`
	Code      string    `gorm:"column:code;not null"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
