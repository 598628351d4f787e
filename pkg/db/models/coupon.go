package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/swiftcart-dev/swiftcart-backend/pkg/enums"
)

// Coupon defines a discount rule. DiscountValue is whole percent for
// percentage coupons and cents for fixed coupons. Optional limits are
// pointers: nil means unrestricted.
type Coupon struct {
	ID            uuid.UUID          `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Code          string             `gorm:"column:code;not null;uniqueIndex"`
	DiscountType  enums.DiscountType `gorm:"column:discount_type;not null"`
	DiscountValue int                `gorm:"column:discount_value;not null"`
	MinOrderCents *int               `gorm:"column:min_order_cents"`
	StartsAt      *time.Time         `gorm:"column:starts_at"`
	EndsAt        *time.Time         `gorm:"column:ends_at"`
	MaxUses       *int               `gorm:"column:max_uses"`
	UsesCount     int                `gorm:"column:uses_count;not null;default:0"`
	PerUserLimit  *int               `gorm:"column:per_user_limit"`
	IsActive      bool               `gorm:"column:is_active;not null;default:true"`
	CreatedAt     time.Time          `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time          `gorm:"column:updated_at;autoUpdateTime"`
}
