package models

import (
	"time"

	"github.com/google/uuid"
)

// CouponUsage is the usage ledger: one row per (coupon, user, order)
// application. Per-user caps are enforced by counting these rows.
type CouponUsage struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	CouponID  uuid.UUID `gorm:"column:coupon_id;type:uuid;not null;index:idx_coupon_usages_coupon_user"`
	UserID    uuid.UUID `gorm:"column:user_id;type:uuid;not null;index:idx_coupon_usages_coupon_user"`
	OrderID   uuid.UUID `gorm:"column:order_id;type:uuid;not null"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}
