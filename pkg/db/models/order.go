package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/swiftcart-dev/swiftcart-backend/pkg/enums"
)

// Order is a confirmed order header. Address and customer fields are
// denormalized snapshots: later edits to the address book must never alter a
// persisted order.
type Order struct {
	ID            uuid.UUID           `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	UserID        uuid.UUID           `gorm:"column:user_id;type:uuid;not null;index"`
	OrderNumber   string              `gorm:"column:order_number;not null;uniqueIndex"`
	Status        enums.OrderStatus   `gorm:"column:status;not null;default:'pending'"`
	PaymentMethod enums.PaymentMethod `gorm:"column:payment_method;not null;default:'cash_on_delivery'"`
	PaymentStatus enums.PaymentStatus `gorm:"column:payment_status;not null;default:'unpaid'"`
	SubtotalCents int                 `gorm:"column:subtotal_cents;not null"`
	DiscountCents int                 `gorm:"column:discount_cents;not null;default:0"`
	ShippingCents int                 `gorm:"column:shipping_cents;not null;default:0"`
	TotalCents    int                 `gorm:"column:total_cents;not null"`
	CouponID      *uuid.UUID          `gorm:"column:coupon_id;type:uuid"`

	ShipToName       string  `gorm:"column:ship_to_name;not null"`
	ShipToPhone      string  `gorm:"column:ship_to_phone;not null"`
	ShipToLine1      string  `gorm:"column:ship_to_line1;not null"`
	ShipToLine2      *string `gorm:"column:ship_to_line2"`
	ShipToCity       string  `gorm:"column:ship_to_city;not null"`
	ShipToState      string  `gorm:"column:ship_to_state;not null"`
	ShipToPostalCode string  `gorm:"column:ship_to_postal_code;not null"`
	ShipToCountry    string  `gorm:"column:ship_to_country;not null"`

	Items     []OrderItem `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	CreatedAt time.Time   `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time   `gorm:"column:updated_at;autoUpdateTime"`
}
