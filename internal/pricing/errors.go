package pricing

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/swiftcart-dev/swiftcart-backend/pkg/enums"
)

// CouponError carries the first validation check a coupon failed. Later
// checks are never evaluated.
type CouponError struct {
	Code   string
	Reason enums.CouponRejection
}

func (e *CouponError) Error() string {
	return fmt.Sprintf("coupon %q rejected: %s", e.Code, e.Reason)
}

func rejectCoupon(code string, reason enums.CouponRejection) *CouponError {
	return &CouponError{Code: code, Reason: reason}
}

// ResaleError marks a resale-flagged line whose resale price violates the
// floor of its base total.
type ResaleError struct {
	LineID uuid.UUID
	Detail string
}

func (e *ResaleError) Error() string {
	return fmt.Sprintf("resale line %s invalid: %s", e.LineID, e.Detail)
}
