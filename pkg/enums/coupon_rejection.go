package enums

import "fmt"

// CouponRejection enumerates why a coupon failed validation. Validation stops
// at the first failing check, so a rejection carries exactly one reason.
type CouponRejection string

const (
	CouponRejectionNotFoundOrInactive CouponRejection = "not_found_or_inactive"
	CouponRejectionNotYetActive       CouponRejection = "not_yet_active"
	CouponRejectionExpired            CouponRejection = "expired"
	CouponRejectionBelowMinimumOrder  CouponRejection = "below_minimum_order"
	CouponRejectionUsageCapReached    CouponRejection = "usage_cap_reached"
	CouponRejectionPerUserCapReached  CouponRejection = "per_user_cap_reached"
)

var validCouponRejections = []CouponRejection{
	CouponRejectionNotFoundOrInactive,
	CouponRejectionNotYetActive,
	CouponRejectionExpired,
	CouponRejectionBelowMinimumOrder,
	CouponRejectionUsageCapReached,
	CouponRejectionPerUserCapReached,
}

// String implements fmt.Stringer.
func (c CouponRejection) String() string {
	return string(c)
}

// IsValid reports whether the value is a known CouponRejection.
func (c CouponRejection) IsValid() bool {
	for _, candidate := range validCouponRejections {
		if candidate == c {
			return true
		}
	}
	return false
}

// ParseCouponRejection converts raw input into a CouponRejection.
func ParseCouponRejection(value string) (CouponRejection, error) {
	for _, candidate := range validCouponRejections {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid coupon rejection %q", value)
}
