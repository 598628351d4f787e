package enums

import "fmt"

// CheckoutFailure categorizes the hard-failure outcomes of a checkout attempt.
// Soft failures (unresolvable lines, stock misses, ledger sync) never surface
// here; they degrade inside the engine.
type CheckoutFailure string

const (
	CheckoutFailureEmptyCart          CheckoutFailure = "empty_cart"
	CheckoutFailureAddressMissing     CheckoutFailure = "address_missing"
	CheckoutFailureResalePriceInvalid CheckoutFailure = "resale_price_invalid"
	CheckoutFailureCouponInvalid      CheckoutFailure = "coupon_invalid"
	CheckoutFailurePersistence        CheckoutFailure = "persistence_failure"
)

var validCheckoutFailures = []CheckoutFailure{
	CheckoutFailureEmptyCart,
	CheckoutFailureAddressMissing,
	CheckoutFailureResalePriceInvalid,
	CheckoutFailureCouponInvalid,
	CheckoutFailurePersistence,
}

// String implements fmt.Stringer.
func (c CheckoutFailure) String() string {
	return string(c)
}

// IsValid reports whether the value is a known CheckoutFailure.
func (c CheckoutFailure) IsValid() bool {
	for _, candidate := range validCheckoutFailures {
		if candidate == c {
			return true
		}
	}
	return false
}

// ParseCheckoutFailure converts raw input into a CheckoutFailure.
func ParseCheckoutFailure(value string) (CheckoutFailure, error) {
	for _, candidate := range validCheckoutFailures {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid checkout failure %q", value)
}
