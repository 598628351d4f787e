package pricing

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/swiftcart-dev/swiftcart-backend/pkg/db/models"
	"github.com/swiftcart-dev/swiftcart-backend/pkg/enums"
	"github.com/swiftcart-dev/swiftcart-backend/pkg/logger"
	"github.com/swiftcart-dev/swiftcart-backend/pkg/metrics"
)

// CouponSource looks up a live coupon definition by code.
type CouponSource interface {
	FindActiveByCode(ctx context.Context, code string) (*models.Coupon, error)
}

// UsageCounter counts prior redemptions of a coupon by one user.
type UsageCounter interface {
	CountForUser(ctx context.Context, couponID, userID uuid.UUID) (int64, error)
}

// QuoteLine is one cart line with its settled total. Total uses the resale
// price for resale-flagged lines, otherwise unit price times quantity.
type QuoteLine struct {
	Line       *models.CartLine
	TotalCents int
}

// ResellerSummary aggregates the resale lines of a quote. Profit can be zero:
// selling at base price is allowed, selling under it is not.
type ResellerSummary struct {
	OriginalTotalCents int
	ResellerTotalCents int
	ProfitCents        int
}

// Quote is the priced view of a fulfillable cart.
type Quote struct {
	Lines         []QuoteLine
	SubtotalCents int
	DiscountCents int
	ShippingCents int
	PayableCents  int
	Coupon        *models.Coupon
	Reseller      *ResellerSummary
}

// Engine prices fulfillable cart lines and validates coupons against them.
// All monetary math is integer cents; percentage discounts round half-up.
type Engine struct {
	coupons       CouponSource
	usage         UsageCounter
	shippingCents int
	now           func() time.Time
	logg          *logger.Logger
	met           *metrics.CheckoutMetrics
}

// NewEngine constructs a pricing engine. Shipping is a flat fee today but
// stays a named term of the payable equation.
func NewEngine(coupons CouponSource, usage UsageCounter, shippingCents int, logg *logger.Logger, met *metrics.CheckoutMetrics) (*Engine, error) {
	if coupons == nil {
		return nil, fmt.Errorf("coupon source is required")
	}
	if usage == nil {
		return nil, fmt.Errorf("usage counter is required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger is required")
	}
	return &Engine{
		coupons:       coupons,
		usage:         usage,
		shippingCents: shippingCents,
		now:           time.Now,
		logg:          logg,
		met:           met,
	}, nil
}

// Price produces a quote for the given lines. couponCode may be empty. A
// rejected coupon rejects the whole quote: partial application would charge
// an amount the user never saw.
func (e *Engine) Price(ctx context.Context, userID uuid.UUID, lines []models.CartLine, couponCode string) (*Quote, error) {
	quoteLines := make([]QuoteLine, 0, len(lines))
	subtotal := 0
	for i := range lines {
		line := &lines[i]
		if err := validateResaleLine(line); err != nil {
			return nil, err
		}
		total := LineTotal(line)
		quoteLines = append(quoteLines, QuoteLine{Line: line, TotalCents: total})
		subtotal += total
	}

	quote := &Quote{
		Lines:         quoteLines,
		SubtotalCents: subtotal,
		ShippingCents: e.shippingCents,
		Reseller:      resellerSummary(lines),
	}

	if couponCode != "" {
		coupon, discount, err := e.ValidateCoupon(ctx, userID, couponCode, subtotal)
		if err != nil {
			return nil, err
		}
		quote.Coupon = coupon
		quote.DiscountCents = discount
	}

	quote.PayableCents = payable(subtotal, quote.DiscountCents, e.shippingCents)
	return quote, nil
}

// ValidateCoupon runs the ordered check chain and returns the coupon with the
// discount it yields on the given subtotal. The first failed check rejects;
// later checks are not consulted.
func (e *Engine) ValidateCoupon(ctx context.Context, userID uuid.UUID, code string, subtotalCents int) (*models.Coupon, int, error) {
	coupon, err := e.coupons.FindActiveByCode(ctx, code)
	if err != nil {
		return nil, 0, e.reject(ctx, code, enums.CouponRejectionNotFoundOrInactive)
	}

	now := e.now()
	if coupon.StartsAt != nil && now.Before(*coupon.StartsAt) {
		return nil, 0, e.reject(ctx, code, enums.CouponRejectionNotYetActive)
	}
	if coupon.EndsAt != nil && now.After(*coupon.EndsAt) {
		return nil, 0, e.reject(ctx, code, enums.CouponRejectionExpired)
	}
	if coupon.MinOrderCents != nil && subtotalCents < *coupon.MinOrderCents {
		return nil, 0, e.reject(ctx, code, enums.CouponRejectionBelowMinimumOrder)
	}
	if coupon.MaxUses != nil && coupon.UsesCount >= *coupon.MaxUses {
		return nil, 0, e.reject(ctx, code, enums.CouponRejectionUsageCapReached)
	}
	if coupon.PerUserLimit != nil {
		used, err := e.usage.CountForUser(ctx, coupon.ID, userID)
		if err != nil {
			// cannot prove the cap holds, reject rather than over-redeem
			e.logg.Error(ctx, "coupon usage count failed", err)
			return nil, 0, e.reject(ctx, code, enums.CouponRejectionPerUserCapReached)
		}
		if used >= int64(*coupon.PerUserLimit) {
			return nil, 0, e.reject(ctx, code, enums.CouponRejectionPerUserCapReached)
		}
	}

	return coupon, Discount(coupon, subtotalCents), nil
}

func (e *Engine) reject(ctx context.Context, code string, reason enums.CouponRejection) *CouponError {
	e.met.IncCouponRejection(string(reason))
	e.logg.Info(e.logg.WithFields(ctx, map[string]any{"code": code, "reason": string(reason)}), "coupon rejected")
	return rejectCoupon(code, reason)
}

// LineTotal settles one line. A valid resale price replaces the whole line
// total, it is not per-unit.
func LineTotal(line *models.CartLine) int {
	if line.IsResale && line.ResalePriceCents != nil && *line.ResalePriceCents > 0 {
		return *line.ResalePriceCents
	}
	return line.UnitPriceCents * line.Quantity
}

// Discount computes the coupon's cents value on the subtotal, clamped so an
// order can never go negative. Percentage values round half-up.
func Discount(coupon *models.Coupon, subtotalCents int) int {
	var discount int
	switch coupon.DiscountType {
	case enums.DiscountTypePercentage:
		discount = int(decimal.NewFromInt(int64(subtotalCents)).
			Mul(decimal.NewFromInt(int64(coupon.DiscountValue))).
			Div(decimal.NewFromInt(100)).
			Round(0).IntPart())
	case enums.DiscountTypeFixed:
		discount = coupon.DiscountValue
	}
	if discount > subtotalCents {
		discount = subtotalCents
	}
	if discount < 0 {
		discount = 0
	}
	return discount
}

func payable(subtotal, discount, shipping int) int {
	total := subtotal - discount + shipping
	if total < 0 {
		return 0
	}
	return total
}

// validateResaleLine enforces the resale floor: the resale price must be set,
// positive and at least the base total of the line.
func validateResaleLine(line *models.CartLine) error {
	if !line.IsResale {
		return nil
	}
	base := line.UnitPriceCents * line.Quantity
	switch {
	case line.ResalePriceCents == nil:
		return &ResaleError{LineID: line.ID, Detail: "resale price not set"}
	case *line.ResalePriceCents <= 0:
		return &ResaleError{LineID: line.ID, Detail: "resale price must be positive"}
	case *line.ResalePriceCents < base:
		return &ResaleError{LineID: line.ID, Detail: fmt.Sprintf("resale price %d below base total %d", *line.ResalePriceCents, base)}
	}
	return nil
}

// resellerSummary aggregates resale lines. Nil when the cart has none.
func resellerSummary(lines []models.CartLine) *ResellerSummary {
	summary := &ResellerSummary{}
	found := false
	for i := range lines {
		line := &lines[i]
		if !line.IsResale {
			continue
		}
		found = true
		summary.OriginalTotalCents += line.UnitPriceCents * line.Quantity
		summary.ResellerTotalCents += LineTotal(line)
	}
	if !found {
		return nil
	}
	summary.ProfitCents = summary.ResellerTotalCents - summary.OriginalTotalCents
	return summary
}
