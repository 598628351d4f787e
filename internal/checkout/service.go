package checkout

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/swiftcart-dev/swiftcart-backend/internal/availability"
	"github.com/swiftcart-dev/swiftcart-backend/internal/backorders"
	"github.com/swiftcart-dev/swiftcart-backend/internal/cart"
	"github.com/swiftcart-dev/swiftcart-backend/internal/orders"
	"github.com/swiftcart-dev/swiftcart-backend/internal/pricing"
	"github.com/swiftcart-dev/swiftcart-backend/pkg/db"
	"github.com/swiftcart-dev/swiftcart-backend/pkg/db/models"
	"github.com/swiftcart-dev/swiftcart-backend/pkg/enums"
	pkgerrors "github.com/swiftcart-dev/swiftcart-backend/pkg/errors"
	"github.com/swiftcart-dev/swiftcart-backend/pkg/logger"
	"github.com/swiftcart-dev/swiftcart-backend/pkg/metrics"
)

type partitioner interface {
	Partition(ctx context.Context, lines []models.CartLine) (inStock, outOfStock []availability.ResolvedLine)
}

type pricer interface {
	Price(ctx context.Context, userID uuid.UUID, lines []models.CartLine, couponCode string) (*pricing.Quote, error)
	ValidateCoupon(ctx context.Context, userID uuid.UUID, code string, subtotalCents int) (*models.Coupon, int, error)
}

type orderMaterializer interface {
	Materialize(ctx context.Context, input orders.MaterializeInput) (*models.Order, error)
}

type backorderMaterializer interface {
	Materialize(ctx context.Context, userID uuid.UUID, lines []availability.ResolvedLine) (*backorders.Result, error)
}

type addressLoader interface {
	DefaultForUser(ctx context.Context, userID uuid.UUID) (*models.Address, error)
}

// Service runs the checkout state machine: one terminal outcome per attempt,
// hard failures abort before any order persistence.
type Service interface {
	Checkout(ctx context.Context, userID uuid.UUID, input Input) (*Result, error)
	ApplyCoupon(ctx context.Context, userID uuid.UUID, code string) (*CouponApplication, error)
}

// Input captures the payment intent of one checkout attempt. Cash on
// delivery is the only method today.
type Input struct {
	PaymentMethod enums.PaymentMethod
}

// Result is a successful terminal outcome. Order is nil when every line went
// to backorder; Backorder is nil when everything was in stock.
type Result struct {
	Order     *models.Order
	Backorder *backorders.Result
}

// CouponApplication reports the discount a freshly applied coupon yields on
// the current cart.
type CouponApplication struct {
	Code          string
	DiscountCents int
}

type service struct {
	cartStore cart.Store
	partition partitioner
	pricer    pricer
	orders    orderMaterializer
	backorder backorderMaterializer
	addresses addressLoader
	logg      *logger.Logger
	met       *metrics.CheckoutMetrics
}

// NewService builds the checkout orchestrator.
func NewService(
	cartStore cart.Store,
	partition partitioner,
	price pricer,
	orderMat orderMaterializer,
	backorderMat backorderMaterializer,
	addresses addressLoader,
	logg *logger.Logger,
	met *metrics.CheckoutMetrics,
) (Service, error) {
	if cartStore == nil {
		return nil, fmt.Errorf("cart store required")
	}
	if partition == nil {
		return nil, fmt.Errorf("partitioner required")
	}
	if price == nil {
		return nil, fmt.Errorf("pricer required")
	}
	if orderMat == nil {
		return nil, fmt.Errorf("order materializer required")
	}
	if backorderMat == nil {
		return nil, fmt.Errorf("backorder materializer required")
	}
	if addresses == nil {
		return nil, fmt.Errorf("address loader required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{
		cartStore: cartStore,
		partition: partition,
		pricer:    price,
		orders:    orderMat,
		backorder: backorderMat,
		addresses: addresses,
		logg:      logg,
		met:       met,
	}, nil
}

func (s *service) Checkout(ctx context.Context, userID uuid.UUID, input Input) (*Result, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id required")
	}
	if input.PaymentMethod != "" && !input.PaymentMethod.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unsupported payment method")
	}
	ctx = s.logg.WithUserID(ctx, userID.String())

	lines, err := s.cartStore.List(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading cart failed")
	}
	if len(lines) == 0 {
		return nil, s.fail(ctx, enums.CheckoutFailureEmptyCart, "cart is empty")
	}

	inStock, outOfStock := s.partition.Partition(ctx, lines)

	var backorderResult *backorders.Result
	if len(outOfStock) > 0 {
		// best effort: a draft failure must never abort the order path
		backorderResult, err = s.backorder.Materialize(ctx, userID, outOfStock)
		if err != nil {
			s.logg.Error(ctx, "backorder materialization failed", err)
			backorderResult = nil
		}
	}

	if len(inStock) == 0 {
		s.met.IncAttempt("backorder_only")
		s.logg.Info(ctx, "checkout completed with backorder only")
		return &Result{Backorder: backorderResult}, nil
	}

	addr, err := s.addresses.DefaultForUser(ctx, userID)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, s.fail(ctx, enums.CheckoutFailureAddressMissing, "no default shipping address")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading default address failed")
	}

	couponCode, err := s.cartStore.AppliedCoupon(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading applied coupon failed")
	}

	priceLines := make([]models.CartLine, 0, len(inStock))
	for _, resolved := range inStock {
		priceLines = append(priceLines, *resolved.Line)
	}

	quote, err := s.pricer.Price(ctx, userID, priceLines, couponCode)
	if err != nil {
		var resaleErr *pricing.ResaleError
		if errors.As(err, &resaleErr) {
			return nil, s.fail(ctx, enums.CheckoutFailureResalePriceInvalid, resaleErr.Detail)
		}
		var couponErr *pricing.CouponError
		if errors.As(err, &couponErr) {
			s.met.IncAttempt(string(enums.CheckoutFailureCouponInvalid))
			return nil, couponRejection(couponErr)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "pricing failed")
	}

	order, err := s.orders.Materialize(ctx, orders.MaterializeInput{
		UserID:        userID,
		Lines:         inStock,
		Quote:         quote,
		Address:       addr,
		PaymentMethod: input.PaymentMethod,
	})
	if err != nil {
		s.met.IncAttempt(string(enums.CheckoutFailurePersistence))
		s.logg.Error(ctx, "order materialization failed", err)
		return nil, err
	}

	if quote.Coupon != nil {
		if err := s.cartStore.ClearCoupon(ctx, userID); err != nil {
			s.logg.Error(ctx, "clearing applied coupon failed", err)
		}
	}

	s.met.IncAttempt("success")
	s.logg.Info(s.logg.WithOrderID(ctx, order.OrderNumber), "checkout completed")
	return &Result{Order: order, Backorder: backorderResult}, nil
}

func (s *service) ApplyCoupon(ctx context.Context, userID uuid.UUID, code string) (*CouponApplication, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id required")
	}
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "coupon code required")
	}
	ctx = s.logg.WithUserID(ctx, userID.String())

	lines, err := s.cartStore.List(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading cart failed")
	}
	if len(lines) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart is empty")
	}

	subtotal := 0
	for i := range lines {
		subtotal += pricing.LineTotal(&lines[i])
	}

	_, discount, err := s.pricer.ValidateCoupon(ctx, userID, code, subtotal)
	if err != nil {
		var couponErr *pricing.CouponError
		if errors.As(err, &couponErr) {
			return nil, couponRejection(couponErr)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "coupon validation failed")
	}

	if err := s.cartStore.ApplyCoupon(ctx, userID, code); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "storing applied coupon failed")
	}

	return &CouponApplication{Code: code, DiscountCents: discount}, nil
}

func (s *service) fail(ctx context.Context, reason enums.CheckoutFailure, message string) *pkgerrors.Error {
	s.met.IncAttempt(string(reason))
	s.logg.Info(s.logg.WithField(ctx, "reason", string(reason)), "checkout rejected: "+message)
	return pkgerrors.New(pkgerrors.CodeCheckout, message).
		WithDetails(map[string]any{"reason": string(reason)})
}

func couponRejection(err *pricing.CouponError) *pkgerrors.Error {
	return pkgerrors.New(pkgerrors.CodeCouponInvalid, err.Error()).
		WithDetails(map[string]any{"reason": string(err.Reason), "code": err.Code})
}
