package orders

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/multierr"
	"gorm.io/gorm"

	"github.com/swiftcart-dev/swiftcart-backend/internal/availability"
	"github.com/swiftcart-dev/swiftcart-backend/internal/cart"
	"github.com/swiftcart-dev/swiftcart-backend/internal/ledger"
	"github.com/swiftcart-dev/swiftcart-backend/internal/pricing"
	"github.com/swiftcart-dev/swiftcart-backend/pkg/db/models"
	"github.com/swiftcart-dev/swiftcart-backend/pkg/enums"
	pkgerrors "github.com/swiftcart-dev/swiftcart-backend/pkg/errors"
	"github.com/swiftcart-dev/swiftcart-backend/pkg/logger"
	"github.com/swiftcart-dev/swiftcart-backend/pkg/ordernum"
)

// CouponLedger records coupon redemptions after an order commits.
type CouponLedger interface {
	RecordUsage(ctx context.Context, usage *models.CouponUsage) error
	IncrementUses(ctx context.Context, couponID uuid.UUID) error
}

// TxRunner runs a closure inside a database transaction. Optional: without
// one the materializer falls back to a compensating header delete.
type TxRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// MaterializeInput is a priced, fulfillable slice of a cart plus the
// snapshot data the order header needs.
type MaterializeInput struct {
	UserID        uuid.UUID
	Lines         []availability.ResolvedLine
	Quote         *pricing.Quote
	Address       *models.Address
	PaymentMethod enums.PaymentMethod
	PaymentStatus enums.PaymentStatus
}

// Materializer turns priced in-stock lines into a persisted order. Header
// and items commit atomically; ledger writes are non-blocking side effects.
type Materializer struct {
	repo         Repository
	cartStore    cart.Store
	margins      ledger.Service
	couponLedger CouponLedger
	tx           TxRunner
	now          func() time.Time
	logg         *logger.Logger
}

// NewMaterializer wires an order materializer. tx may be nil; every other
// dependency is required.
func NewMaterializer(repo Repository, cartStore cart.Store, margins ledger.Service, couponLedger CouponLedger, tx TxRunner, logg *logger.Logger) (*Materializer, error) {
	if repo == nil {
		return nil, fmt.Errorf("order repository is required")
	}
	if cartStore == nil {
		return nil, fmt.Errorf("cart store is required")
	}
	if margins == nil {
		return nil, fmt.Errorf("ledger service is required")
	}
	if couponLedger == nil {
		return nil, fmt.Errorf("coupon ledger is required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger is required")
	}
	return &Materializer{
		repo:         repo,
		cartStore:    cartStore,
		margins:      margins,
		couponLedger: couponLedger,
		tx:           tx,
		now:          time.Now,
		logg:         logg,
	}, nil
}

// Materialize persists the order and removes exactly the persisted lines
// from the live cart. A persistence failure leaves no partial order behind.
func (m *Materializer) Materialize(ctx context.Context, input MaterializeInput) (*models.Order, error) {
	if err := validateInput(input); err != nil {
		return nil, err
	}

	order := m.buildHeader(input)
	items := buildItems(order.ID, input.Lines)

	if err := m.persist(ctx, order, items); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodePersistence, err, "order persistence failed")
	}
	order.Items = items

	ctx = m.logg.WithOrderID(ctx, order.OrderNumber)
	m.runSideEffects(ctx, order, input)

	lineIDs := make([]uuid.UUID, 0, len(input.Lines))
	for _, resolved := range input.Lines {
		lineIDs = append(lineIDs, resolved.Line.ID)
	}
	if err := m.cartStore.RemoveLines(ctx, input.UserID, lineIDs); err != nil {
		// the order is committed, the stale cart lines are recoverable
		m.logg.Error(ctx, "failed to remove materialized lines from cart", err)
	}

	return order, nil
}

func validateInput(input MaterializeInput) error {
	if input.UserID == uuid.Nil {
		return fmt.Errorf("user id is required")
	}
	if len(input.Lines) == 0 {
		return fmt.Errorf("no lines to materialize")
	}
	if input.Quote == nil {
		return fmt.Errorf("quote is required")
	}
	if input.Address == nil {
		return fmt.Errorf("address is required")
	}
	return nil
}

func (m *Materializer) buildHeader(input MaterializeInput) *models.Order {
	paymentMethod := input.PaymentMethod
	if paymentMethod == "" {
		paymentMethod = enums.PaymentMethodCashOnDelivery
	}
	paymentStatus := input.PaymentStatus
	if paymentStatus == "" {
		paymentStatus = enums.PaymentStatusUnpaid
	}
	status := enums.OrderStatusPending
	if paymentStatus == enums.PaymentStatusPaid {
		status = enums.OrderStatusConfirmed
	}

	order := &models.Order{
		ID:            uuid.New(),
		UserID:        input.UserID,
		OrderNumber:   ordernum.Confirmed(m.now()),
		Status:        status,
		PaymentMethod: paymentMethod,
		PaymentStatus: paymentStatus,
		SubtotalCents: input.Quote.SubtotalCents,
		DiscountCents: input.Quote.DiscountCents,
		ShippingCents: input.Quote.ShippingCents,
		TotalCents:    input.Quote.PayableCents,

		ShipToName:       input.Address.FullName,
		ShipToPhone:      input.Address.Phone,
		ShipToLine1:      input.Address.Line1,
		ShipToLine2:      input.Address.Line2,
		ShipToCity:       input.Address.City,
		ShipToState:      input.Address.State,
		ShipToPostalCode: input.Address.PostalCode,
		ShipToCountry:    input.Address.Country,
	}
	if input.Quote.Coupon != nil {
		couponID := input.Quote.Coupon.ID
		order.CouponID = &couponID
	}
	return order
}

// buildItems snapshots each line. Unresolved lines keep a nil product id and
// fall back to the raw reference as the display name; their totals are still
// recorded.
func buildItems(orderID uuid.UUID, lines []availability.ResolvedLine) []models.OrderItem {
	items := make([]models.OrderItem, 0, len(lines))
	for _, resolved := range lines {
		line := resolved.Line
		item := models.OrderItem{
			ID:             uuid.New(),
			OrderID:        orderID,
			Name:           line.RawProductRef,
			Qty:            line.Quantity,
			UnitPriceCents: line.UnitPriceCents,
			TotalCents:     pricing.LineTotal(line),
			IsResale:       line.IsResale,
		}
		if resolved.Resolution.Product != nil {
			productID := resolved.Resolution.Product.ID
			item.ProductID = &productID
			item.Name = resolved.Resolution.Product.Name
		}
		if resolved.Resolution.Variant != nil {
			variantID := resolved.Resolution.Variant.ID
			item.VariantID = &variantID
		}
		items = append(items, item)
	}
	return items
}

// persist writes header then items. With a TxRunner the rollback is the
// compensating action; without one a failed item insert deletes the header
// so no partial order survives.
func (m *Materializer) persist(ctx context.Context, order *models.Order, items []models.OrderItem) error {
	if m.tx != nil {
		return m.tx.WithTx(ctx, func(tx *gorm.DB) error {
			repo := m.repo.WithTx(tx)
			if err := repo.Create(ctx, order); err != nil {
				return err
			}
			return repo.CreateItems(ctx, items)
		})
	}

	if err := m.repo.Create(ctx, order); err != nil {
		return err
	}
	if err := m.repo.CreateItems(ctx, items); err != nil {
		if delErr := m.repo.DeleteHeader(ctx, order.ID); delErr != nil {
			m.logg.Error(ctx, "compensating header delete failed", delErr)
		}
		return err
	}
	return nil
}

// runSideEffects records resale margins and coupon usage. Failures are
// accumulated and logged, never returned: the order already committed.
func (m *Materializer) runSideEffects(ctx context.Context, order *models.Order, input MaterializeInput) {
	var errs error

	for i := range order.Items {
		item := &order.Items[i]
		if !item.IsResale {
			continue
		}
		base := item.UnitPriceCents * item.Qty
		_, err := m.margins.RecordMargin(ctx, ledger.RecordMarginInput{
			OrderID:     order.ID,
			OrderItemID: item.ID,
			UserID:      order.UserID,
			BaseCents:   base,
			ResaleCents: item.TotalCents,
		})
		errs = multierr.Append(errs, err)
	}

	if order.CouponID != nil {
		errs = multierr.Append(errs, m.couponLedger.RecordUsage(ctx, &models.CouponUsage{
			CouponID: *order.CouponID,
			UserID:   order.UserID,
			OrderID:  order.ID,
		}))
		errs = multierr.Append(errs, m.couponLedger.IncrementUses(ctx, *order.CouponID))
	}

	if errs != nil {
		m.logg.Error(ctx, "order side effects partially failed", errs)
	}
}
