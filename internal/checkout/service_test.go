package checkout

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/swiftcart-dev/swiftcart-backend/internal/availability"
	"github.com/swiftcart-dev/swiftcart-backend/internal/backorders"
	"github.com/swiftcart-dev/swiftcart-backend/internal/catalog"
	"github.com/swiftcart-dev/swiftcart-backend/internal/orders"
	"github.com/swiftcart-dev/swiftcart-backend/internal/pricing"
	"github.com/swiftcart-dev/swiftcart-backend/pkg/db/models"
	"github.com/swiftcart-dev/swiftcart-backend/pkg/enums"
	pkgerrors "github.com/swiftcart-dev/swiftcart-backend/pkg/errors"
	"github.com/swiftcart-dev/swiftcart-backend/pkg/logger"
	"github.com/swiftcart-dev/swiftcart-backend/pkg/ordernum"
)

// fakeCartStore is the in-memory cart the orchestrator tests run against.
type fakeCartStore struct {
	lines   []models.CartLine
	coupons map[uuid.UUID]string
	listErr error
}

func newFakeCartStore() *fakeCartStore {
	return &fakeCartStore{coupons: map[uuid.UUID]string{}}
}

func (f *fakeCartStore) List(_ context.Context, userID uuid.UUID) ([]models.CartLine, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	var out []models.CartLine
	for _, l := range f.lines {
		if l.UserID == userID {
			out = append(out, l)
		}
	}
	return out, nil
}

func (f *fakeCartStore) Add(_ context.Context, line *models.CartLine) (*models.CartLine, error) {
	if line.ID == uuid.Nil {
		line.ID = uuid.New()
	}
	f.lines = append(f.lines, *line)
	return line, nil
}

func (f *fakeCartStore) Remove(ctx context.Context, userID, lineID uuid.UUID) error {
	return f.RemoveLines(ctx, userID, []uuid.UUID{lineID})
}

func (f *fakeCartStore) RemoveLines(_ context.Context, userID uuid.UUID, lineIDs []uuid.UUID) error {
	drop := map[uuid.UUID]bool{}
	for _, id := range lineIDs {
		drop[id] = true
	}
	var kept []models.CartLine
	for _, l := range f.lines {
		if l.UserID == userID && drop[l.ID] {
			continue
		}
		kept = append(kept, l)
	}
	f.lines = kept
	return nil
}

func (f *fakeCartStore) Clear(_ context.Context, userID uuid.UUID) error {
	var kept []models.CartLine
	for _, l := range f.lines {
		if l.UserID != userID {
			kept = append(kept, l)
		}
	}
	f.lines = kept
	delete(f.coupons, userID)
	return nil
}

func (f *fakeCartStore) AppliedCoupon(_ context.Context, userID uuid.UUID) (string, error) {
	return f.coupons[userID], nil
}

func (f *fakeCartStore) ApplyCoupon(_ context.Context, userID uuid.UUID, code string) error {
	f.coupons[userID] = code
	return nil
}

func (f *fakeCartStore) ClearCoupon(_ context.Context, userID uuid.UUID) error {
	delete(f.coupons, userID)
	return nil
}

// stubPartitioner routes lines by a per-ref stock table, resolving against a
// per-ref product table.
type stubPartitioner struct {
	products map[string]*models.Product
	stock    map[string]int
}

func (s *stubPartitioner) Partition(_ context.Context, lines []models.CartLine) (inStock, outOfStock []availability.ResolvedLine) {
	for i := range lines {
		line := lines[i]
		resolved := availability.ResolvedLine{
			Line:         &line,
			Resolution:   catalog.Resolution{Method: catalog.MethodNone},
			AvailableQty: s.stock[line.RawProductRef],
		}
		if p, ok := s.products[line.RawProductRef]; ok {
			resolved.Resolution = catalog.Resolution{Product: p, Method: catalog.MethodSKU}
		}
		if resolved.InStock() {
			inStock = append(inStock, resolved)
		} else {
			outOfStock = append(outOfStock, resolved)
		}
	}
	return inStock, outOfStock
}

// captureOrderMat persists nothing but mimics the real materializer's cart
// cleanup so end-state assertions hold.
type captureOrderMat struct {
	store  *fakeCartStore
	calls  int
	inputs []orders.MaterializeInput
	err    error
}

func (c *captureOrderMat) Materialize(ctx context.Context, input orders.MaterializeInput) (*models.Order, error) {
	c.calls++
	c.inputs = append(c.inputs, input)
	if c.err != nil {
		return nil, c.err
	}

	order := &models.Order{
		ID:            uuid.New(),
		UserID:        input.UserID,
		OrderNumber:   "ORD-20250601-TESTAA",
		Status:        enums.OrderStatusPending,
		SubtotalCents: input.Quote.SubtotalCents,
		DiscountCents: input.Quote.DiscountCents,
		TotalCents:    input.Quote.PayableCents,
	}
	if input.Quote.Coupon != nil {
		id := input.Quote.Coupon.ID
		order.CouponID = &id
	}
	var ids []uuid.UUID
	for _, l := range input.Lines {
		ids = append(ids, l.Line.ID)
	}
	_ = c.store.RemoveLines(ctx, input.UserID, ids)
	return order, nil
}

type captureBackorderMat struct {
	store *fakeCartStore
	calls int
	lines []availability.ResolvedLine
	err   error
}

func (c *captureBackorderMat) Materialize(ctx context.Context, userID uuid.UUID, lines []availability.ResolvedLine) (*backorders.Result, error) {
	c.calls++
	c.lines = append(c.lines, lines...)
	if c.err != nil {
		return nil, c.err
	}

	var drafted []uuid.UUID
	result := &backorders.Result{}
	draft := &models.BackorderDraft{ID: uuid.New(), UserID: userID, DraftNumber: "BO-20250601-TESTAA", Status: enums.BackorderStatusPendingApproval}
	for _, resolved := range lines {
		if !resolved.Resolution.Resolved() {
			result.SkippedCount++
			continue
		}
		result.ProcessedCount++
		drafted = append(drafted, resolved.Line.ID)
		draft.Items = append(draft.Items, models.BackorderItem{
			DraftID:        draft.ID,
			ProductID:      resolved.Resolution.Product.ID,
			Name:           resolved.Resolution.Product.Name,
			Qty:            resolved.Line.Quantity,
			UnitPriceCents: pricing.LineTotal(resolved.Line) / resolved.Line.Quantity,
		})
	}
	if result.ProcessedCount == 0 {
		return result, nil
	}
	result.Draft = draft
	_ = c.store.RemoveLines(ctx, userID, drafted)
	return result, nil
}

type stubAddresses struct {
	addr *models.Address
	err  error
}

func (s *stubAddresses) DefaultForUser(context.Context, uuid.UUID) (*models.Address, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.addr, nil
}

type stubCouponSource struct {
	coupon *models.Coupon
	err    error
}

func (s *stubCouponSource) FindActiveByCode(context.Context, string) (*models.Coupon, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.coupon, nil
}

type stubUsageCounter struct {
	count int64
}

func (s *stubUsageCounter) CountForUser(context.Context, uuid.UUID, uuid.UUID) (int64, error) {
	return s.count, nil
}

type fixture struct {
	userID    uuid.UUID
	store     *fakeCartStore
	partition *stubPartitioner
	orderMat  *captureOrderMat
	backorder *captureBackorderMat
	addresses *stubAddresses
	coupons   *stubCouponSource
	usage     *stubUsageCounter
	svc       Service
}

func newCheckoutFixture(t *testing.T) *fixture {
	t.Helper()

	f := &fixture{
		userID:    uuid.New(),
		store:     newFakeCartStore(),
		partition: &stubPartitioner{products: map[string]*models.Product{}, stock: map[string]int{}},
		addresses: &stubAddresses{addr: &models.Address{ID: uuid.New(), FullName: "Asha Rao", Phone: "1", Line1: "a", City: "b", State: "c", PostalCode: "d", Country: "IN"}},
		coupons:   &stubCouponSource{err: errors.New("record not found")},
		usage:     &stubUsageCounter{},
	}
	f.orderMat = &captureOrderMat{store: f.store}
	f.backorder = &captureBackorderMat{store: f.store}

	logg := logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
	engine, err := pricing.NewEngine(f.coupons, f.usage, 0, logg, nil)
	require.NoError(t, err)

	svc, err := NewService(f.store, f.partition, engine, f.orderMat, f.backorder, f.addresses, logg, nil)
	require.NoError(t, err)
	f.svc = svc
	return f
}

func (f *fixture) addProduct(sku, name string, stock int) *models.Product {
	p := &models.Product{ID: uuid.New(), SKU: sku, Name: name}
	f.partition.products[sku] = p
	f.partition.stock[sku] = stock
	return p
}

func (f *fixture) addLine(t *testing.T, sku string, qty, unitCents int) *models.CartLine {
	t.Helper()
	line, err := f.store.Add(context.Background(), &models.CartLine{
		UserID:         f.userID,
		RawProductRef:  sku,
		Quantity:       qty,
		UnitPriceCents: unitCents,
	})
	require.NoError(t, err)
	return line
}

func failureReason(t *testing.T, err error) string {
	t.Helper()
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	details, ok := typed.Details().(map[string]any)
	require.True(t, ok)
	reason, _ := details["reason"].(string)
	return reason
}

func TestCheckoutSingleInStockLine(t *testing.T) {
	// Scenario: one line fully covered by stock, no coupon
	f := newCheckoutFixture(t)
	f.addProduct("X", "Product X", 5)
	f.addLine(t, "X", 2, 500)

	result, err := f.svc.Checkout(context.Background(), f.userID, Input{})
	require.NoError(t, err)

	assert.Equal(t, 1, f.orderMat.calls)
	assert.Zero(t, f.backorder.calls)
	require.NotNil(t, result.Order)
	assert.Nil(t, result.Backorder)
	assert.Equal(t, 1000, result.Order.SubtotalCents)
	assert.Equal(t, 1000, result.Order.TotalCents)

	remaining, err := f.store.List(context.Background(), f.userID)
	require.NoError(t, err)
	assert.Empty(t, remaining)
}

func TestCheckoutForwardsPaymentMethod(t *testing.T) {
	f := newCheckoutFixture(t)
	f.addProduct("X", "Product X", 5)
	f.addLine(t, "X", 1, 500)

	_, err := f.svc.Checkout(context.Background(), f.userID, Input{PaymentMethod: enums.PaymentMethodCashOnDelivery})
	require.NoError(t, err)

	require.Len(t, f.orderMat.inputs, 1)
	assert.Equal(t, enums.PaymentMethodCashOnDelivery, f.orderMat.inputs[0].PaymentMethod)
}

func TestCheckoutEverythingOutOfStock(t *testing.T) {
	// Scenario: requested quantity exceeds stock, whole cart drafts
	f := newCheckoutFixture(t)
	f.addProduct("Y", "Product Y", 1)
	f.addLine(t, "Y", 3, 200)

	result, err := f.svc.Checkout(context.Background(), f.userID, Input{})
	require.NoError(t, err)

	assert.Zero(t, f.orderMat.calls)
	assert.Equal(t, 1, f.backorder.calls)
	assert.Nil(t, result.Order)
	require.NotNil(t, result.Backorder)
	require.NotNil(t, result.Backorder.Draft)
	require.Len(t, result.Backorder.Draft.Items, 1)
	assert.Equal(t, 3, result.Backorder.Draft.Items[0].Qty)
	assert.Equal(t, 200, result.Backorder.Draft.Items[0].UnitPriceCents)

	remaining, err := f.store.List(context.Background(), f.userID)
	require.NoError(t, err)
	assert.Empty(t, remaining)
}

func TestCheckoutMixedCartSplits(t *testing.T) {
	// Scenario: one fulfillable line, one draftable line
	f := newCheckoutFixture(t)
	inP := f.addProduct("IN", "Product In", 10)
	outP := f.addProduct("OUT", "Product Out", 0)
	inLine := f.addLine(t, "IN", 1, 900)
	f.addLine(t, "OUT", 2, 400)

	result, err := f.svc.Checkout(context.Background(), f.userID, Input{})
	require.NoError(t, err)

	assert.Equal(t, 1, f.orderMat.calls)
	assert.Equal(t, 1, f.backorder.calls)

	require.NotNil(t, result.Order)
	require.Len(t, f.orderMat.inputs[0].Lines, 1)
	assert.Equal(t, inLine.ID, f.orderMat.inputs[0].Lines[0].Line.ID)
	assert.Equal(t, inP.ID, f.orderMat.inputs[0].Lines[0].Resolution.Product.ID)

	require.NotNil(t, result.Backorder)
	require.Len(t, result.Backorder.Draft.Items, 1)
	assert.Equal(t, outP.ID, result.Backorder.Draft.Items[0].ProductID)

	remaining, err := f.store.List(context.Background(), f.userID)
	require.NoError(t, err)
	assert.Empty(t, remaining)
}

func TestCheckoutEmptyCart(t *testing.T) {
	f := newCheckoutFixture(t)

	_, err := f.svc.Checkout(context.Background(), f.userID, Input{})

	require.Error(t, err)
	assert.Equal(t, string(enums.CheckoutFailureEmptyCart), failureReason(t, err))
	assert.Zero(t, f.orderMat.calls)
	assert.Zero(t, f.backorder.calls)
}

func TestCheckoutAddressMissing(t *testing.T) {
	f := newCheckoutFixture(t)
	f.addresses.err = gorm.ErrRecordNotFound
	f.addProduct("X", "Product X", 5)
	f.addLine(t, "X", 1, 500)

	_, err := f.svc.Checkout(context.Background(), f.userID, Input{})

	require.Error(t, err)
	assert.Equal(t, string(enums.CheckoutFailureAddressMissing), failureReason(t, err))
	assert.Zero(t, f.orderMat.calls)

	// hard failure leaves the cart untouched
	remaining, listErr := f.store.List(context.Background(), f.userID)
	require.NoError(t, listErr)
	assert.Len(t, remaining, 1)
}

func TestCheckoutAddressLookupFailureIsNotAddressMissing(t *testing.T) {
	f := newCheckoutFixture(t)
	f.addresses.err = errors.New("dial tcp 10.0.0.5:5432: connect: connection refused")
	f.addProduct("X", "Product X", 5)
	f.addLine(t, "X", 1, 500)

	_, err := f.svc.Checkout(context.Background(), f.userID, Input{})

	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeInternal, typed.Code())
	assert.Zero(t, f.orderMat.calls)
}

func TestCheckoutResalePriceInvalid(t *testing.T) {
	f := newCheckoutFixture(t)
	f.addProduct("X", "Product X", 5)
	line := f.addLine(t, "X", 2, 500)
	for i := range f.store.lines {
		if f.store.lines[i].ID == line.ID {
			f.store.lines[i].IsResale = true
			resale := 999 // below the 1000 base total
			f.store.lines[i].ResalePriceCents = &resale
		}
	}

	_, err := f.svc.Checkout(context.Background(), f.userID, Input{})

	require.Error(t, err)
	assert.Equal(t, string(enums.CheckoutFailureResalePriceInvalid), failureReason(t, err))
	assert.Zero(t, f.orderMat.calls)
}

func TestCheckoutBackorderFailureIsBestEffort(t *testing.T) {
	f := newCheckoutFixture(t)
	f.backorder.err = errors.New("draft store down")
	f.addProduct("IN", "Product In", 10)
	f.addProduct("OUT", "Product Out", 0)
	f.addLine(t, "IN", 1, 900)
	f.addLine(t, "OUT", 1, 400)

	result, err := f.svc.Checkout(context.Background(), f.userID, Input{})
	require.NoError(t, err)

	require.NotNil(t, result.Order)
	assert.Nil(t, result.Backorder)
	assert.Equal(t, 1, f.orderMat.calls)
}

func TestCheckoutAppliedCouponFlowsIntoQuote(t *testing.T) {
	f := newCheckoutFixture(t)
	coupon := &models.Coupon{ID: uuid.New(), Code: "SAVE10", DiscountType: enums.DiscountTypePercentage, DiscountValue: 10, IsActive: true}
	f.coupons.coupon = coupon
	f.coupons.err = nil
	f.addProduct("X", "Product X", 5)
	f.addLine(t, "X", 2, 500)
	require.NoError(t, f.store.ApplyCoupon(context.Background(), f.userID, "SAVE10"))

	result, err := f.svc.Checkout(context.Background(), f.userID, Input{})
	require.NoError(t, err)

	assert.Equal(t, 100, result.Order.DiscountCents)
	assert.Equal(t, 900, result.Order.TotalCents)
	// consumed coupon is cleared from the cart scope
	code, _ := f.store.AppliedCoupon(context.Background(), f.userID)
	assert.Empty(t, code)
}

func TestCheckoutRejectedCouponAborts(t *testing.T) {
	f := newCheckoutFixture(t)
	f.coupons.coupon = &models.Coupon{
		ID: uuid.New(), Code: "CAPPED", DiscountType: enums.DiscountTypeFixed, DiscountValue: 100,
		PerUserLimit: func() *int { n := 1; return &n }(),
	}
	f.coupons.err = nil
	f.usage.count = 1
	f.addProduct("X", "Product X", 5)
	f.addLine(t, "X", 1, 500)
	require.NoError(t, f.store.ApplyCoupon(context.Background(), f.userID, "CAPPED"))

	_, err := f.svc.Checkout(context.Background(), f.userID, Input{})

	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeCouponInvalid, typed.Code())
	assert.Zero(t, f.orderMat.calls)
}

func TestCheckoutPersistenceFailureSurfaces(t *testing.T) {
	f := newCheckoutFixture(t)
	f.orderMat.err = pkgerrors.Wrap(pkgerrors.CodePersistence, errors.New("disk full"), "order persistence failed")
	f.addProduct("X", "Product X", 5)
	f.addLine(t, "X", 1, 500)

	_, err := f.svc.Checkout(context.Background(), f.userID, Input{})

	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodePersistence, typed.Code())
}

func TestCheckoutUnsupportedPaymentMethod(t *testing.T) {
	f := newCheckoutFixture(t)

	_, err := f.svc.Checkout(context.Background(), f.userID, Input{PaymentMethod: "wire_transfer"})

	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeValidation, typed.Code())
}

func TestApplyCouponStoresCodeAndReturnsDiscount(t *testing.T) {
	f := newCheckoutFixture(t)
	f.coupons.coupon = &models.Coupon{ID: uuid.New(), Code: "SAVE10", DiscountType: enums.DiscountTypePercentage, DiscountValue: 10, IsActive: true}
	f.coupons.err = nil
	f.addLine(t, "X", 1, 2500)

	application, err := f.svc.ApplyCoupon(context.Background(), f.userID, " SAVE10 ")
	require.NoError(t, err)

	assert.Equal(t, "SAVE10", application.Code)
	assert.Equal(t, 250, application.DiscountCents)

	code, _ := f.store.AppliedCoupon(context.Background(), f.userID)
	assert.Equal(t, "SAVE10", code)
}

func TestApplyCouponPerUserCapRejectedRegardlessOfSubtotal(t *testing.T) {
	f := newCheckoutFixture(t)
	f.coupons.coupon = &models.Coupon{
		ID: uuid.New(), Code: "ONCE", DiscountType: enums.DiscountTypeFixed, DiscountValue: 100,
		PerUserLimit: func() *int { n := 2; return &n }(),
	}
	f.coupons.err = nil
	f.usage.count = 2
	f.addLine(t, "X", 10, 100000)

	_, err := f.svc.ApplyCoupon(context.Background(), f.userID, "ONCE")

	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeCouponInvalid, typed.Code())
	details, ok := typed.Details().(map[string]any)
	require.True(t, ok)
	assert.Equal(t, string(enums.CouponRejectionPerUserCapReached), details["reason"])

	code, _ := f.store.AppliedCoupon(context.Background(), f.userID)
	assert.Empty(t, code)
}

func TestApplyCouponEmptyCartRejected(t *testing.T) {
	f := newCheckoutFixture(t)

	_, err := f.svc.ApplyCoupon(context.Background(), f.userID, "SAVE10")

	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeValidation, typed.Code())
}

func TestCheckoutBackorderOnlyOutcomeNumbersDistinct(t *testing.T) {
	f := newCheckoutFixture(t)
	f.addProduct("Y", "Product Y", 0)
	f.addLine(t, "Y", 1, 200)

	result, err := f.svc.Checkout(context.Background(), f.userID, Input{})
	require.NoError(t, err)

	require.NotNil(t, result.Backorder)
	require.NotNil(t, result.Backorder.Draft)
	assert.True(t, ordernum.IsDraft(result.Backorder.Draft.DraftNumber))
	assert.False(t, ordernum.IsConfirmed(result.Backorder.Draft.DraftNumber))
}
