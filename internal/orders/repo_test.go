package orders

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/swiftcart-dev/swiftcart-backend/pkg/db/models"
	"github.com/swiftcart-dev/swiftcart-backend/pkg/enums"
	"github.com/swiftcart-dev/swiftcart-backend/pkg/ordernum"
)

func setupOrdersTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	require.NoError(t, err)

	orders := `
CREATE TABLE IF NOT EXISTS orders (
  id TEXT PRIMARY KEY,
  user_id TEXT NOT NULL,
  order_number TEXT NOT NULL,
  status TEXT NOT NULL DEFAULT 'pending',
  payment_method TEXT NOT NULL DEFAULT 'cash_on_delivery',
  payment_status TEXT NOT NULL DEFAULT 'unpaid',
  subtotal_cents INTEGER NOT NULL,
  discount_cents INTEGER NOT NULL DEFAULT 0,
  shipping_cents INTEGER NOT NULL DEFAULT 0,
  total_cents INTEGER NOT NULL,
  coupon_id TEXT,
  ship_to_name TEXT NOT NULL,
  ship_to_phone TEXT NOT NULL,
  ship_to_line1 TEXT NOT NULL,
  ship_to_line2 TEXT,
  ship_to_city TEXT NOT NULL,
  ship_to_state TEXT NOT NULL,
  ship_to_postal_code TEXT NOT NULL,
  ship_to_country TEXT NOT NULL,
  created_at DATETIME,
  updated_at DATETIME
);`
	items := `
CREATE TABLE IF NOT EXISTS order_items (
  id TEXT PRIMARY KEY,
  order_id TEXT NOT NULL,
  product_id TEXT,
  variant_id TEXT,
  name TEXT NOT NULL,
  qty INTEGER NOT NULL,
  unit_price_cents INTEGER NOT NULL,
  total_cents INTEGER NOT NULL,
  is_resale INTEGER NOT NULL DEFAULT 0,
  created_at DATETIME,
  updated_at DATETIME
);`
	require.NoError(t, db.Exec(orders).Error)
	require.NoError(t, db.Exec(items).Error)
	require.NoError(t, db.Exec(`DELETE FROM order_items`).Error)
	require.NoError(t, db.Exec(`DELETE FROM orders`).Error)
	return db
}

func newHeader(userID uuid.UUID) *models.Order {
	return &models.Order{
		ID:            uuid.New(),
		UserID:        userID,
		OrderNumber:   ordernum.Confirmed(time.Now()),
		Status:        enums.OrderStatusPending,
		PaymentMethod: enums.PaymentMethodCashOnDelivery,
		PaymentStatus: enums.PaymentStatusUnpaid,
		SubtotalCents: 3000,
		TotalCents:    3000,

		ShipToName:       "Asha Rao",
		ShipToPhone:      "+91-90000-00000",
		ShipToLine1:      "12 Lake View Road",
		ShipToCity:       "Pune",
		ShipToState:      "MH",
		ShipToPostalCode: "411001",
		ShipToCountry:    "IN",
	}
}

func TestCreateAndGetByIDForUser(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	userID := uuid.New()
	order := newHeader(userID)
	require.NoError(t, repo.Create(ctx, order))
	require.NoError(t, repo.CreateItems(ctx, []models.OrderItem{
		{OrderID: order.ID, Name: "Trail Shoe", Qty: 2, UnitPriceCents: 1500, TotalCents: 3000},
	}))

	got, err := repo.GetByIDForUser(ctx, order.ID, userID)
	require.NoError(t, err)
	assert.Equal(t, order.OrderNumber, got.OrderNumber)
	require.Len(t, got.Items, 1)
	assert.Equal(t, 3000, got.Items[0].TotalCents)

	// other users cannot see the order
	_, err = repo.GetByIDForUser(ctx, order.ID, uuid.New())
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestCreateItemsEmptyIsNoop(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)

	require.NoError(t, repo.CreateItems(context.Background(), nil))
}

func TestDeleteHeader(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	userID := uuid.New()
	order := newHeader(userID)
	require.NoError(t, repo.Create(ctx, order))

	require.NoError(t, repo.DeleteHeader(ctx, order.ID))

	_, err := repo.GetByIDForUser(ctx, order.ID, userID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestListByUserNewestFirst(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	userID := uuid.New()
	first := newHeader(userID)
	require.NoError(t, repo.Create(ctx, first))
	time.Sleep(5 * time.Millisecond)
	second := newHeader(userID)
	require.NoError(t, repo.Create(ctx, second))
	require.NoError(t, repo.Create(ctx, newHeader(uuid.New())))

	list, err := repo.ListByUser(ctx, userID)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, second.ID, list[0].ID)
	assert.Equal(t, first.ID, list[1].ID)
}
