package coupons

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/swiftcart-dev/swiftcart-backend/pkg/db/models"
	"github.com/swiftcart-dev/swiftcart-backend/pkg/enums"
)

func setupCouponsTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	require.NoError(t, err)

	coupons := `
CREATE TABLE IF NOT EXISTS coupons (
  id TEXT PRIMARY KEY,
  code TEXT NOT NULL,
  discount_type TEXT NOT NULL,
  discount_value INTEGER NOT NULL,
  min_order_cents INTEGER,
  starts_at DATETIME,
  ends_at DATETIME,
  max_uses INTEGER,
  uses_count INTEGER NOT NULL DEFAULT 0,
  per_user_limit INTEGER,
  is_active INTEGER NOT NULL DEFAULT 1,
  created_at DATETIME,
  updated_at DATETIME
);`
	usages := `
CREATE TABLE IF NOT EXISTS coupon_usages (
  id TEXT PRIMARY KEY,
  coupon_id TEXT NOT NULL,
  user_id TEXT NOT NULL,
  order_id TEXT NOT NULL,
  created_at DATETIME
);`
	require.NoError(t, db.Exec(coupons).Error)
	require.NoError(t, db.Exec(usages).Error)
	require.NoError(t, db.Exec(`DELETE FROM coupon_usages`).Error)
	require.NoError(t, db.Exec(`DELETE FROM coupons`).Error)
	return db
}

func seedCoupon(t *testing.T, db *gorm.DB, code string, active bool) *models.Coupon {
	t.Helper()

	coupon := &models.Coupon{
		ID:            uuid.New(),
		Code:          code,
		DiscountType:  enums.DiscountTypePercentage,
		DiscountValue: 10,
		IsActive:      active,
	}
	require.NoError(t, db.Create(coupon).Error)
	return coupon
}

func TestFindActiveByCode(t *testing.T) {
	db := setupCouponsTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	active := seedCoupon(t, db, "SAVE10", true)
	seedCoupon(t, db, "DEAD", false)

	got, err := repo.FindActiveByCode(ctx, "SAVE10")
	require.NoError(t, err)
	assert.Equal(t, active.ID, got.ID)

	_, err = repo.FindActiveByCode(ctx, "DEAD")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	_, err = repo.FindActiveByCode(ctx, "NOPE")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestUsageLedgerCountsPerUser(t *testing.T) {
	db := setupCouponsTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	coupon := seedCoupon(t, db, "SAVE10", true)
	alice := uuid.New()
	bob := uuid.New()

	require.NoError(t, repo.RecordUsage(ctx, &models.CouponUsage{CouponID: coupon.ID, UserID: alice, OrderID: uuid.New()}))
	require.NoError(t, repo.RecordUsage(ctx, &models.CouponUsage{CouponID: coupon.ID, UserID: alice, OrderID: uuid.New()}))
	require.NoError(t, repo.RecordUsage(ctx, &models.CouponUsage{CouponID: coupon.ID, UserID: bob, OrderID: uuid.New()}))

	aliceCount, err := repo.CountForUser(ctx, coupon.ID, alice)
	require.NoError(t, err)
	assert.Equal(t, int64(2), aliceCount)

	bobCount, err := repo.CountForUser(ctx, coupon.ID, bob)
	require.NoError(t, err)
	assert.Equal(t, int64(1), bobCount)

	noneCount, err := repo.CountForUser(ctx, coupon.ID, uuid.New())
	require.NoError(t, err)
	assert.Zero(t, noneCount)
}

func TestIncrementUses(t *testing.T) {
	db := setupCouponsTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	coupon := seedCoupon(t, db, "SAVE10", true)

	require.NoError(t, repo.IncrementUses(ctx, coupon.ID))
	require.NoError(t, repo.IncrementUses(ctx, coupon.ID))

	var reloaded models.Coupon
	require.NoError(t, db.First(&reloaded, "id = ?", coupon.ID).Error)
	assert.Equal(t, 2, reloaded.UsesCount)
}
