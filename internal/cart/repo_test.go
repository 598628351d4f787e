package cart

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
)

func setupCartTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	require.NoError(t, err)

	lines := `
CREATE TABLE IF NOT EXISTS cart_lines (
  id TEXT PRIMARY KEY,
  user_id TEXT NOT NULL,
  raw_product_ref TEXT NOT NULL,
  size_hint TEXT,
  color_hint TEXT,
  quantity INTEGER NOT NULL,
  unit_price_cents INTEGER NOT NULL,
  is_resale INTEGER NOT NULL DEFAULT 0,
  resale_price_cents INTEGER,
  cached_stock_qty INTEGER,
  created_at DATETIME,
  updated_at DATETIME
);`
	applied := `
CREATE TABLE IF NOT EXISTS cart_coupons (
  user_id TEXT PRIMARY KEY,
  code TEXT NOT NULL,
  created_at DATETIME,
  updated_at DATETIME
);`
	require.NoError(t, db.Exec(lines).Error)
	require.NoError(t, db.Exec(applied).Error)
	require.NoError(t, db.Exec(`DELETE FROM cart_lines`).Error)
	require.NoError(t, db.Exec(`DELETE FROM cart_coupons`).Error)
	return db
}

func addLine(t *testing.T, repo *Repository, userID uuid.UUID, ref string, qty int) *models.CartLine {
	t.Helper()

	line, err := repo.Add(context.Background(), &models.CartLine{
		UserID:         userID,
		RawProductRef:  ref,
		Quantity:       qty,
		UnitPriceCents: 1000,
	})
	require.NoError(t, err)
	// sqlite DATETIME has second precision, keep ordering deterministic
	time.Sleep(5 * time.Millisecond)
	return line
}

func TestListScopedToUserInInsertionOrder(t *testing.T) {
	db := setupCartTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	alice := uuid.New()
	bob := uuid.New()
	first := addLine(t, repo, alice, "ref-1", 1)
	second := addLine(t, repo, alice, "ref-2", 2)
	addLine(t, repo, bob, "ref-3", 3)

	lines, err := repo.List(ctx, alice)
	require.NoError(t, err)
	require.Len(t, lines, 2)
	assert.Equal(t, first.ID, lines[0].ID)
	assert.Equal(t, second.ID, lines[1].ID)
}

func TestRemoveOnlyOwnLine(t *testing.T) {
	db := setupCartTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	alice := uuid.New()
	bob := uuid.New()
	line := addLine(t, repo, alice, "ref-1", 1)

	// bob cannot delete alice's line
	require.NoError(t, repo.Remove(ctx, bob, line.ID))
	lines, err := repo.List(ctx, alice)
	require.NoError(t, err)
	assert.Len(t, lines, 1)

	require.NoError(t, repo.Remove(ctx, alice, line.ID))
	lines, err = repo.List(ctx, alice)
	require.NoError(t, err)
	assert.Empty(t, lines)
}

func TestRemoveLinesLeavesOthers(t *testing.T) {
	db := setupCartTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	userID := uuid.New()
	first := addLine(t, repo, userID, "ref-1", 1)
	second := addLine(t, repo, userID, "ref-2", 1)
	third := addLine(t, repo, userID, "ref-3", 1)

	require.NoError(t, repo.RemoveLines(ctx, userID, []uuid.UUID{first.ID, third.ID}))

	lines, err := repo.List(ctx, userID)
	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.Equal(t, second.ID, lines[0].ID)

	// empty set is a no-op
	require.NoError(t, repo.RemoveLines(ctx, userID, nil))
}

func TestClearDropsLinesAndCoupon(t *testing.T) {
	db := setupCartTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	userID := uuid.New()
	addLine(t, repo, userID, "ref-1", 1)
	require.NoError(t, repo.ApplyCoupon(ctx, userID, "SAVE10"))

	require.NoError(t, repo.Clear(ctx, userID))

	lines, err := repo.List(ctx, userID)
	require.NoError(t, err)
	assert.Empty(t, lines)

	code, err := repo.AppliedCoupon(ctx, userID)
	require.NoError(t, err)
	assert.Empty(t, code)
}

func TestApplyCouponUpserts(t *testing.T) {
	db := setupCartTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	userID := uuid.New()

	code, err := repo.AppliedCoupon(ctx, userID)
	require.NoError(t, err)
	assert.Empty(t, code)

	require.NoError(t, repo.ApplyCoupon(ctx, userID, "SAVE10"))
	require.NoError(t, repo.ApplyCoupon(ctx, userID, "SAVE20"))

	code, err = repo.AppliedCoupon(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, "SAVE20", code)

	require.NoError(t, repo.ClearCoupon(ctx, userID))
	code, err = repo.AppliedCoupon(ctx, userID)
	require.NoError(t, err)
	assert.Empty(t, code)
}
