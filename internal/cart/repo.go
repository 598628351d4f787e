package cart

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/swiftcart-dev/swiftcart-backend/pkg/db"
	"github.com/swiftcart-dev/swiftcart-backend/pkg/db/models"
)

// Repository is the GORM-backed cart store.
type Repository struct {
	db *gorm.DB
}

var _ Store = (*Repository)(nil)

// NewRepository constructs a cart repository bound to the provided DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx binds the repository to a transaction.
func (r *Repository) WithTx(tx *gorm.DB) Store {
	if tx == nil {
		return r
	}
	return &Repository{db: tx}
}

// List returns the user's cart lines in insertion order.
func (r *Repository) List(ctx context.Context, userID uuid.UUID) ([]models.CartLine, error) {
	var lines []models.CartLine
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at ASC").
		Find(&lines).Error
	if err != nil {
		return nil, err
	}
	return lines, nil
}

// Add inserts a new cart line.
func (r *Repository) Add(ctx context.Context, line *models.CartLine) (*models.CartLine, error) {
	if line.ID == uuid.Nil {
		line.ID = uuid.New()
	}
	if err := r.db.WithContext(ctx).Create(line).Error; err != nil {
		return nil, err
	}
	return line, nil
}

// Remove deletes one line owned by the user.
func (r *Repository) Remove(ctx context.Context, userID, lineID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", lineID, userID).
		Delete(&models.CartLine{}).Error
}

// RemoveLines deletes the given lines owned by the user. Used by the
// materializers after persistence so unprocessed lines survive.
func (r *Repository) RemoveLines(ctx context.Context, userID uuid.UUID, lineIDs []uuid.UUID) error {
	if len(lineIDs) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Where("user_id = ? AND id IN ?", userID, lineIDs).
		Delete(&models.CartLine{}).Error
}

// Clear drops the user's entire cart, including the applied coupon.
func (r *Repository) Clear(ctx context.Context, userID uuid.UUID) error {
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Delete(&models.CartLine{}).Error; err != nil {
		return err
	}
	return r.ClearCoupon(ctx, userID)
}

// AppliedCoupon returns the code applied to the user's cart, empty when none.
func (r *Repository) AppliedCoupon(ctx context.Context, userID uuid.UUID) (string, error) {
	var applied models.CartCoupon
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		First(&applied).Error
	if err != nil {
		if db.IsNotFound(err) {
			return "", nil
		}
		return "", err
	}
	return applied.Code, nil
}

// ApplyCoupon upserts the applied code for the user's cart.
func (r *Repository) ApplyCoupon(ctx context.Context, userID uuid.UUID, code string) error {
	applied := models.CartCoupon{UserID: userID, Code: code}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"code", "updated_at"}),
		}).
		Create(&applied).Error
}

// ClearCoupon removes the applied code, if any.
func (r *Repository) ClearCoupon(ctx context.Context, userID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Delete(&models.CartCoupon{}).Error
}
