package address

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/swiftcart-dev/swiftcart-backend/pkg/db/models"
)

// Repository reads saved shipping addresses. Address management itself is
// owned by another service; checkout only needs the default row.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs an address repository bound to the provided DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// DefaultForUser loads the user's default shipping address.
func (r *Repository) DefaultForUser(ctx context.Context, userID uuid.UUID) (*models.Address, error) {
	var addr models.Address
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND is_default = ?", userID, true).
		First(&addr).Error
	if err != nil {
		return nil, err
	}
	return &addr, nil
}
