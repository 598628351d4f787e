package backorders

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/swiftcart-dev/swiftcart-backend/pkg/db/models"
)

// Repository manages persistence for backorder drafts.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	CreateDraft(ctx context.Context, draft *models.BackorderDraft) error
	CreateItems(ctx context.Context, items []models.BackorderItem) error
	DeleteDraft(ctx context.Context, draftID uuid.UUID) error
	ListByUser(ctx context.Context, userID uuid.UUID) ([]models.BackorderDraft, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a backorder repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) CreateDraft(ctx context.Context, draft *models.BackorderDraft) error {
	if draft.ID == uuid.Nil {
		draft.ID = uuid.New()
	}
	return r.db.WithContext(ctx).Omit("Items").Create(draft).Error
}

func (r *repository) CreateItems(ctx context.Context, items []models.BackorderItem) error {
	if len(items) == 0 {
		return nil
	}
	for i := range items {
		if items[i].ID == uuid.Nil {
			items[i].ID = uuid.New()
		}
	}
	return r.db.WithContext(ctx).Create(&items).Error
}

// DeleteDraft removes a draft header. Compensating action for the non-tx
// materialization path.
func (r *repository) DeleteDraft(ctx context.Context, draftID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("id = ?", draftID).
		Delete(&models.BackorderDraft{}).Error
}

func (r *repository) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.BackorderDraft, error) {
	var drafts []models.BackorderDraft
	err := r.db.WithContext(ctx).
		Preload("Items").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&drafts).Error
	if err != nil {
		return nil, err
	}
	return drafts, nil
}
