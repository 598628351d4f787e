package catalog

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/swiftcart-dev/swiftcart-backend/pkg/db/models"
)

// Catalog is the read-only lookup port the resolver and partitioner depend on.
type Catalog interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
	FindBySKU(ctx context.Context, sku string) (*models.Product, error)
	SearchByName(ctx context.Context, fragment string) (*models.Product, error)
	ProductStock(ctx context.Context, id uuid.UUID) (int, error)
	VariantStock(ctx context.Context, variantID uuid.UUID) (int, error)
}

// Repository exposes catalog reads. Checkout never mutates catalog rows.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a catalog repository bound to the provided DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// FindByID loads an active product with its variants.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	var product models.Product
	err := r.db.WithContext(ctx).
		Preload("Variants").
		Where("id = ? AND is_active = ?", id, true).
		First(&product).Error
	if err != nil {
		return nil, err
	}
	return &product, nil
}

// FindBySKU loads an active product by exact SKU.
func (r *Repository) FindBySKU(ctx context.Context, sku string) (*models.Product, error) {
	var product models.Product
	err := r.db.WithContext(ctx).
		Preload("Variants").
		Where("sku = ? AND is_active = ?", sku, true).
		First(&product).Error
	if err != nil {
		return nil, err
	}
	return &product, nil
}

// SearchByName returns the first active product whose name contains the
// fragment, case-insensitive. Oldest listing wins so results are stable.
func (r *Repository) SearchByName(ctx context.Context, fragment string) (*models.Product, error) {
	var product models.Product
	pattern := "%" + strings.ToLower(strings.TrimSpace(fragment)) + "%"
	err := r.db.WithContext(ctx).
		Preload("Variants").
		Where("lower(name) LIKE ? AND is_active = ?", pattern, true).
		Order("created_at ASC").
		First(&product).Error
	if err != nil {
		return nil, err
	}
	return &product, nil
}

// ProductStock reads the live product-level stock count.
func (r *Repository) ProductStock(ctx context.Context, id uuid.UUID) (int, error) {
	var product models.Product
	err := r.db.WithContext(ctx).
		Select("stock_qty").
		Where("id = ? AND is_active = ?", id, true).
		First(&product).Error
	if err != nil {
		return 0, err
	}
	return product.StockQty, nil
}

// VariantStock reads the live variant-level stock count.
func (r *Repository) VariantStock(ctx context.Context, variantID uuid.UUID) (int, error) {
	var variant models.ProductVariant
	err := r.db.WithContext(ctx).
		Select("available_qty").
		Where("id = ?", variantID).
		First(&variant).Error
	if err != nil {
		return 0, err
	}
	return variant.AvailableQty, nil
}
