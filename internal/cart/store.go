package cart

import (
	"context"

	"github.com/google/uuid"

	"github.com/swiftcart-dev/swiftcart-backend/pkg/db/models"
)

// Store is the live cart port the checkout engine consumes. Materializers
// remove only the lines they persisted; everything else stays for retry.
type Store interface {
	List(ctx context.Context, userID uuid.UUID) ([]models.CartLine, error)
	Add(ctx context.Context, line *models.CartLine) (*models.CartLine, error)
	Remove(ctx context.Context, userID, lineID uuid.UUID) error
	RemoveLines(ctx context.Context, userID uuid.UUID, lineIDs []uuid.UUID) error
	Clear(ctx context.Context, userID uuid.UUID) error

	AppliedCoupon(ctx context.Context, userID uuid.UUID) (string, error)
	ApplyCoupon(ctx context.Context, userID uuid.UUID, code string) error
	ClearCoupon(ctx context.Context, userID uuid.UUID) error
}
