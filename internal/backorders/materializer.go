package backorders

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/swiftcart-dev/swiftcart-backend/internal/availability"
	"github.com/swiftcart-dev/swiftcart-backend/internal/cart"
	"github.com/swiftcart-dev/swiftcart-backend/internal/pricing"
	"github.com/swiftcart-dev/swiftcart-backend/pkg/db/models"
	"github.com/swiftcart-dev/swiftcart-backend/pkg/enums"
	pkgerrors "github.com/swiftcart-dev/swiftcart-backend/pkg/errors"
	"github.com/swiftcart-dev/swiftcart-backend/pkg/logger"
	"github.com/swiftcart-dev/swiftcart-backend/pkg/metrics"
	"github.com/swiftcart-dev/swiftcart-backend/pkg/ordernum"
)

// TxRunner runs a closure inside a database transaction.
type TxRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Result reports what one backorder materialization did. Draft is nil when
// nothing was resolvable.
type Result struct {
	Draft          *models.BackorderDraft
	ProcessedCount int
	SkippedCount   int
}

// Materializer turns out-of-stock lines into a pending-approval draft.
// Lines without a resolved product cannot be foreign-keyed and are skipped,
// counted and left in the cart for the user to fix.
type Materializer struct {
	repo      Repository
	cartStore cart.Store
	tx        TxRunner
	now       func() time.Time
	logg      *logger.Logger
	met       *metrics.CheckoutMetrics
}

// NewMaterializer wires a backorder materializer. tx may be nil.
func NewMaterializer(repo Repository, cartStore cart.Store, tx TxRunner, logg *logger.Logger, met *metrics.CheckoutMetrics) (*Materializer, error) {
	if repo == nil {
		return nil, fmt.Errorf("backorder repository is required")
	}
	if cartStore == nil {
		return nil, fmt.Errorf("cart store is required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger is required")
	}
	return &Materializer{
		repo:      repo,
		cartStore: cartStore,
		tx:        tx,
		now:       time.Now,
		logg:      logg,
		met:       met,
	}, nil
}

// Materialize drafts the resolvable lines and removes exactly those from the
// live cart. Zero resolvable lines perform no write.
func (m *Materializer) Materialize(ctx context.Context, userID uuid.UUID, lines []availability.ResolvedLine) (*Result, error) {
	if userID == uuid.Nil {
		return nil, fmt.Errorf("user id is required")
	}

	var drafted []availability.ResolvedLine
	skipped := 0
	for _, resolved := range lines {
		if !resolved.Resolution.Resolved() {
			skipped++
			continue
		}
		drafted = append(drafted, resolved)
	}
	m.met.AddSkippedLines(skipped)

	if len(drafted) == 0 {
		return &Result{ProcessedCount: 0, SkippedCount: skipped}, nil
	}

	draft := &models.BackorderDraft{
		ID:          uuid.New(),
		UserID:      userID,
		DraftNumber: ordernum.Draft(m.now()),
		Status:      enums.BackorderStatusPendingApproval,
	}
	items := buildItems(draft.ID, drafted)

	if err := m.persist(ctx, draft, items); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodePersistence, err, "backorder persistence failed")
	}
	draft.Items = items

	lineIDs := make([]uuid.UUID, 0, len(drafted))
	for _, resolved := range drafted {
		lineIDs = append(lineIDs, resolved.Line.ID)
	}
	if err := m.cartStore.RemoveLines(ctx, userID, lineIDs); err != nil {
		m.logg.Error(m.logg.WithOrderID(ctx, draft.DraftNumber), "failed to remove drafted lines from cart", err)
	}

	return &Result{Draft: draft, ProcessedCount: len(drafted), SkippedCount: skipped}, nil
}

// buildItems snapshots the drafted lines. Unit price is the resale-adjusted
// line total spread back over the quantity.
func buildItems(draftID uuid.UUID, lines []availability.ResolvedLine) []models.BackorderItem {
	items := make([]models.BackorderItem, 0, len(lines))
	for _, resolved := range lines {
		line := resolved.Line
		item := models.BackorderItem{
			ID:             uuid.New(),
			DraftID:        draftID,
			ProductID:      resolved.Resolution.Product.ID,
			Name:           resolved.Resolution.Product.Name,
			Qty:            line.Quantity,
			UnitPriceCents: pricing.LineTotal(line) / line.Quantity,
			AvailableQty:   resolved.AvailableQty,
		}
		if resolved.Resolution.Variant != nil {
			variantID := resolved.Resolution.Variant.ID
			item.VariantID = &variantID
		}
		items = append(items, item)
	}
	return items
}

func (m *Materializer) persist(ctx context.Context, draft *models.BackorderDraft, items []models.BackorderItem) error {
	if m.tx != nil {
		return m.tx.WithTx(ctx, func(tx *gorm.DB) error {
			repo := m.repo.WithTx(tx)
			if err := repo.CreateDraft(ctx, draft); err != nil {
				return err
			}
			return repo.CreateItems(ctx, items)
		})
	}

	if err := m.repo.CreateDraft(ctx, draft); err != nil {
		return err
	}
	if err := m.repo.CreateItems(ctx, items); err != nil {
		if delErr := m.repo.DeleteDraft(ctx, draft.ID); delErr != nil {
			m.logg.Error(ctx, "compensating draft delete failed", delErr)
		}
		return err
	}
	return nil
}
