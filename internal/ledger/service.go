package ledger

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/swiftcart-dev/swiftcart-backend/pkg/db/models"
)

// Service records reseller margins realized by order materialization.
type Service interface {
	RecordMargin(ctx context.Context, input RecordMarginInput) (*models.ResaleLedgerEntry, error)
	MarginsForOrder(ctx context.Context, orderID uuid.UUID) ([]models.ResaleLedgerEntry, error)
}

type service struct {
	repo Repository
}

// RecordMarginInput captures the immutable data one margin entry requires.
type RecordMarginInput struct {
	OrderID     uuid.UUID
	OrderItemID uuid.UUID
	UserID      uuid.UUID
	BaseCents   int
	ResaleCents int
}

// NewService wires a ledger service with the provided repository.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("ledger repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) RecordMargin(ctx context.Context, input RecordMarginInput) (*models.ResaleLedgerEntry, error) {
	if input.OrderID == uuid.Nil {
		return nil, fmt.Errorf("order id is required")
	}
	if input.OrderItemID == uuid.Nil {
		return nil, fmt.Errorf("order item id is required")
	}
	if input.UserID == uuid.Nil {
		return nil, fmt.Errorf("user id is required")
	}
	if input.ResaleCents < input.BaseCents {
		return nil, fmt.Errorf("resale %d below base %d", input.ResaleCents, input.BaseCents)
	}

	entry := &models.ResaleLedgerEntry{
		ID:          uuid.New(),
		OrderID:     input.OrderID,
		OrderItemID: input.OrderItemID,
		UserID:      input.UserID,
		BaseCents:   input.BaseCents,
		ResaleCents: input.ResaleCents,
		MarginCents: input.ResaleCents - input.BaseCents,
	}
	if err := s.repo.Create(ctx, entry); err != nil {
		return nil, err
	}
	return entry, nil
}

func (s *service) MarginsForOrder(ctx context.Context, orderID uuid.UUID) ([]models.ResaleLedgerEntry, error) {
	if orderID == uuid.Nil {
		return nil, fmt.Errorf("order id is required")
	}
	return s.repo.ListByOrderID(ctx, orderID)
}
