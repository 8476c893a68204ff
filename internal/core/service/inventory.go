package service

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"

	"github.com/rl1809/flash-item/internal/core/domain"
)

// DecreaseStock takes quantity units in one atomic store operation. It returns false,
// without error, when fewer than quantity units are left.
func (s *ItemService) DecreaseStock(ctx context.Context, itemID string, quantity int64) (bool, error) {
	ctx, span := s.startSpan(ctx, "ItemService.DecreaseStock", itemID)
	defer span.End()

	if itemID == "" || quantity <= 0 {
		return false, failSpan(span, domain.ErrInvalidParameters)
	}

	ok, err := s.inventory.DecreaseIfAvailable(ctx, itemID, quantity)
	if err != nil {
		return false, failSpan(span, fmt.Errorf("stock decrement failed: %w", err))
	}
	span.SetAttributes(attribute.Int64("stock.quantity", quantity), attribute.Bool("stock.decreased", ok))

	return ok, nil
}

// IncreaseStock returns quantity units to the item's stock.
func (s *ItemService) IncreaseStock(ctx context.Context, itemID string, quantity int64) error {
	ctx, span := s.startSpan(ctx, "ItemService.IncreaseStock", itemID)
	defer span.End()

	if itemID == "" || quantity <= 0 {
		return failSpan(span, domain.ErrInvalidParameters)
	}

	ok, err := s.inventory.Increase(ctx, itemID, quantity)
	if err != nil {
		return failSpan(span, fmt.Errorf("stock increment failed: %w", err))
	}
	if !ok {
		return failSpan(span, domain.ErrNotFound)
	}
	span.SetAttributes(attribute.Int64("stock.quantity", quantity))

	return nil
}
