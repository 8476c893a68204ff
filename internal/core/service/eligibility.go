package service

import (
	"context"

	"go.uber.org/zap"
)

// IsAllowPlaceOrder is the order placement gate: the item exists, is ONLINE and the sale
// window is open. Every other outcome, store errors included, is reported as false.
func (s *ItemService) IsAllowPlaceOrder(ctx context.Context, itemID string) bool {
	ctx, span := s.startSpan(ctx, "ItemService.IsAllowPlaceOrder", itemID)
	defer span.End()

	if itemID == "" {
		return false
	}

	item, err := s.items.FindByID(ctx, itemID)
	if err != nil {
		s.logger.Error("eligibility check failed to load flash item", zap.String("item_id", itemID), zap.Error(err))
		return false
	}
	if item == nil {
		s.logger.Info("flash item does not exist", zap.String("item_id", itemID))
		return false
	}
	if !item.IsOnline() {
		s.logger.Info("flash item is not online", zap.String("item_id", itemID))
		return false
	}
	if !item.InProgress(s.now()) {
		s.logger.Info("flash item is outside its sale window", zap.String("item_id", itemID))
		return false
	}

	return true
}
