package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/rl1809/flash-item/internal/core/domain"
)

// Publish moves a draft item to PUBLISHED, saves it and emits a Published event. The
// status is taken from the stored record when one exists.
// On success the passed item reflects the stored record (id, status, timestamps).
func (s *ItemService) Publish(ctx context.Context, item *domain.FlashItem) error {
	var itemID string
	if item != nil {
		itemID = item.ID
	}
	ctx, span := s.startSpan(ctx, "ItemService.Publish", itemID)
	defer span.End()

	s.logger.Info("preparing to publish flash item", zap.String("item_id", itemID))
	if item == nil || !item.ValidateForCreate() {
		return failSpan(span, domain.ErrInvalidParameters)
	}

	// The stored record decides the current status. A caller's snapshot may be stale.
	current := domain.ItemStatusDraft
	if item.ID != "" {
		stored, err := s.items.FindByID(ctx, item.ID)
		if err != nil {
			return failSpan(span, fmt.Errorf("find flash item %s: %w", item.ID, err))
		}
		if stored != nil {
			current = stored.Status
		}
	}
	if current == domain.ItemStatusDraft && item.Status != "" && item.Status != domain.ItemStatusDraft {
		return failSpan(span, fmt.Errorf("publish item %q claiming status %s: %w", item.ID, item.Status, domain.ErrInvalidParameters))
	}

	next, noop, err := domain.NextStatus(current, domain.ActionPublish)
	if err != nil {
		return failSpan(span, fmt.Errorf("publish item %q in status %s: %w", item.ID, current, err))
	}
	if noop {
		s.logger.Info("flash item already published", zap.String("item_id", item.ID))
		return nil
	}

	now := s.now()
	published := *item
	if published.ID == "" {
		published.ID = uuid.NewString()
	}
	if published.CreatedAt.IsZero() {
		published.CreatedAt = now
	}
	published.UpdatedAt = now
	published.Status = next

	if err := s.items.Save(ctx, &published); err != nil {
		return failSpan(span, fmt.Errorf("save flash item: %w", err))
	}
	*item = published
	s.logger.Info("flash item was published", zap.String("item_id", published.ID))

	s.emit(ctx, domain.EventPublished, published)
	return nil
}

// BringOnline opens the item for sale. Calling it on an ONLINE item does nothing.
func (s *ItemService) BringOnline(ctx context.Context, itemID string) error {
	return s.transition(ctx, itemID, domain.ActionOnline, domain.EventOnlinePlaced)
}

// TakeOffline withdraws the item from sale. Calling it on an OFFLINE item does nothing.
func (s *ItemService) TakeOffline(ctx context.Context, itemID string) error {
	return s.transition(ctx, itemID, domain.ActionOffline, domain.EventOffline)
}

func (s *ItemService) transition(ctx context.Context, itemID string, action domain.Action, eventType domain.EventType) error {
	ctx, span := s.startSpan(ctx, "ItemService."+string(action), itemID)
	defer span.End()

	log := s.logger.With(zap.String("item_id", itemID), zap.String("action", string(action)))
	log.Info("preparing to change flash item status")

	if itemID == "" {
		return failSpan(span, domain.ErrInvalidParameters)
	}

	item, err := s.items.FindByID(ctx, itemID)
	if err != nil {
		return failSpan(span, fmt.Errorf("find flash item %s: %w", itemID, err))
	}
	if item == nil {
		return failSpan(span, domain.ErrNotFound)
	}

	next, noop, err := domain.NextStatus(item.Status, action)
	if err != nil {
		return failSpan(span, fmt.Errorf("%s flash item %s in status %s: %w", action, itemID, item.Status, err))
	}
	if noop {
		log.Info("flash item already in requested status", zap.String("status", string(item.Status)))
		return nil
	}

	if action == domain.ActionOnline && s.warmer != nil {
		if err := s.warmer.WarmStock(ctx, itemID, item.AvailableStock); err != nil {
			return failSpan(span, fmt.Errorf("warm stock for flash item %s: %w", itemID, err))
		}
	}

	item.Status = next
	item.UpdatedAt = s.now()
	if err := s.items.Save(ctx, item); err != nil {
		return failSpan(span, fmt.Errorf("save flash item %s: %w", itemID, err))
	}
	log.Info("flash item status changed", zap.String("status", string(next)))

	s.emit(ctx, eventType, *item)
	return nil
}
