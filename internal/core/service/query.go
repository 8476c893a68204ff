package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/rl1809/flash-item/internal/core/domain"
)

// ListItems returns one page of items matching query. A nil query lists the first page.
func (s *ItemService) ListItems(ctx context.Context, query *domain.ItemQuery) (*domain.PageResult, error) {
	ctx, span := s.tracer.Start(ctx, "ItemService.ListItems")
	defer span.End()

	var q domain.ItemQuery
	if query != nil {
		q = *query
	}
	q = q.Normalize()

	items, err := s.items.FindByCondition(ctx, q)
	if err != nil {
		return nil, failSpan(span, fmt.Errorf("find flash items: %w", err))
	}
	total, err := s.items.CountByCondition(ctx, q)
	if err != nil {
		return nil, failSpan(span, fmt.Errorf("count flash items: %w", err))
	}
	s.logger.Debug("listed flash items", zap.Int("count", len(items)), zap.Int("total", total))

	if items == nil {
		items = []domain.FlashItem{}
	}
	return &domain.PageResult{Items: items, Total: total}, nil
}

func (s *ItemService) GetItem(ctx context.Context, itemID string) (*domain.FlashItem, error) {
	ctx, span := s.startSpan(ctx, "ItemService.GetItem", itemID)
	defer span.End()

	if itemID == "" {
		return nil, failSpan(span, domain.ErrInvalidParameters)
	}

	item, err := s.items.FindByID(ctx, itemID)
	if err != nil {
		return nil, failSpan(span, fmt.Errorf("find flash item %s: %w", itemID, err))
	}
	if item == nil {
		return nil, failSpan(span, domain.ErrNotFound)
	}
	return item, nil
}
