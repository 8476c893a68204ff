package port

import (
	"context"

	"github.com/rl1809/flash-item/internal/core/domain"
)

type ItemRepository interface {
	// FindByID returns nil, nil when the item does not exist
	FindByID(ctx context.Context, itemID string) (*domain.FlashItem, error)

	// Save upserts the item. Stock of an existing row is left to InventoryRepository.
	Save(ctx context.Context, item *domain.FlashItem) error

	// FindByCondition returns one page of items matching the query
	FindByCondition(ctx context.Context, query domain.ItemQuery) ([]domain.FlashItem, error)

	// CountByCondition counts all items matching the query, ignoring paging
	CountByCondition(ctx context.Context, query domain.ItemQuery) (int, error)
}
