package port

import "context"

type InventoryRepository interface {
	// DecreaseIfAvailable atomically decreases stock, returns false if insufficient
	DecreaseIfAvailable(ctx context.Context, itemID string, quantity int64) (bool, error)

	// Increase restores stock, returns false if the item has no counter
	Increase(ctx context.Context, itemID string, quantity int64) (bool, error)
}

// StockWarmer seeds a stock counter kept outside the item store. It must not reset a
// counter that already exists.
type StockWarmer interface {
	WarmStock(ctx context.Context, itemID string, quantity int64) error
}
