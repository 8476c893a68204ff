package storage

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/rl1809/flash-item/internal/port"
)

const persistTimeout = 5 * time.Second

// StockCounter is a fast stock store that can tell a missing counter from an empty one.
type StockCounter interface {
	port.InventoryRepository
	Stock(ctx context.Context, itemID string) (stock int64, ok bool, err error)
}

type stockChange struct {
	itemID   string
	quantity int64
}

// WriteBehindInventory takes decrements on a fast counter store and persists them to the
// durable store from a worker pool. A decrement the durable store rejects is given back to
// the counter. Items without a counter are decremented on the durable store directly.
type WriteBehindInventory struct {
	cache  StockCounter
	db     port.InventoryRepository
	queue  chan stockChange
	logger *zap.Logger

	wg        sync.WaitGroup
	closeOnce sync.Once
}

func NewWriteBehindInventory(cache StockCounter, db port.InventoryRepository, queueSize, workers int, logger *zap.Logger) *WriteBehindInventory {
	if logger == nil {
		logger = zap.NewNop()
	}
	w := &WriteBehindInventory{
		cache:  cache,
		db:     db,
		queue:  make(chan stockChange, queueSize),
		logger: logger,
	}

	for i := 0; i < workers; i++ {
		w.wg.Add(1)
		go func(id int) {
			defer w.wg.Done()
			w.workerLoop(id)
		}(i)
	}
	return w
}

func (w *WriteBehindInventory) DecreaseIfAvailable(ctx context.Context, itemID string, quantity int64) (bool, error) {
	ok, err := w.cache.DecreaseIfAvailable(ctx, itemID, quantity)
	if err != nil {
		return false, err
	}
	if !ok {
		_, exists, err := w.cache.Stock(ctx, itemID)
		if err != nil || exists {
			return false, err
		}
		return w.db.DecreaseIfAvailable(ctx, itemID, quantity)
	}

	change := stockChange{itemID: itemID, quantity: quantity}
	select {
	case w.queue <- change:
		return true, nil
	case <-ctx.Done():
		w.rollback(-1, change)
		return false, ctx.Err()
	}
}

// Increase writes through: the durable store decides whether the item exists.
func (w *WriteBehindInventory) Increase(ctx context.Context, itemID string, quantity int64) (bool, error) {
	ok, err := w.db.Increase(ctx, itemID, quantity)
	if err != nil || !ok {
		return ok, err
	}

	if _, err := w.cache.Increase(ctx, itemID, quantity); err != nil {
		w.logger.Warn("failed to increase cached stock",
			zap.String("item_id", itemID),
			zap.Int64("quantity", quantity),
			zap.Error(err),
		)
	}
	return true, nil
}

// Close stops accepting work and waits for queued decrements to be persisted.
// Callers must have stopped calling DecreaseIfAvailable.
func (w *WriteBehindInventory) Close() {
	w.closeOnce.Do(func() { close(w.queue) })
	w.wg.Wait()
}

func (w *WriteBehindInventory) workerLoop(id int) {
	for change := range w.queue {
		ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)

		ok, err := w.db.DecreaseIfAvailable(ctx, change.itemID, change.quantity)
		switch {
		case err != nil:
			w.logger.Error("failed to persist stock decrease",
				zap.Int("worker", id),
				zap.String("item_id", change.itemID),
				zap.Error(err),
			)
			w.rollback(id, change)
		case !ok:
			w.logger.Warn("durable stock lower than cached stock",
				zap.Int("worker", id),
				zap.String("item_id", change.itemID),
				zap.Int64("quantity", change.quantity),
			)
			w.rollback(id, change)
		}

		cancel()
	}
}

func (w *WriteBehindInventory) rollback(worker int, change stockChange) {
	ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
	defer cancel()

	if _, err := w.cache.Increase(ctx, change.itemID, change.quantity); err != nil {
		w.logger.Error("CRITICAL: stock rollback failed",
			zap.Int("worker", worker),
			zap.String("item_id", change.itemID),
			zap.Int64("quantity", change.quantity),
			zap.Error(err),
		)
		return
	}
	w.logger.Info("rolled back cached stock",
		zap.Int("worker", worker),
		zap.String("item_id", change.itemID),
		zap.Int64("quantity", change.quantity),
	)
}
