package service_test

import (
	"context"
	"errors"
	"os"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/rl1809/flash-item/internal/adapter/messaging"
	"github.com/rl1809/flash-item/internal/adapter/storage"
	"github.com/rl1809/flash-item/internal/core/domain"
	"github.com/rl1809/flash-item/internal/core/service"
)

type testEnv struct {
	sql     *storage.SQLAdapter
	redis   *redis.Client
	cache   *storage.RedisAdapter
	events  *observer.ObservedLogs
	logger  *zap.Logger
	cleanup func()
}

func setupTestEnv(t *testing.T, withRedis bool) *testEnv {
	t.Helper()
	ctx := context.Background()

	db, err := storage.OpenDB(ctx, storage.SQLite, ":memory:")
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := storage.EnsureSchema(ctx, db, storage.SQLite); err != nil {
		t.Fatalf("schema: %v", err)
	}

	core, logs := observer.New(zapcore.InfoLevel)
	env := &testEnv{
		sql:     storage.NewSQLAdapter(db, storage.SQLite),
		events:  logs,
		logger:  zap.New(core),
		cleanup: func() { db.Close() },
	}

	if !withRedis {
		return env
	}

	redisAddr := os.Getenv("REDIS_ADDR")
	if redisAddr == "" {
		redisAddr = "localhost:6379"
	}
	rdb := redis.NewClient(&redis.Options{Addr: redisAddr})
	if err := rdb.Ping(ctx).Err(); err != nil {
		db.Close()
		t.Skipf("Redis not available: %v", err)
	}
	env.redis = rdb
	env.cache = storage.NewRedisAdapter(rdb)
	env.cleanup = func() {
		rdb.Close()
		db.Close()
	}
	return env
}

func newItem(stock int64) *domain.FlashItem {
	now := time.Now()
	return &domain.FlashItem{
		ID:             "integration-" + uuid.NewString(),
		ActivityID:     "integration",
		Title:          "Integration item",
		OriginalPrice:  decimal.NewFromInt(100),
		FlashPrice:     decimal.NewFromInt(50),
		InitialStock:   stock,
		AvailableStock: stock,
		StartTime:      now.Add(-time.Minute),
		EndTime:        now.Add(time.Hour),
	}
}

func decreaseConcurrently(ctx context.Context, svc *service.ItemService, itemID string, requests int) int32 {
	var success atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < requests; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if ok, err := svc.DecreaseStock(ctx, itemID, 1); err == nil && ok {
				success.Add(1)
			}
		}()
	}
	wg.Wait()
	return success.Load()
}

func TestIntegration_SQLFullFlow(t *testing.T) {
	env := setupTestEnv(t, false)
	defer env.cleanup()
	ctx := context.Background()

	svc := service.NewItemService(env.sql, env.sql, messaging.NewLogPublisher(env.logger), env.logger)

	item := newItem(10)
	if err := svc.Publish(ctx, item); err != nil {
		t.Fatalf("Publish: %v", err)
	}
	if err := svc.BringOnline(ctx, item.ID); err != nil {
		t.Fatalf("BringOnline: %v", err)
	}
	if !svc.IsAllowPlaceOrder(ctx, item.ID) {
		t.Fatal("expected online item to accept orders")
	}

	if got := decreaseConcurrently(ctx, svc, item.ID, 20); got != 10 {
		t.Errorf("expected 10 successful decreases, got %d", got)
	}

	stored, err := svc.GetItem(ctx, item.ID)
	if err != nil {
		t.Fatalf("GetItem: %v", err)
	}
	if stored.AvailableStock != 0 {
		t.Errorf("expected stock 0, got %d", stored.AvailableStock)
	}

	if err := svc.TakeOffline(ctx, item.ID); err != nil {
		t.Fatalf("TakeOffline: %v", err)
	}
	if svc.IsAllowPlaceOrder(ctx, item.ID) {
		t.Error("expected offline item to reject orders")
	}

	if n := env.events.FilterMessage("flash item event").Len(); n != 3 {
		t.Errorf("expected 3 events, got %d", n)
	}
}

func TestIntegration_LifecycleDoesNotUndoStock(t *testing.T) {
	env := setupTestEnv(t, false)
	defer env.cleanup()
	ctx := context.Background()

	svc := service.NewItemService(env.sql, env.sql, messaging.NewLogPublisher(env.logger), env.logger)

	item := newItem(5)
	if err := svc.Publish(ctx, item); err != nil {
		t.Fatalf("Publish: %v", err)
	}
	if err := svc.BringOnline(ctx, item.ID); err != nil {
		t.Fatalf("BringOnline: %v", err)
	}
	if ok, err := svc.DecreaseStock(ctx, item.ID, 2); err != nil || !ok {
		t.Fatalf("DecreaseStock: %v, %v", ok, err)
	}
	if err := svc.TakeOffline(ctx, item.ID); err != nil {
		t.Fatalf("TakeOffline: %v", err)
	}

	stored, err := svc.GetItem(ctx, item.ID)
	if err != nil {
		t.Fatalf("GetItem: %v", err)
	}
	if stored.AvailableStock != 3 {
		t.Errorf("expected stock 3 after offline, got %d", stored.AvailableStock)
	}
}

func TestIntegration_RepublishDoesNotRevertOnline(t *testing.T) {
	env := setupTestEnv(t, false)
	defer env.cleanup()
	ctx := context.Background()

	svc := service.NewItemService(env.sql, env.sql, messaging.NewLogPublisher(env.logger), env.logger)

	item := newItem(5)
	snapshot := *item
	if err := svc.Publish(ctx, item); err != nil {
		t.Fatalf("Publish: %v", err)
	}
	if err := svc.BringOnline(ctx, item.ID); err != nil {
		t.Fatalf("BringOnline: %v", err)
	}

	if err := svc.Publish(ctx, &snapshot); !errors.Is(err, domain.ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition, got: %v", err)
	}

	stored, err := svc.GetItem(ctx, item.ID)
	if err != nil {
		t.Fatalf("GetItem: %v", err)
	}
	if stored.Status != domain.ItemStatusOnline {
		t.Errorf("expected ONLINE, got %s", stored.Status)
	}
	if n := env.events.FilterMessage("flash item event").Len(); n != 2 {
		t.Errorf("expected 2 events, got %d", n)
	}
}

func TestIntegration_RedisWriteBehind(t *testing.T) {
	env := setupTestEnv(t, true)
	defer env.cleanup()
	ctx := context.Background()

	writeBehind := storage.NewWriteBehindInventory(env.cache, env.sql, 100, 3, env.logger)
	svc := service.NewItemService(env.sql, writeBehind, messaging.NewLogPublisher(env.logger), env.logger,
		service.WithStockWarmer(env.cache))

	item := newItem(10)
	defer env.redis.Del(ctx, "flash_item:stock:"+item.ID)

	if err := svc.Publish(ctx, item); err != nil {
		t.Fatalf("Publish: %v", err)
	}
	if err := svc.BringOnline(ctx, item.ID); err != nil {
		t.Fatalf("BringOnline: %v", err)
	}

	if got := decreaseConcurrently(ctx, svc, item.ID, 20); got != 10 {
		t.Errorf("expected 10 successful decreases, got %d", got)
	}
	writeBehind.Close()

	cached, ok, err := env.cache.Stock(ctx, item.ID)
	if err != nil || !ok {
		t.Fatalf("Stock: %v, %v", ok, err)
	}
	if cached != 0 {
		t.Errorf("expected Redis stock 0, got %d", cached)
	}

	stored, err := svc.GetItem(ctx, item.ID)
	if err != nil {
		t.Fatalf("GetItem: %v", err)
	}
	if stored.AvailableStock != 0 {
		t.Errorf("expected stored stock 0, got %d", stored.AvailableStock)
	}
}

func TestIntegration_RedisBackendDecreasesPublishedItem(t *testing.T) {
	env := setupTestEnv(t, true)
	defer env.cleanup()
	ctx := context.Background()

	writeBehind := storage.NewWriteBehindInventory(env.cache, env.sql, 10, 1, env.logger)
	svc := service.NewItemService(env.sql, writeBehind, messaging.NewLogPublisher(env.logger), env.logger,
		service.WithStockWarmer(env.cache))

	item := newItem(10)
	defer env.redis.Del(ctx, "flash_item:stock:"+item.ID)
	if err := svc.Publish(ctx, item); err != nil {
		t.Fatalf("Publish: %v", err)
	}

	ok, err := svc.DecreaseStock(ctx, item.ID, 1)
	if err != nil || !ok {
		t.Fatalf("expected true, nil; got %v, %v", ok, err)
	}
	writeBehind.Close()

	stored, err := svc.GetItem(ctx, item.ID)
	if err != nil {
		t.Fatalf("GetItem: %v", err)
	}
	if stored.AvailableStock != 9 {
		t.Errorf("expected stored stock 9, got %d", stored.AvailableStock)
	}
}

func TestIntegration_RollbackWhenStoreRejects(t *testing.T) {
	env := setupTestEnv(t, true)
	defer env.cleanup()
	ctx := context.Background()

	writeBehind := storage.NewWriteBehindInventory(env.cache, env.sql, 10, 1, env.logger)
	svc := service.NewItemService(env.sql, writeBehind, messaging.NewLogPublisher(env.logger), env.logger)

	// Durable stock is 0 while the Redis counter claims 5.
	item := newItem(5)
	item.AvailableStock = 0
	defer env.redis.Del(ctx, "flash_item:stock:"+item.ID)

	if err := svc.Publish(ctx, item); err != nil {
		t.Fatalf("Publish: %v", err)
	}
	if err := env.cache.SetStock(ctx, item.ID, 5); err != nil {
		t.Fatalf("SetStock: %v", err)
	}

	ok, err := svc.DecreaseStock(ctx, item.ID, 1)
	if err != nil || !ok {
		t.Fatalf("DecreaseStock: %v, %v", ok, err)
	}
	writeBehind.Close()

	cached, _, err := env.cache.Stock(ctx, item.ID)
	if err != nil {
		t.Fatalf("Stock: %v", err)
	}
	if cached != 5 {
		t.Errorf("expected Redis stock rolled back to 5, got %d", cached)
	}
}
