package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/rl1809/flash-item/internal/adapter/messaging"
	"github.com/rl1809/flash-item/internal/adapter/storage"
	"github.com/rl1809/flash-item/internal/config"
	"github.com/rl1809/flash-item/internal/core/domain"
	"github.com/rl1809/flash-item/internal/core/service"
	"github.com/rl1809/flash-item/internal/platform/observability"
	"github.com/rl1809/flash-item/internal/port"
)

func main() {
	var (
		driver        = flag.String("driver", config.LookupEnvString("STORE_DRIVER", "sqlite"), "Item store: mysql, postgres or sqlite.")
		dsn           = flag.String("dsn", config.LookupEnvString("STORE_DSN", ":memory:"), "Item store data source name.")
		backend       = flag.String("backend", config.LookupEnvString("INVENTORY_BACKEND", config.InventorySQL), "Inventory backend: sql or redis.")
		redisAddr     = flag.String("redisAddr", config.LookupEnvString("REDIS_ADDR", "localhost:6379"), "Redis address.")
		initialStock  = flag.Int64("stock", 20, "Initial stock of the test item.")
		totalRequests = flag.Int("requests", 50, "Concurrent single-unit decrease requests.")
	)
	flag.Parse()

	logger, err := observability.NewLogger("warn")
	if err != nil {
		log.Fatalf("failed to create logger: %v", err)
	}
	defer logger.Sync()

	ctx := context.Background()

	dialect, err := storage.DialectFor(*driver)
	if err != nil {
		log.Fatal(err)
	}
	db, err := storage.OpenDB(ctx, dialect, *dsn)
	if err != nil {
		log.Fatal(err)
	}
	defer db.Close()
	if err := storage.EnsureSchema(ctx, db, dialect); err != nil {
		log.Fatal(err)
	}

	sqlAdapter := storage.NewSQLAdapter(db, dialect)
	var (
		inventory   port.InventoryRepository = sqlAdapter
		opts        []service.Option
		writeBehind *storage.WriteBehindInventory
		redisStock  func(itemID string) (int64, bool, error)
	)
	if *backend == config.InventoryRedis {
		rdb := redis.NewClient(&redis.Options{Addr: *redisAddr})
		if err := rdb.Ping(ctx).Err(); err != nil {
			log.Fatalf("failed to connect redis: %v", err)
		}
		defer rdb.Close()

		redisAdapter := storage.NewRedisAdapter(rdb)
		writeBehind = storage.NewWriteBehindInventory(redisAdapter, sqlAdapter, *totalRequests, 4, logger)
		inventory = writeBehind
		opts = append(opts, service.WithStockWarmer(redisAdapter))
		redisStock = func(itemID string) (int64, bool, error) { return redisAdapter.Stock(ctx, itemID) }
	}

	items := service.NewItemService(sqlAdapter, inventory, messaging.NewLogPublisher(logger), logger, opts...)

	now := time.Now()
	item := &domain.FlashItem{
		ID:             "stress-" + uuid.NewString(),
		ActivityID:     "stress-test",
		Title:          "Stress test item",
		OriginalPrice:  decimal.NewFromInt(100),
		FlashPrice:     decimal.NewFromInt(10),
		InitialStock:   *initialStock,
		AvailableStock: *initialStock,
		StartTime:      now.Add(-time.Minute),
		EndTime:        now.Add(time.Hour),
	}
	if err := items.Publish(ctx, item); err != nil {
		log.Fatalf("failed to publish item: %v", err)
	}
	if err := items.BringOnline(ctx, item.ID); err != nil {
		log.Fatalf("failed to bring item online: %v", err)
	}

	var successCount, failCount, errorCount atomic.Int32
	var wg sync.WaitGroup
	start := time.Now()

	for i := 0; i < *totalRequests; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			ok, err := items.DecreaseStock(ctx, item.ID, 1)
			switch {
			case err != nil:
				errorCount.Add(1)
				logger.Warn("decrease failed", zap.Error(err))
			case ok:
				successCount.Add(1)
			default:
				failCount.Add(1)
			}
		}()
	}

	wg.Wait()
	elapsed := time.Since(start)
	if writeBehind != nil {
		writeBehind.Close()
	}

	success := successCount.Load()
	fail := failCount.Load()
	expectedSuccess := min(int64(*totalRequests), *initialStock)

	fmt.Println("========== STRESS TEST RESULTS ==========")
	fmt.Printf("Backend:          %s (%s)\n", *backend, dialect.Name)
	fmt.Printf("Initial Stock:    %d\n", *initialStock)
	fmt.Printf("Total Requests:   %d\n", *totalRequests)
	fmt.Printf("Successful:       %d\n", success)
	fmt.Printf("Sold Out:         %d\n", fail)
	fmt.Printf("Errors:           %d\n", errorCount.Load())
	fmt.Printf("Duration:         %v\n", elapsed)
	fmt.Println("==========================================")

	passed := true
	if int64(success) != expectedSuccess || errorCount.Load() != 0 {
		fmt.Printf("FAIL: Expected %d successful decreases, got %d\n", expectedSuccess, success)
		passed = false
	} else {
		fmt.Printf("PASS: Exactly %d decreases succeeded, %d sold out\n", success, fail)
	}

	stored, err := items.GetItem(ctx, item.ID)
	if err != nil {
		log.Fatalf("failed to read item: %v", err)
	}
	want := *initialStock - expectedSuccess
	fmt.Printf("Final Stored Stock: %d\n", stored.AvailableStock)
	if stored.AvailableStock != want {
		fmt.Printf("FAIL: Expected stored stock %d\n", want)
		passed = false
	}

	if redisStock != nil {
		cached, _, err := redisStock(item.ID)
		if err != nil {
			log.Fatalf("failed to read redis stock: %v", err)
		}
		fmt.Printf("Final Redis Stock:  %d\n", cached)
		if cached != want {
			fmt.Printf("FAIL: Expected redis stock %d\n", want)
			passed = false
		}
	}

	if !passed {
		os.Exit(1)
	}
}
