package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/rl1809/flash-item/internal/adapter/handler"
	"github.com/rl1809/flash-item/internal/adapter/messaging"
	"github.com/rl1809/flash-item/internal/adapter/storage"
	"github.com/rl1809/flash-item/internal/config"
	"github.com/rl1809/flash-item/internal/core/service"
	"github.com/rl1809/flash-item/internal/platform/observability"
	"github.com/rl1809/flash-item/internal/port"
)

func main() {
	cfg, err := config.Load(os.Args[1:])
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.LogLevel)
	if err != nil {
		log.Fatalf("failed to create logger: %v", err)
	}
	defer logger.Sync()

	if err := run(cfg, logger); err != nil {
		logger.Fatal("server stopped with error", zap.Error(err))
	}
	logger.Info("server stopped")
}

func run(cfg *config.Config, logger *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := observability.SetupTracing(ctx, cfg.OtelEndpoint)
	if err != nil {
		return fmt.Errorf("setup tracing: %w", err)
	}
	defer func() {
		tctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := shutdownTracing(tctx); err != nil {
			logger.Warn("failed to flush traces", zap.Error(err))
		}
	}()

	monitor := handler.NewHealthMonitor(config.ServiceName, logger.Named("health"))

	// Item store
	dialect, err := storage.DialectFor(cfg.StoreDriver)
	if err != nil {
		return err
	}
	db, err := storage.OpenDB(ctx, dialect, cfg.StoreDSN)
	if err != nil {
		return err
	}
	defer db.Close()
	if err := storage.EnsureSchema(ctx, db, dialect); err != nil {
		return err
	}
	monitor.Register("database", db.PingContext)
	logger.Info("connected to item store", zap.String("driver", dialect.Name))

	// Redis
	var rdb *redis.Client
	if cfg.NeedsRedis() {
		rdb = redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Username: cfg.RedisUser,
			Password: cfg.RedisPassword,
			PoolSize: cfg.RedisPoolSize,
		})
		defer rdb.Close()
		if err := rdb.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("failed to connect redis: %w", err)
		}
		monitor.Register("redis", func(ctx context.Context) error { return rdb.Ping(ctx).Err() })
		logger.Info("connected to redis", zap.String("addr", cfg.RedisAddr))
	}

	// Inventory
	sqlAdapter := storage.NewSQLAdapter(db, dialect)
	var (
		inventory port.InventoryRepository = sqlAdapter
		opts      []service.Option
	)
	if cfg.InventoryBackend == config.InventoryRedis {
		redisAdapter := storage.NewRedisAdapter(rdb)
		if err := syncStock(ctx, sqlAdapter, redisAdapter, logger); err != nil {
			return err
		}

		writeBehind := storage.NewWriteBehindInventory(redisAdapter, sqlAdapter, cfg.StockQueueSize, cfg.StockWorkers, logger.Named("stock"))
		defer func() {
			writeBehind.Close()
			logger.Info("stock workers stopped")
		}()
		logger.Info("started stock workers", zap.Int("workers", cfg.StockWorkers))

		inventory = writeBehind
		opts = append(opts, service.WithStockWarmer(redisAdapter))
	}

	// Events
	events, closeEvents, err := newEventPublisher(ctx, cfg, rdb, monitor, logger)
	if err != nil {
		return err
	}
	defer closeEvents()
	logger.Info("event sink ready", zap.String("sink", cfg.EventSink))

	items := service.NewItemService(sqlAdapter, inventory,
		messaging.NewTimeoutPublisher(events, cfg.PublishTimeout),
		logger.Named("service"), opts...)

	// Servers
	httpHandler := handler.NewHTTPHandler(items, monitor, logger.Named("http"))
	httpServer := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           httpHandler.Router(cfg.JWTSecret),
		ReadHeaderTimeout: 5 * time.Second,
	}

	grpcServer := grpc.NewServer()
	healthpb.RegisterHealthServer(grpcServer, monitor.Server())
	lis, err := net.Listen("tcp", cfg.GRPCAddr)
	if err != nil {
		return fmt.Errorf("failed to listen: %w", err)
	}

	monitor.Check(ctx)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("HTTP server listening", zap.String("addr", cfg.HTTPAddr))
		if err := httpServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		logger.Info("gRPC server listening", zap.String("addr", cfg.GRPCAddr))
		if err := grpcServer.Serve(lis); err != nil {
			return fmt.Errorf("gRPC server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		monitor.Run(gctx, cfg.HealthInterval)
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")
		monitor.Shutdown()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Warn("HTTP shutdown", zap.Error(err))
		}
		logger.Info("HTTP server stopped")

		grpcServer.GracefulStop()
		logger.Info("gRPC server stopped")
		return nil
	})

	return g.Wait()
}

// syncStock copies the durable stock of every ONLINE item into Redis. The item store is
// the source of truth at startup.
func syncStock(ctx context.Context, src *storage.SQLAdapter, dst *storage.RedisAdapter, logger *zap.Logger) error {
	stock, err := src.ListOnlineStock(ctx)
	if err != nil {
		return fmt.Errorf("failed to load online stock: %w", err)
	}

	for itemID, qty := range stock {
		if err := dst.SetStock(ctx, itemID, qty); err != nil {
			return fmt.Errorf("failed to set stock for %s: %w", itemID, err)
		}
	}
	logger.Info("synced stock to redis", zap.Int("items", len(stock)))
	return nil
}
