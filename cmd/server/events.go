package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/rl1809/flash-item/internal/adapter/handler"
	"github.com/rl1809/flash-item/internal/adapter/messaging"
	"github.com/rl1809/flash-item/internal/config"
	"github.com/rl1809/flash-item/internal/port"
)

var errNATSDisconnected = errors.New("nats connection is not connected")

// newEventPublisher builds the configured sink. The returned func releases its connection.
func newEventPublisher(ctx context.Context, cfg *config.Config, rdb *redis.Client, monitor *handler.HealthMonitor, logger *zap.Logger) (port.EventPublisher, func(), error) {
	switch cfg.EventSink {
	case config.SinkNATS:
		nc, err := nats.Connect(cfg.NATSURL, nats.Name(config.ServiceName))
		if err != nil {
			return nil, nil, fmt.Errorf("failed to connect nats: %w", err)
		}
		publisher, err := messaging.NewJetStreamPublisher(ctx, nc, cfg.NATSStream, messaging.DefaultSubjectPrefix)
		if err != nil {
			nc.Close()
			return nil, nil, err
		}
		monitor.Register("nats", func(context.Context) error {
			if !nc.IsConnected() {
				return errNATSDisconnected
			}
			return nil
		})
		return publisher, func() {
			if err := nc.Drain(); err != nil {
				logger.Warn("failed to drain nats connection", zap.Error(err))
			}
		}, nil

	case config.SinkKafka:
		publisher := messaging.NewKafkaPublisher(messaging.NewKafkaWriter(cfg.KafkaBrokers, cfg.KafkaTopic))
		return publisher, func() {
			if err := publisher.Close(); err != nil {
				logger.Warn("failed to close kafka writer", zap.Error(err))
			}
		}, nil

	case config.SinkRedis:
		return messaging.NewRedisStreamPublisher(rdb, cfg.RedisStream, int64(cfg.RedisStreamMax)), func() {}, nil

	default:
		return messaging.NewLogPublisher(logger.Named("events")), func() {}, nil
	}
}
