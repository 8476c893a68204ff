package messaging

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/rl1809/flash-item/internal/core/domain"
)

const DefaultStreamKey = "flash_item:events"

// RedisStreamPublisher appends events to a single Redis stream. Consumer groups on the
// stream give at-least-once delivery; one stream keeps global emission order.
type RedisStreamPublisher struct {
	client *redis.Client
	stream string
	maxLen int64
}

func NewRedisStreamPublisher(client *redis.Client, stream string, maxLen int64) *RedisStreamPublisher {
	return &RedisStreamPublisher{client: client, stream: stream, maxLen: maxLen}
}

func (p *RedisStreamPublisher) Publish(ctx context.Context, event domain.FlashItemEvent) error {
	payload, err := encodeEvent(event)
	if err != nil {
		return err
	}

	err = p.client.XAdd(ctx, &redis.XAddArgs{
		Stream: p.stream,
		MaxLen: p.maxLen,
		Approx: true,
		Values: map[string]any{
			"event_id":   event.ID,
			"event_type": string(event.Type),
			"item_id":    event.Item.ID,
			"payload":    payload,
		},
	}).Err()
	if err != nil {
		return fmt.Errorf("failed to append to stream %s: %w", p.stream, err)
	}
	return nil
}
