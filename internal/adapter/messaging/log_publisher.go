package messaging

import (
	"context"

	"go.uber.org/zap"

	"github.com/rl1809/flash-item/internal/core/domain"
)

// LogPublisher writes events to the log instead of a broker. Local development only.
type LogPublisher struct {
	logger *zap.Logger
}

func NewLogPublisher(logger *zap.Logger) *LogPublisher {
	return &LogPublisher{logger: logger}
}

func (p *LogPublisher) Publish(ctx context.Context, event domain.FlashItemEvent) error {
	p.logger.Info("flash item event",
		zap.String("event_id", event.ID),
		zap.String("event_type", string(event.Type)),
		zap.String("item_id", event.Item.ID),
		zap.String("status", string(event.Item.Status)),
		zap.Time("occurred_at", event.OccurredAt),
	)
	return nil
}
