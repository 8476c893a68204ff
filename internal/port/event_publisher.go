package port

import (
	"context"

	"github.com/rl1809/flash-item/internal/core/domain"
)

type EventPublisher interface {
	// Publish hands the event to the sink. Events for one item must keep their order.
	Publish(ctx context.Context, event domain.FlashItemEvent) error
}
