package messaging

import (
	"context"
	"time"

	"github.com/rl1809/flash-item/internal/core/domain"
	"github.com/rl1809/flash-item/internal/port"
)

// TimeoutPublisher bounds each Publish so a slow sink cannot stall a lifecycle request.
type TimeoutPublisher struct {
	next    port.EventPublisher
	timeout time.Duration
}

func NewTimeoutPublisher(next port.EventPublisher, timeout time.Duration) *TimeoutPublisher {
	return &TimeoutPublisher{next: next, timeout: timeout}
}

func (p *TimeoutPublisher) Publish(ctx context.Context, event domain.FlashItemEvent) error {
	if p.timeout <= 0 {
		return p.next.Publish(ctx, event)
	}

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()
	return p.next.Publish(ctx, event)
}
