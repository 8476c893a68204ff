package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/rl1809/flash-item/internal/core/domain"
	"github.com/rl1809/flash-item/internal/port"
)

const tracerName = "github.com/rl1809/flash-item/internal/core/service"

// ItemService owns the flash item lifecycle, stock adjustment, the order eligibility gate
// and paged lookups. It keeps no state of its own; all of it lives behind the ports.
type ItemService struct {
	items     port.ItemRepository
	inventory port.InventoryRepository
	events    port.EventPublisher
	warmer    port.StockWarmer
	logger    *zap.Logger
	tracer    trace.Tracer
	now       func() time.Time
}

type Option func(*ItemService)

// WithClock replaces time.Now, used for sale window checks and timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *ItemService) { s.now = now }
}

// WithStockWarmer seeds an external stock counter before an item goes online.
func WithStockWarmer(w port.StockWarmer) Option {
	return func(s *ItemService) { s.warmer = w }
}

func WithTracer(t trace.Tracer) Option {
	return func(s *ItemService) { s.tracer = t }
}

func NewItemService(items port.ItemRepository, inventory port.InventoryRepository, events port.EventPublisher, logger *zap.Logger, opts ...Option) *ItemService {
	s := &ItemService{
		items:     items,
		inventory: inventory,
		events:    events,
		logger:    logger,
		tracer:    otel.Tracer(tracerName),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = zap.NewNop()
	}
	return s
}

func (s *ItemService) startSpan(ctx context.Context, name, itemID string) (context.Context, trace.Span) {
	return s.tracer.Start(ctx, name, trace.WithAttributes(attribute.String("flash_item.id", itemID)))
}

func failSpan(span trace.Span, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	return err
}

// emit publishes after the store write has committed. A failed publish is logged and
// never undoes the write: the store is the source of truth.
func (s *ItemService) emit(ctx context.Context, eventType domain.EventType, item domain.FlashItem) {
	event := domain.FlashItemEvent{
		ID:         uuid.NewString(),
		Type:       eventType,
		Item:       item,
		OccurredAt: s.now().UTC(),
	}

	if err := s.events.Publish(ctx, event); err != nil {
		trace.SpanFromContext(ctx).RecordError(err)
		s.logger.Error("failed to publish flash item event",
			zap.String("item_id", item.ID),
			zap.String("event_id", event.ID),
			zap.String("event_type", string(eventType)),
			zap.Error(err),
		)
		return
	}

	s.logger.Debug("flash item event published",
		zap.String("item_id", item.ID),
		zap.String("event_id", event.ID),
		zap.String("event_type", string(eventType)),
	)
}
