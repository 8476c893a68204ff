package messaging

import (
	"context"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"

	"github.com/rl1809/flash-item/internal/core/domain"
)

const (
	DefaultStreamName    = "FLASH_ITEM_EVENTS"
	DefaultSubjectPrefix = "flash_item.events"
)

// JetStreamPublisher writes events to a persistent JetStream stream. Publish returns
// only after the server acknowledged the message. Subjects are per item
// (flash_item.events.<id>) and the event id is the dedup key.
type JetStreamPublisher struct {
	js            jetstream.JetStream
	subjectPrefix string
}

func NewJetStreamPublisher(ctx context.Context, nc *nats.Conn, streamName, subjectPrefix string) (*JetStreamPublisher, error) {
	js, err := jetstream.New(nc)
	if err != nil {
		return nil, fmt.Errorf("failed to create JetStream context: %w", err)
	}

	_, err = js.CreateOrUpdateStream(ctx, jetstream.StreamConfig{
		Name:        streamName,
		Description: "Flash item lifecycle events",
		Subjects:    []string{subjectPrefix + ".>"},
		Storage:     jetstream.FileStorage,
		Retention:   jetstream.LimitsPolicy,
		MaxAge:      7 * 24 * time.Hour,
		Duplicates:  2 * time.Minute,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create/update stream: %w", err)
	}

	return &JetStreamPublisher{js: js, subjectPrefix: subjectPrefix}, nil
}

func (p *JetStreamPublisher) Subject(itemID string) string {
	return p.subjectPrefix + "." + itemID
}

func (p *JetStreamPublisher) Publish(ctx context.Context, event domain.FlashItemEvent) error {
	data, err := encodeEvent(event)
	if err != nil {
		return err
	}

	if _, err := p.js.Publish(ctx, p.Subject(event.Item.ID), data, jetstream.WithMsgID(event.ID)); err != nil {
		return fmt.Errorf("failed to publish to JetStream: %w", err)
	}
	return nil
}
