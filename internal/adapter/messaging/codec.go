package messaging

import (
	"encoding/json"
	"fmt"

	"github.com/rl1809/flash-item/internal/core/domain"
)

func encodeEvent(event domain.FlashItemEvent) ([]byte, error) {
	payload, err := json.Marshal(event)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal event %s: %w", event.ID, err)
	}
	return payload, nil
}

// DecodeEvent is the consumer side of the payload every sink writes.
func DecodeEvent(payload []byte) (domain.FlashItemEvent, error) {
	var event domain.FlashItemEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		return domain.FlashItemEvent{}, fmt.Errorf("failed to unmarshal event: %w", err)
	}
	return event, nil
}
