package domain

import "time"

type EventType string

const (
	EventPublished    EventType = "flash_item.published"
	EventOnlinePlaced EventType = "flash_item.online"
	EventOffline      EventType = "flash_item.offline"
)

// FlashItemEvent notifies downstream consumers of a committed lifecycle change.
// ID is unique per emission so at-least-once consumers can drop redeliveries.
type FlashItemEvent struct {
	ID         string    `json:"id"`
	Type       EventType `json:"type"`
	Item       FlashItem `json:"item"`
	OccurredAt time.Time `json:"occurred_at"`
}
