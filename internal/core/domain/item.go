package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// FlashItem is a product listing offered in a time-boxed sale.
type FlashItem struct {
	ID             string          `json:"id"`
	ActivityID     string          `json:"activity_id"`
	Title          string          `json:"title"`
	SubTitle       string          `json:"sub_title,omitempty"`
	Description    string          `json:"description,omitempty"`
	OriginalPrice  decimal.Decimal `json:"original_price"`
	FlashPrice     decimal.Decimal `json:"flash_price"`
	InitialStock   int64           `json:"initial_stock"`
	AvailableStock int64           `json:"available_stock"`
	Status         ItemStatus      `json:"status"`
	StartTime      time.Time       `json:"start_time"`
	EndTime        time.Time       `json:"end_time"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

// ValidateForCreate reports whether the item carries everything needed to be published.
func (i *FlashItem) ValidateForCreate() bool {
	if i.Title == "" {
		return false
	}
	if !i.OriginalPrice.IsPositive() || !i.FlashPrice.IsPositive() {
		return false
	}
	if i.FlashPrice.GreaterThan(i.OriginalPrice) {
		return false
	}
	if i.InitialStock <= 0 || i.AvailableStock < 0 || i.AvailableStock > i.InitialStock {
		return false
	}
	if i.StartTime.IsZero() || i.EndTime.IsZero() {
		return false
	}
	return i.StartTime.Before(i.EndTime)
}

func (i *FlashItem) IsOnline() bool {
	return i.Status == ItemStatusOnline
}

// InProgress reports whether now falls inside [StartTime, EndTime).
func (i *FlashItem) InProgress(now time.Time) bool {
	return !now.Before(i.StartTime) && now.Before(i.EndTime)
}
