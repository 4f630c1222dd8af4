package entity

import "time"

type PaymentEvent struct {
	ID uint64

	PaymentID *uint64

	EventType string

	OldStatus *string
	NewStatus string

	Actor       *string
	PayloadJSON *string

	CreatedAt time.Time
}
