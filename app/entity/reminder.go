package entity

import "time"

const (
	ReminderChannelEmail    = "email"
	ReminderChannelWhatsApp = "whatsapp"

	ReminderStatusSent  = "sent"
	ReminderStatusError = "error"
)

type Reminder struct {
	ID uint64

	PaymentID uint64
	Channel   string
	Message   string
	Status    string
	Error     *string

	SentAt time.Time
}
