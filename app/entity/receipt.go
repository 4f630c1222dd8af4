package entity

import "time"

type Receipt struct {
	ID uint64

	PaymentID     uint64
	ReceiptNumber string
	StorageKey    *string

	GeneratedAt time.Time
}
