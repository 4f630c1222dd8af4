package entity

import "time"

const (
	PaymentCallbackProcessed int32 = 10
	PaymentCallbackIgnored   int32 = 15
	PaymentCallbackRejected  int32 = 20
)

type PaymentCallback struct {
	ID uint64

	PaymentID *uint64

	Gateway     string
	OrderID     *string
	Signature   string
	PayloadJSON string
	Status      int32
	Error       *string

	CreatedAt time.Time
}
