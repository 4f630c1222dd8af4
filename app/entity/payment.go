package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	PaymentStatusPending   = "pending"
	PaymentStatusCompleted = "completed"
	PaymentStatusFailed    = "failed"
	PaymentStatusCancelled = "cancelled"
)

const (
	PaymentModeCard       = "card"
	PaymentModeUPI        = "upi"
	PaymentModeNetBanking = "net_banking"
	PaymentModeWallet     = "wallet"
	PaymentModePhonePe    = "phonepe"
	PaymentModeCashfree   = "cashfree"
	PaymentModeRazorpay   = "razorpay"
	PaymentModeQR         = "qr"
	PaymentModeManual     = "manual"
)

const (
	GatewayRazorpay = "razorpay"
	GatewayCashfree = "cashfree"
	GatewayPhonePe  = "phonepe"
	GatewayManual   = "manual"
)

const (
	ReceiptDeliveryNone    int32 = 0
	ReceiptDeliveryPending int32 = 1
	ReceiptDeliverySuccess int32 = 10
	ReceiptDeliveryFailed  int32 = 20
)

type Payment struct {
	ID uint64

	UserID uint64

	Amount   decimal.Decimal
	Currency string

	PaymentMode   string
	Status        string
	ReceiptNumber string
	ServiceType   *string

	Gateway              string
	GatewayOrderID       *string
	GatewayPaymentID     *string
	GatewaySignature     *string
	GatewaySessionID     *string
	GatewayPaymentMethod *string
	GatewayPaidAt        *time.Time
	CheckoutURL          *string
	UTR                  *string
	FailureReason        *string

	ReceiptDeliveryStatus   int32
	ReceiptDeliveryAttempts int32
	ReceiptDeliveryNextAt   *time.Time
	ReceiptDeliveryLastErr  *string

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (p *Payment) IsTerminal() bool {
	return IsTerminalStatus(p.Status)
}

func IsTerminalStatus(status string) bool {
	switch status {
	case PaymentStatusCompleted, PaymentStatusFailed, PaymentStatusCancelled:
		return true
	default:
		return false
	}
}

func IsValidStatus(status string) bool {
	return status == PaymentStatusPending || IsTerminalStatus(status)
}
