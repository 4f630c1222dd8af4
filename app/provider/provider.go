package provider

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

var (
	ErrInvalidSignature    = errors.New("invalid gateway signature")
	ErrNotConfigured       = errors.New("gateway is not configured")
	ErrCallbackUnsupported = errors.New("gateway does not accept callbacks")
	ErrGatewayRequest      = errors.New("gateway request failed")
	ErrMalformedCallback   = errors.New("malformed gateway callback")
)

type Customer struct {
	UserID  uint64
	Name    string
	Email   string
	Phone   string
	Address string
}

type CreateInput struct {
	PaymentID     uint64
	ReceiptNumber string
	Amount        decimal.Decimal
	Currency      string
	PaymentMode   string
	Customer      Customer
	ReturnURL     string
	NotifyURL     string
}

type CreateOutput struct {
	OrderID     string
	SessionID   *string
	CheckoutURL *string
}

// CallbackEvent is a verified gateway notification. Status is already
// translated to the payment vocabulary; ProviderStatus keeps the raw value.
type CallbackEvent struct {
	EventType      string
	OrderID        string
	PaymentID      *string
	PaymentMethod  *string
	Signature      *string
	PaidAt         *time.Time
	ProviderStatus string
	Status         string
}

type StatusResult struct {
	ProviderStatus string
	Status         string
	PaymentID      *string
}

type Provider interface {
	Code() string
	CreateOrder(ctx context.Context, input *CreateInput) (*CreateOutput, error)
	VerifyAndParseCallback(ctx context.Context, payload []byte, signature string) (*CallbackEvent, error)
	GetOrderStatus(ctx context.Context, orderID string) (*StatusResult, error)
}

func toPaise(amount decimal.Decimal) int64 {
	return amount.Mul(decimal.NewFromInt(100)).Round(0).IntPart()
}

func stringPtr(v string) *string {
	if v == "" {
		return nil
	}
	return &v
}
