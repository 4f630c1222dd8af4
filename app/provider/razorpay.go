package provider

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	razorpay "github.com/razorpay/razorpay-go"
	"github.com/vibast-solutions/ms-go-receipts/app/entity"
)

type RazorpayConfig struct {
	KeyID     string
	KeySecret string
	Retry     RetryPolicy
}

// razorpayOrders is the subset of the razorpay-go order resource in use.
type razorpayOrders interface {
	Create(data map[string]interface{}, extraHeaders map[string]string) (map[string]interface{}, error)
	Fetch(orderID string, queryParams map[string]interface{}, extraHeaders map[string]string) (map[string]interface{}, error)
}

type RazorpayProvider struct {
	cfg    RazorpayConfig
	orders razorpayOrders
}

func NewRazorpayProvider(cfg RazorpayConfig) *RazorpayProvider {
	p := &RazorpayProvider{cfg: cfg}
	if strings.TrimSpace(cfg.KeyID) != "" && strings.TrimSpace(cfg.KeySecret) != "" {
		client := razorpay.NewClient(cfg.KeyID, cfg.KeySecret)
		p.orders = client.Order
	}
	return p
}

func (p *RazorpayProvider) Code() string {
	return entity.GatewayRazorpay
}

func (p *RazorpayProvider) CreateOrder(ctx context.Context, input *CreateInput) (*CreateOutput, error) {
	if p.orders == nil {
		return nil, ErrNotConfigured
	}

	data := map[string]interface{}{
		"amount":   toPaise(input.Amount),
		"currency": input.Currency,
		"receipt":  input.ReceiptNumber,
		"notes": map[string]interface{}{
			"receipt_number": input.ReceiptNumber,
			"payment_mode":   input.PaymentMode,
			"customer_email": input.Customer.Email,
		},
	}

	var order map[string]interface{}
	err := p.cfg.Retry.Do(ctx, "razorpay_create_order", func(context.Context) error {
		var callErr error
		order, callErr = p.orders.Create(data, nil)
		return callErr
	})
	if err != nil {
		return nil, fmt.Errorf("%w: razorpay create order: %v", ErrGatewayRequest, err)
	}

	orderID := mapString(order, "id")
	if orderID == "" {
		return nil, fmt.Errorf("%w: razorpay order has no id", ErrGatewayRequest)
	}

	return &CreateOutput{OrderID: orderID}, nil
}

// VerifyAndParseCallback handles the checkout handler payload posted by the
// client after Razorpay's modal completes.
func (p *RazorpayProvider) VerifyAndParseCallback(_ context.Context, payload []byte, signature string) (*CallbackEvent, error) {
	if strings.TrimSpace(p.cfg.KeySecret) == "" {
		return nil, ErrNotConfigured
	}

	var body struct {
		OrderID   string `json:"razorpay_order_id"`
		PaymentID string `json:"razorpay_payment_id"`
		Signature string `json:"razorpay_signature"`
		Method    string `json:"method"`
	}
	if err := json.Unmarshal(payload, &body); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedCallback, err)
	}

	orderID := strings.TrimSpace(body.OrderID)
	paymentID := strings.TrimSpace(body.PaymentID)
	if orderID == "" || paymentID == "" {
		return nil, fmt.Errorf("%w: order id and payment id are required", ErrMalformedCallback)
	}

	sig := strings.TrimSpace(body.Signature)
	if sig == "" {
		sig = strings.TrimSpace(signature)
	}
	if !verifyRazorpaySignature(orderID, paymentID, sig, p.cfg.KeySecret) {
		return nil, ErrInvalidSignature
	}

	paidAt := time.Now().UTC()
	return &CallbackEvent{
		EventType:      "razorpay_checkout",
		OrderID:        orderID,
		PaymentID:      stringPtr(paymentID),
		PaymentMethod:  stringPtr(strings.TrimSpace(body.Method)),
		Signature:      stringPtr(sig),
		PaidAt:         &paidAt,
		ProviderStatus: "paid",
		Status:         entity.PaymentStatusCompleted,
	}, nil
}

func (p *RazorpayProvider) GetOrderStatus(ctx context.Context, orderID string) (*StatusResult, error) {
	if p.orders == nil {
		return nil, ErrNotConfigured
	}

	var order map[string]interface{}
	err := p.cfg.Retry.Do(ctx, "razorpay_fetch_order", func(context.Context) error {
		var callErr error
		order, callErr = p.orders.Fetch(orderID, nil, nil)
		return callErr
	})
	if err != nil {
		return nil, fmt.Errorf("%w: razorpay fetch order: %v", ErrGatewayRequest, err)
	}

	raw := mapString(order, "status")
	return &StatusResult{
		ProviderStatus: raw,
		Status:         razorpayStatus(raw),
	}, nil
}

func razorpayStatus(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "paid":
		return entity.PaymentStatusCompleted
	default:
		return entity.PaymentStatusPending
	}
}

func verifyRazorpaySignature(orderID, paymentID, signature, secret string) bool {
	expected, err := hex.DecodeString(signature)
	if err != nil || len(expected) == 0 {
		return false
	}
	mac := hmac.New(sha256.New, []byte(secret))
	_, _ = mac.Write([]byte(orderID + "|" + paymentID))
	return hmac.Equal(mac.Sum(nil), expected)
}

func mapString(m map[string]interface{}, key string) string {
	v, ok := m[key]
	if !ok || v == nil {
		return ""
	}
	switch typed := v.(type) {
	case string:
		return strings.TrimSpace(typed)
	default:
		return strings.TrimSpace(fmt.Sprint(typed))
	}
}
