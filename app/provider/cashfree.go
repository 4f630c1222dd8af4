package provider

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/vibast-solutions/ms-go-receipts/app/entity"
)

type CashfreeConfig struct {
	ClientID     string
	ClientSecret string
	BaseURL      string
	APIVersion   string
	HTTPTimeout  time.Duration
	Retry        RetryPolicy
}

type CashfreeProvider struct {
	cfg    CashfreeConfig
	client *http.Client
}

func NewCashfreeProvider(cfg CashfreeConfig) *CashfreeProvider {
	timeout := cfg.HTTPTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	if strings.TrimSpace(cfg.APIVersion) == "" {
		cfg.APIVersion = "2022-09-01"
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")

	return &CashfreeProvider{
		cfg:    cfg,
		client: &http.Client{Timeout: timeout},
	}
}

func (p *CashfreeProvider) Code() string {
	return entity.GatewayCashfree
}

func (p *CashfreeProvider) CreateOrder(ctx context.Context, input *CreateInput) (*CreateOutput, error) {
	if err := p.ensureConfigured(); err != nil {
		return nil, err
	}

	orderID := "order_" + input.ReceiptNumber
	amount, _ := input.Amount.Round(2).Float64()
	payload := map[string]interface{}{
		"order_id":       orderID,
		"order_amount":   amount,
		"order_currency": input.Currency,
		"customer_details": map[string]string{
			"customer_id":    "user_" + strconv.FormatUint(input.Customer.UserID, 10),
			"customer_name":  input.Customer.Name,
			"customer_email": input.Customer.Email,
			"customer_phone": input.Customer.Phone,
		},
		"order_meta": map[string]string{
			"return_url": appendQuery(input.ReturnURL, "order_id", "{order_id}"),
			"notify_url": input.NotifyURL,
		},
		"order_note": "Payment " + input.ReceiptNumber,
	}

	var body []byte
	err := p.cfg.Retry.Do(ctx, "cashfree_create_order", func(ctx context.Context) error {
		var callErr error
		body, callErr = doJSON(ctx, p.client, "cashfree create order", http.MethodPost, p.cfg.BaseURL+"/orders", p.headers(), payload)
		return callErr
	})
	if err != nil {
		return nil, err
	}

	var resp struct {
		OrderID          string         `json:"order_id"`
		CfOrderID        flexibleString `json:"cf_order_id"`
		PaymentSessionID string         `json:"payment_session_id"`
		PaymentLink      string         `json:"payment_link"`
		OrderStatus      string         `json:"order_status"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("%w: cashfree create order response: %v", ErrGatewayRequest, err)
	}
	if strings.TrimSpace(resp.PaymentSessionID) == "" && strings.TrimSpace(resp.PaymentLink) == "" {
		return nil, fmt.Errorf("%w: cashfree order has no session", ErrGatewayRequest)
	}

	result := &CreateOutput{
		OrderID:     orderID,
		SessionID:   stringPtr(strings.TrimSpace(resp.PaymentSessionID)),
		CheckoutURL: stringPtr(strings.TrimSpace(resp.PaymentLink)),
	}
	if s := strings.TrimSpace(resp.OrderID); s != "" {
		result.OrderID = s
	}
	return result, nil
}

func (p *CashfreeProvider) VerifyAndParseCallback(_ context.Context, payload []byte, signature string) (*CallbackEvent, error) {
	if strings.TrimSpace(p.cfg.ClientSecret) == "" {
		return nil, ErrNotConfigured
	}
	if !verifyHexHMAC(payload, signature, p.cfg.ClientSecret) {
		return nil, ErrInvalidSignature
	}

	var event struct {
		Type string `json:"type"`
		Data struct {
			Order struct {
				OrderID string `json:"order_id"`
			} `json:"order"`
			Payment struct {
				CfPaymentID   flexibleString  `json:"cf_payment_id"`
				PaymentStatus string          `json:"payment_status"`
				PaymentMethod json.RawMessage `json:"payment_method"`
				PaymentTime   string          `json:"payment_time"`
			} `json:"payment"`
		} `json:"data"`
	}
	if err := json.Unmarshal(payload, &event); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedCallback, err)
	}

	orderID := strings.TrimSpace(event.Data.Order.OrderID)
	if orderID == "" {
		return nil, fmt.Errorf("%w: order id missing", ErrMalformedCallback)
	}

	result := &CallbackEvent{
		EventType:      strings.TrimSpace(event.Type),
		OrderID:        orderID,
		PaymentID:      stringPtr(strings.TrimSpace(string(event.Data.Payment.CfPaymentID))),
		PaymentMethod:  stringPtr(cashfreePaymentMethod(event.Data.Payment.PaymentMethod)),
		ProviderStatus: event.Data.Payment.PaymentStatus,
		Status:         cashfreeStatus(event.Data.Payment.PaymentStatus),
	}
	if result.EventType == "" {
		result.EventType = "cashfree_webhook"
	}
	if t, err := time.Parse(time.RFC3339, strings.TrimSpace(event.Data.Payment.PaymentTime)); err == nil {
		paidAt := t.UTC()
		result.PaidAt = &paidAt
	}

	return result, nil
}

func (p *CashfreeProvider) GetOrderStatus(ctx context.Context, orderID string) (*StatusResult, error) {
	if err := p.ensureConfigured(); err != nil {
		return nil, err
	}

	var body []byte
	err := p.cfg.Retry.Do(ctx, "cashfree_get_order", func(ctx context.Context) error {
		var callErr error
		body, callErr = doJSON(ctx, p.client, "cashfree get order", http.MethodGet, p.cfg.BaseURL+"/orders/"+url.PathEscape(orderID), p.headers(), nil)
		return callErr
	})
	if err != nil {
		return nil, err
	}

	var resp struct {
		OrderStatus string `json:"order_status"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("%w: cashfree get order response: %v", ErrGatewayRequest, err)
	}

	return &StatusResult{
		ProviderStatus: resp.OrderStatus,
		Status:         cashfreeStatus(resp.OrderStatus),
	}, nil
}

func (p *CashfreeProvider) ensureConfigured() error {
	if strings.TrimSpace(p.cfg.ClientID) == "" || strings.TrimSpace(p.cfg.ClientSecret) == "" || p.cfg.BaseURL == "" {
		return ErrNotConfigured
	}
	return nil
}

func (p *CashfreeProvider) headers() map[string]string {
	return map[string]string{
		"x-api-version":   p.cfg.APIVersion,
		"x-client-id":     p.cfg.ClientID,
		"x-client-secret": p.cfg.ClientSecret,
	}
}

// cashfreeStatus covers both webhook payment_status and order_status values.
func cashfreeStatus(raw string) string {
	switch strings.ToUpper(strings.TrimSpace(raw)) {
	case "SUCCESS", "PAID":
		return entity.PaymentStatusCompleted
	case "FAILED":
		return entity.PaymentStatusFailed
	case "CANCELLED", "USER_DROPPED", "TERMINATED", "EXPIRED":
		return entity.PaymentStatusCancelled
	default:
		return entity.PaymentStatusPending
	}
}

// cashfreePaymentMethod returns the first key of the payment_method object
// ("upi", "card", ...) or the raw string value.
func cashfreePaymentMethod(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var asString string
	if err := json.Unmarshal(raw, &asString); err == nil {
		return strings.TrimSpace(asString)
	}
	var asObject map[string]json.RawMessage
	if err := json.Unmarshal(raw, &asObject); err == nil {
		for key := range asObject {
			return key
		}
	}
	return ""
}

func verifyHexHMAC(payload []byte, signature, secret string) bool {
	expected, err := hex.DecodeString(strings.TrimSpace(signature))
	if err != nil || len(expected) == 0 {
		return false
	}
	mac := hmac.New(sha256.New, []byte(secret))
	_, _ = mac.Write(payload)
	return hmac.Equal(mac.Sum(nil), expected)
}

func appendQuery(rawURL, key, value string) string {
	if strings.TrimSpace(rawURL) == "" {
		return ""
	}
	sep := "?"
	if strings.Contains(rawURL, "?") {
		sep = "&"
	}
	return rawURL + sep + key + "=" + value
}
