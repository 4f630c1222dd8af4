package provider

import (
	"context"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
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

const (
	phonePePayPath    = "/pg/v1/pay"
	phonePeStatusPath = "/pg/v1/status"
)

type PhonePeConfig struct {
	MerchantID  string
	SaltKey     string
	SaltIndex   string
	BaseURL     string
	HTTPTimeout time.Duration
	Retry       RetryPolicy
}

type PhonePeProvider struct {
	cfg    PhonePeConfig
	client *http.Client
}

func NewPhonePeProvider(cfg PhonePeConfig) *PhonePeProvider {
	timeout := cfg.HTTPTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	if strings.TrimSpace(cfg.SaltIndex) == "" {
		cfg.SaltIndex = "1"
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")

	return &PhonePeProvider{
		cfg:    cfg,
		client: &http.Client{Timeout: timeout},
	}
}

func (p *PhonePeProvider) Code() string {
	return entity.GatewayPhonePe
}

func (p *PhonePeProvider) CreateOrder(ctx context.Context, input *CreateInput) (*CreateOutput, error) {
	if err := p.ensureConfigured(); err != nil {
		return nil, err
	}

	request := map[string]interface{}{
		"merchantId":            p.cfg.MerchantID,
		"merchantTransactionId": input.ReceiptNumber,
		"merchantUserId":        "MUID" + strconv.FormatUint(input.Customer.UserID, 10),
		"amount":                toPaise(input.Amount),
		"redirectUrl":           input.ReturnURL,
		"redirectMode":          "REDIRECT",
		"callbackUrl":           input.NotifyURL,
		"mobileNumber":          input.Customer.Phone,
		"paymentInstrument": map[string]string{
			"type": "PAY_PAGE",
		},
	}
	raw, err := json.Marshal(request)
	if err != nil {
		return nil, err
	}
	encoded := base64.StdEncoding.EncodeToString(raw)

	headers := map[string]string{
		"X-VERIFY": p.checksum(encoded + phonePePayPath),
	}
	var body []byte
	err = p.cfg.Retry.Do(ctx, "phonepe_pay", func(ctx context.Context) error {
		var callErr error
		body, callErr = doJSON(ctx, p.client, "phonepe pay", http.MethodPost, p.cfg.BaseURL+phonePePayPath, headers, map[string]string{"request": encoded})
		return callErr
	})
	if err != nil {
		return nil, err
	}

	var resp struct {
		Success bool   `json:"success"`
		Code    string `json:"code"`
		Message string `json:"message"`
		Data    struct {
			InstrumentResponse struct {
				RedirectInfo struct {
					URL string `json:"url"`
				} `json:"redirectInfo"`
			} `json:"instrumentResponse"`
		} `json:"data"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("%w: phonepe pay response: %v", ErrGatewayRequest, err)
	}
	if !resp.Success {
		return nil, fmt.Errorf("%w: phonepe pay rejected: %s %s", ErrGatewayRequest, resp.Code, resp.Message)
	}

	return &CreateOutput{
		OrderID:     input.ReceiptNumber,
		CheckoutURL: stringPtr(strings.TrimSpace(resp.Data.InstrumentResponse.RedirectInfo.URL)),
	}, nil
}

// VerifyAndParseCallback expects the server-to-server body {"response": base64}
// and the X-VERIFY header computed over the encoded response.
func (p *PhonePeProvider) VerifyAndParseCallback(_ context.Context, payload []byte, signature string) (*CallbackEvent, error) {
	if strings.TrimSpace(p.cfg.SaltKey) == "" {
		return nil, ErrNotConfigured
	}

	var envelope struct {
		Response string `json:"response"`
	}
	if err := json.Unmarshal(payload, &envelope); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedCallback, err)
	}
	if strings.TrimSpace(envelope.Response) == "" {
		return nil, fmt.Errorf("%w: response is empty", ErrMalformedCallback)
	}

	expected := p.checksum(envelope.Response)
	if subtle.ConstantTimeCompare([]byte(expected), []byte(strings.TrimSpace(signature))) != 1 {
		return nil, ErrInvalidSignature
	}

	decoded, err := base64.StdEncoding.DecodeString(envelope.Response)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedCallback, err)
	}

	parsed, err := parsePhonePeResult(decoded)
	if err != nil {
		return nil, err
	}
	if parsed.transactionID == "" {
		return nil, fmt.Errorf("%w: merchantTransactionId missing", ErrMalformedCallback)
	}

	result := &CallbackEvent{
		EventType:      "phonepe_callback",
		OrderID:        parsed.transactionID,
		PaymentID:      stringPtr(parsed.providerReferenceID),
		PaymentMethod:  stringPtr(parsed.instrumentType),
		Signature:      stringPtr(strings.TrimSpace(signature)),
		ProviderStatus: parsed.code,
		Status:         phonePeStatus(parsed.code),
	}
	if result.Status == entity.PaymentStatusCompleted {
		paidAt := time.Now().UTC()
		result.PaidAt = &paidAt
	}
	return result, nil
}

func (p *PhonePeProvider) GetOrderStatus(ctx context.Context, orderID string) (*StatusResult, error) {
	if err := p.ensureConfigured(); err != nil {
		return nil, err
	}

	path := phonePeStatusPath + "/" + url.PathEscape(p.cfg.MerchantID) + "/" + url.PathEscape(orderID)
	headers := map[string]string{
		"X-VERIFY":      p.checksum(path),
		"X-MERCHANT-ID": p.cfg.MerchantID,
	}

	var body []byte
	err := p.cfg.Retry.Do(ctx, "phonepe_status", func(ctx context.Context) error {
		var callErr error
		body, callErr = doJSON(ctx, p.client, "phonepe status", http.MethodGet, p.cfg.BaseURL+path, headers, nil)
		return callErr
	})
	if err != nil {
		return nil, err
	}

	parsed, err := parsePhonePeResult(body)
	if err != nil {
		return nil, fmt.Errorf("%w: phonepe status response: %v", ErrGatewayRequest, err)
	}

	return &StatusResult{
		ProviderStatus: parsed.code,
		Status:         phonePeStatus(parsed.code),
		PaymentID:      stringPtr(parsed.providerReferenceID),
	}, nil
}

func (p *PhonePeProvider) ensureConfigured() error {
	if strings.TrimSpace(p.cfg.MerchantID) == "" || strings.TrimSpace(p.cfg.SaltKey) == "" || p.cfg.BaseURL == "" {
		return ErrNotConfigured
	}
	return nil
}

func (p *PhonePeProvider) checksum(input string) string {
	sum := sha256.Sum256([]byte(input + p.cfg.SaltKey))
	return hex.EncodeToString(sum[:]) + "###" + p.cfg.SaltIndex
}

type phonePeResult struct {
	code                string
	transactionID       string
	providerReferenceID string
	instrumentType      string
}

// parsePhonePeResult reads fields from data.* and falls back to the top level,
// since callbacks and status responses nest them differently.
func parsePhonePeResult(raw []byte) (*phonePeResult, error) {
	type fields struct {
		Code                  string `json:"code"`
		State                 string `json:"state"`
		MerchantTransactionID string `json:"merchantTransactionId"`
		TransactionID         string `json:"transactionId"`
		ProviderReferenceID   string `json:"providerReferenceId"`
		PaymentInstrument     struct {
			Type string `json:"type"`
		} `json:"paymentInstrument"`
	}
	var body struct {
		fields
		Data *fields `json:"data"`
	}
	if err := json.Unmarshal(raw, &body); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedCallback, err)
	}

	pick := func(nested, top string) string {
		if strings.TrimSpace(nested) != "" {
			return strings.TrimSpace(nested)
		}
		return strings.TrimSpace(top)
	}

	data := fields{}
	if body.Data != nil {
		data = *body.Data
	}
	return &phonePeResult{
		code:                pick(body.Code, data.Code),
		transactionID:       pick(data.MerchantTransactionID, body.MerchantTransactionID),
		providerReferenceID: pick(pick(data.ProviderReferenceID, data.TransactionID), pick(body.ProviderReferenceID, body.TransactionID)),
		instrumentType:      pick(data.PaymentInstrument.Type, body.PaymentInstrument.Type),
	}, nil
}

func phonePeStatus(code string) string {
	switch strings.ToUpper(strings.TrimSpace(code)) {
	case "PAYMENT_SUCCESS":
		return entity.PaymentStatusCompleted
	case "PAYMENT_ERROR", "PAYMENT_DECLINED", "TIMED_OUT", "AUTHORIZATION_FAILED":
		return entity.PaymentStatusFailed
	default:
		// Lookup errors such as INTERNAL_SERVER_ERROR or TRANSACTION_NOT_FOUND
		// say nothing about the payment itself.
		return entity.PaymentStatusPending
	}
}
