package provider

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/vibast-solutions/ms-go-receipts/app/entity"
)

func fastRetry() RetryPolicy {
	return RetryPolicy{MaxAttempts: 3, InitialDelay: time.Millisecond, Multiplier: 1.5}
}

func hexHMAC(payload, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	_, _ = mac.Write([]byte(payload))
	return hex.EncodeToString(mac.Sum(nil))
}

func sampleInput() *CreateInput {
	return &CreateInput{
		PaymentID:     11,
		ReceiptNumber: "AKRX-20250101-1234",
		Amount:        decimal.NewFromInt(500),
		Currency:      "INR",
		PaymentMode:   entity.PaymentModeUPI,
		Customer:      Customer{UserID: 3, Name: "Asha", Email: "asha@example.com", Phone: "9876543210"},
		ReturnURL:     "https://akrix.example/payment/status",
		NotifyURL:     "https://akrix.example/webhooks/cashfree",
	}
}

func TestToPaise(t *testing.T) {
	if got := toPaise(decimal.RequireFromString("499.99")); got != 49999 {
		t.Fatalf("expected 49999, got %d", got)
	}
	if got := toPaise(decimal.NewFromInt(500)); got != 50000 {
		t.Fatalf("expected 50000, got %d", got)
	}
}

func TestRegistryGetNormalizesCode(t *testing.T) {
	registry := NewRegistry(NewManualProvider())
	p, err := registry.Get(" Manual ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Code() != entity.GatewayManual {
		t.Fatalf("unexpected provider %s", p.Code())
	}
	if _, err := registry.Get("stripe"); !errors.Is(err, ErrProviderNotSupported) {
		t.Fatalf("expected ErrProviderNotSupported, got %v", err)
	}
}

func TestRetryPolicyRetriesTransientErrors(t *testing.T) {
	calls := 0
	err := fastRetry().Do(context.Background(), "test", func(context.Context) error {
		calls++
		if calls < 3 {
			return &statusError{Operation: "test", StatusCode: http.StatusBadGateway}
		}
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if calls != 3 {
		t.Fatalf("expected 3 calls, got %d", calls)
	}
}

func TestRetryPolicyDoesNotRetryClientErrors(t *testing.T) {
	calls := 0
	err := fastRetry().Do(context.Background(), "test", func(context.Context) error {
		calls++
		return &statusError{Operation: "test", StatusCode: http.StatusBadRequest}
	})
	if !errors.Is(err, ErrGatewayRequest) {
		t.Fatalf("expected ErrGatewayRequest, got %v", err)
	}
	if calls != 1 {
		t.Fatalf("expected a single call, got %d", calls)
	}
}

func TestRetryPolicyStopsOnContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	policy := RetryPolicy{MaxAttempts: 5, InitialDelay: time.Hour, Multiplier: 1}
	calls := 0
	err := policy.Do(ctx, "test", func(context.Context) error {
		calls++
		cancel()
		return io.ErrUnexpectedEOF
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if calls != 1 {
		t.Fatalf("expected a single call, got %d", calls)
	}
}

func TestIsTransient(t *testing.T) {
	cases := []struct {
		err  error
		want bool
	}{
		{nil, false},
		{io.EOF, true},
		{context.DeadlineExceeded, true},
		{context.Canceled, false},
		{&statusError{StatusCode: 503}, true},
		{&statusError{StatusCode: 402}, false},
		{errors.New("card declined"), false},
	}
	for _, tc := range cases {
		if got := IsTransient(tc.err); got != tc.want {
			t.Fatalf("IsTransient(%v) = %v, want %v", tc.err, got, tc.want)
		}
	}
}

func TestCashfreeCreateOrder(t *testing.T) {
	var attempts int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&attempts, 1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		if r.URL.Path != "/orders" || r.Method != http.MethodPost {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if r.Header.Get("x-client-id") != "cf_id" || r.Header.Get("x-api-version") != "2022-09-01" {
			t.Errorf("missing cashfree headers")
		}
		var body map[string]interface{}
		_ = json.NewDecoder(r.Body).Decode(&body)
		if body["order_id"] != "order_AKRX-20250101-1234" {
			t.Errorf("unexpected order id %v", body["order_id"])
		}
		if body["order_amount"] != float64(500) {
			t.Errorf("unexpected amount %v", body["order_amount"])
		}
		_, _ = w.Write([]byte(`{"order_id":"order_AKRX-20250101-1234","cf_order_id":12345,"payment_session_id":"session_abc","order_status":"ACTIVE"}`))
	}))
	defer server.Close()

	p := NewCashfreeProvider(CashfreeConfig{ClientID: "cf_id", ClientSecret: "cf_secret", BaseURL: server.URL, Retry: fastRetry()})
	out, err := p.CreateOrder(context.Background(), sampleInput())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.OrderID != "order_AKRX-20250101-1234" {
		t.Fatalf("unexpected order id %s", out.OrderID)
	}
	if out.SessionID == nil || *out.SessionID != "session_abc" {
		t.Fatalf("expected session id")
	}
	if atomic.LoadInt32(&attempts) != 2 {
		t.Fatalf("expected 2 attempts, got %d", attempts)
	}
}

func TestCashfreeCreateOrderDoesNotRetryClientError(t *testing.T) {
	var attempts int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&attempts, 1)
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"message":"order_amount invalid"}`))
	}))
	defer server.Close()

	p := NewCashfreeProvider(CashfreeConfig{ClientID: "cf_id", ClientSecret: "cf_secret", BaseURL: server.URL, Retry: fastRetry()})
	_, err := p.CreateOrder(context.Background(), sampleInput())
	if !errors.Is(err, ErrGatewayRequest) {
		t.Fatalf("expected ErrGatewayRequest, got %v", err)
	}
	if atomic.LoadInt32(&attempts) != 1 {
		t.Fatalf("expected 1 attempt, got %d", attempts)
	}
}

func TestCashfreeCreateOrderNotConfigured(t *testing.T) {
	p := NewCashfreeProvider(CashfreeConfig{BaseURL: "https://sandbox.cashfree.com/pg"})
	if _, err := p.CreateOrder(context.Background(), sampleInput()); !errors.Is(err, ErrNotConfigured) {
		t.Fatalf("expected ErrNotConfigured, got %v", err)
	}
}

func TestCashfreeCallback(t *testing.T) {
	p := NewCashfreeProvider(CashfreeConfig{ClientID: "cf_id", ClientSecret: "cf_secret", BaseURL: "http://unused"})
	payload := `{"type":"PAYMENT_SUCCESS_WEBHOOK","data":{"order":{"order_id":"order_AKRX-20250101-1234"},"payment":{"cf_payment_id":885,"payment_status":"SUCCESS","payment_method":{"upi":{"upi_id":"a@b"}},"payment_time":"2025-01-01T10:00:00+05:30"}}}`

	event, err := p.VerifyAndParseCallback(context.Background(), []byte(payload), hexHMAC(payload, "cf_secret"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if event.OrderID != "order_AKRX-20250101-1234" || event.Status != entity.PaymentStatusCompleted {
		t.Fatalf("unexpected event %+v", event)
	}
	if event.PaymentID == nil || *event.PaymentID != "885" {
		t.Fatalf("expected numeric cf_payment_id to be kept")
	}
	if event.PaymentMethod == nil || *event.PaymentMethod != "upi" {
		t.Fatalf("expected upi payment method")
	}
	if event.PaidAt == nil || event.PaidAt.Hour() != 4 {
		t.Fatalf("expected paid at in UTC, got %v", event.PaidAt)
	}

	if _, err := p.VerifyAndParseCallback(context.Background(), []byte(payload), hexHMAC(payload, "other")); !errors.Is(err, ErrInvalidSignature) {
		t.Fatalf("expected ErrInvalidSignature, got %v", err)
	}
}

func TestCashfreeStatusMapping(t *testing.T) {
	cases := map[string]string{
		"SUCCESS":      entity.PaymentStatusCompleted,
		"PAID":         entity.PaymentStatusCompleted,
		"FAILED":       entity.PaymentStatusFailed,
		"USER_DROPPED": entity.PaymentStatusCancelled,
		"EXPIRED":      entity.PaymentStatusCancelled,
		"ACTIVE":       entity.PaymentStatusPending,
	}
	for raw, want := range cases {
		if got := cashfreeStatus(raw); got != want {
			t.Fatalf("cashfreeStatus(%s) = %s, want %s", raw, got, want)
		}
	}
}

func TestCashfreeGetOrderStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/orders/order_1" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		_, _ = w.Write([]byte(`{"order_status":"PAID"}`))
	}))
	defer server.Close()

	p := NewCashfreeProvider(CashfreeConfig{ClientID: "cf_id", ClientSecret: "cf_secret", BaseURL: server.URL, Retry: fastRetry()})
	result, err := p.GetOrderStatus(context.Background(), "order_1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Status != entity.PaymentStatusCompleted {
		t.Fatalf("expected completed, got %s", result.Status)
	}
}

func TestPhonePeCreateOrderSignsPayload(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Request string `json:"request"`
		}
		_ = json.NewDecoder(r.Body).Decode(&body)
		sum := sha256.Sum256([]byte(body.Request + "/pg/v1/pay" + "salt"))
		want := hex.EncodeToString(sum[:]) + "###2"
		if r.Header.Get("X-VERIFY") != want {
			t.Errorf("unexpected X-VERIFY %s", r.Header.Get("X-VERIFY"))
		}
		decoded, _ := base64.StdEncoding.DecodeString(body.Request)
		if !strings.Contains(string(decoded), `"amount":50000`) {
			t.Errorf("expected amount in paise, got %s", decoded)
		}
		_, _ = w.Write([]byte(`{"success":true,"code":"PAYMENT_INITIATED","data":{"instrumentResponse":{"redirectInfo":{"url":"https://mercury.phonepe.com/pay/1"}}}}`))
	}))
	defer server.Close()

	p := NewPhonePeProvider(PhonePeConfig{MerchantID: "M1", SaltKey: "salt", SaltIndex: "2", BaseURL: server.URL, Retry: fastRetry()})
	out, err := p.CreateOrder(context.Background(), sampleInput())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.OrderID != "AKRX-20250101-1234" {
		t.Fatalf("expected receipt number as transaction id, got %s", out.OrderID)
	}
	if out.CheckoutURL == nil || *out.CheckoutURL != "https://mercury.phonepe.com/pay/1" {
		t.Fatalf("expected redirect url")
	}
}

func TestPhonePeCallback(t *testing.T) {
	p := NewPhonePeProvider(PhonePeConfig{MerchantID: "M1", SaltKey: "salt", SaltIndex: "1", BaseURL: "http://unused"})

	inner := `{"success":true,"code":"PAYMENT_SUCCESS","data":{"merchantTransactionId":"AKRX-20250101-1234","transactionId":"T2501","paymentInstrument":{"type":"UPI"}}}`
	encoded := base64.StdEncoding.EncodeToString([]byte(inner))
	payload := []byte(`{"response":"` + encoded + `"}`)
	sum := sha256.Sum256([]byte(encoded + "salt"))
	signature := hex.EncodeToString(sum[:]) + "###1"

	event, err := p.VerifyAndParseCallback(context.Background(), payload, signature)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if event.OrderID != "AKRX-20250101-1234" || event.Status != entity.PaymentStatusCompleted {
		t.Fatalf("unexpected event %+v", event)
	}
	if event.PaymentID == nil || *event.PaymentID != "T2501" {
		t.Fatalf("expected transaction id as gateway payment id")
	}

	if _, err := p.VerifyAndParseCallback(context.Background(), payload, "bad###1"); !errors.Is(err, ErrInvalidSignature) {
		t.Fatalf("expected ErrInvalidSignature, got %v", err)
	}
}

func TestPhonePeStatusMapping(t *testing.T) {
	if phonePeStatus("PAYMENT_SUCCESS") != entity.PaymentStatusCompleted {
		t.Fatal("expected completed")
	}
	if phonePeStatus("PAYMENT_PENDING") != entity.PaymentStatusPending {
		t.Fatal("expected pending")
	}
	for _, code := range []string{"PAYMENT_ERROR", "PAYMENT_DECLINED", "TIMED_OUT", "authorization_failed"} {
		if got := phonePeStatus(code); got != entity.PaymentStatusFailed {
			t.Fatalf("phonePeStatus(%q) = %q, want failed", code, got)
		}
	}
	for _, code := range []string{"", "INTERNAL_SERVER_ERROR", "TRANSACTION_NOT_FOUND", "SOMETHING_NEW"} {
		if got := phonePeStatus(code); got != entity.PaymentStatusPending {
			t.Fatalf("phonePeStatus(%q) = %q, want pending", code, got)
		}
	}
}

func TestPhonePeStatusLookupErrorKeepsPending(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/pg/v1/status/M1/AKRX-20250101-1234" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		_, _ = w.Write([]byte(`{"success":false,"code":"INTERNAL_SERVER_ERROR","message":"There is an error trying to process your transaction at the moment."}`))
	}))
	defer server.Close()

	p := NewPhonePeProvider(PhonePeConfig{MerchantID: "M1", SaltKey: "salt", SaltIndex: "1", BaseURL: server.URL, Retry: fastRetry()})
	result, err := p.GetOrderStatus(context.Background(), "AKRX-20250101-1234")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Status != entity.PaymentStatusPending {
		t.Fatalf("expected pending, got %s", result.Status)
	}
	if result.ProviderStatus != "INTERNAL_SERVER_ERROR" {
		t.Fatalf("expected provider status to be kept, got %s", result.ProviderStatus)
	}
}

type fakeRazorpayOrders struct {
	created map[string]interface{}
	order   map[string]interface{}
	err     error
}

func (f *fakeRazorpayOrders) Create(data map[string]interface{}, _ map[string]string) (map[string]interface{}, error) {
	f.created = data
	if f.err != nil {
		return nil, f.err
	}
	return f.order, nil
}

func (f *fakeRazorpayOrders) Fetch(string, map[string]interface{}, map[string]string) (map[string]interface{}, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.order, nil
}

func TestRazorpayCreateOrder(t *testing.T) {
	orders := &fakeRazorpayOrders{order: map[string]interface{}{"id": "order_Rz1", "status": "created"}}
	p := &RazorpayProvider{cfg: RazorpayConfig{KeyID: "rzp", KeySecret: "secret", Retry: fastRetry()}, orders: orders}

	out, err := p.CreateOrder(context.Background(), sampleInput())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.OrderID != "order_Rz1" {
		t.Fatalf("unexpected order id %s", out.OrderID)
	}
	if orders.created["amount"] != int64(50000) || orders.created["receipt"] != "AKRX-20250101-1234" {
		t.Fatalf("unexpected order payload %+v", orders.created)
	}
}

func TestRazorpayCreateOrderWrapsError(t *testing.T) {
	orders := &fakeRazorpayOrders{err: errors.New("BAD_REQUEST_ERROR")}
	p := &RazorpayProvider{cfg: RazorpayConfig{Retry: fastRetry()}, orders: orders}

	if _, err := p.CreateOrder(context.Background(), sampleInput()); !errors.Is(err, ErrGatewayRequest) {
		t.Fatalf("expected ErrGatewayRequest, got %v", err)
	}
}

func TestRazorpayNotConfigured(t *testing.T) {
	p := NewRazorpayProvider(RazorpayConfig{})
	if _, err := p.CreateOrder(context.Background(), sampleInput()); !errors.Is(err, ErrNotConfigured) {
		t.Fatalf("expected ErrNotConfigured, got %v", err)
	}
}

func TestRazorpayCallbackSignature(t *testing.T) {
	p := &RazorpayProvider{cfg: RazorpayConfig{KeySecret: "secret"}}
	sig := hexHMAC("order_Rz1|pay_Rz9", "secret")
	payload := []byte(`{"razorpay_order_id":"order_Rz1","razorpay_payment_id":"pay_Rz9","razorpay_signature":"` + sig + `"}`)

	event, err := p.VerifyAndParseCallback(context.Background(), payload, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if event.Status != entity.PaymentStatusCompleted || *event.PaymentID != "pay_Rz9" {
		t.Fatalf("unexpected event %+v", event)
	}

	tampered := []byte(`{"razorpay_order_id":"order_Rz1","razorpay_payment_id":"pay_other","razorpay_signature":"` + sig + `"}`)
	if _, err := p.VerifyAndParseCallback(context.Background(), tampered, ""); !errors.Is(err, ErrInvalidSignature) {
		t.Fatalf("expected ErrInvalidSignature, got %v", err)
	}
}

func TestRazorpayGetOrderStatus(t *testing.T) {
	p := &RazorpayProvider{cfg: RazorpayConfig{Retry: fastRetry()}, orders: &fakeRazorpayOrders{order: map[string]interface{}{"status": "paid"}}}
	result, err := p.GetOrderStatus(context.Background(), "order_Rz1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Status != entity.PaymentStatusCompleted {
		t.Fatalf("expected completed, got %s", result.Status)
	}
}

func TestManualProvider(t *testing.T) {
	p := NewManualProvider()
	out, err := p.CreateOrder(context.Background(), sampleInput())
	if err != nil || out.OrderID != "AKRX-20250101-1234" {
		t.Fatalf("unexpected result %+v %v", out, err)
	}
	if _, err := p.VerifyAndParseCallback(context.Background(), nil, ""); !errors.Is(err, ErrCallbackUnsupported) {
		t.Fatalf("expected ErrCallbackUnsupported, got %v", err)
	}
}
