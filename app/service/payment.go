package service

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/vibast-solutions/ms-go-receipts/app/access"
	"github.com/vibast-solutions/ms-go-receipts/app/entity"
	"github.com/vibast-solutions/ms-go-receipts/app/events"
	"github.com/vibast-solutions/ms-go-receipts/app/provider"
	"github.com/vibast-solutions/ms-go-receipts/app/repository"
	"github.com/vibast-solutions/ms-go-receipts/config"
)

const (
	defaultBatchSize         = int32(100)
	receiptNumberMaxAttempts = 3
	defaultCurrency          = "INR"
)

type linkSigner interface {
	Sign(scope string, id uint64) (string, error)
}

type createPaymentRequest interface {
	GetName() string
	GetEmail() string
	GetPhone() string
	GetAddress() string
	GetAmount() decimal.Decimal
	GetPaymentMode() string
	GetGateway() string
	GetServiceType() string
	GetReturnUrl() string
}

type listPaymentsRequest interface {
	GetUserId() uint64
	GetStatus() string
	GetGateway() string
	GetPage() int32
	GetLimit() int32
}

type paymentRepository interface {
	Create(ctx context.Context, payment *entity.Payment) error
	UpdateStatus(ctx context.Context, payment *entity.Payment, expectedStatus string) error
	UpdateReceiptDelivery(ctx context.Context, payment *entity.Payment) error
	FindByID(ctx context.Context, id uint64) (*entity.Payment, error)
	FindByReceiptNumber(ctx context.Context, receiptNumber string) (*entity.Payment, error)
	FindByGatewayOrderID(ctx context.Context, gateway, orderID string) (*entity.Payment, error)
	FindByAnyGatewayOrderID(ctx context.Context, orderID string) (*entity.Payment, error)
	FindByGatewayPaymentID(ctx context.Context, gatewayPaymentID string) (*entity.Payment, error)
	List(ctx context.Context, filter repository.PaymentFilter) ([]*entity.Payment, int64, error)
	ListDueReceiptDelivery(ctx context.Context, now time.Time, limit int32) ([]*entity.Payment, error)
	ClaimReceiptDelivery(ctx context.Context, id uint64, now, leaseUntil time.Time) (bool, error)
	ListExpiredPending(ctx context.Context, cutoff time.Time, limit int32) ([]*entity.Payment, error)
	ListForReconcile(ctx context.Context, before time.Time, limit int32) ([]*entity.Payment, error)
	Stats(ctx context.Context) (*repository.PaymentStats, error)
}

type paymentEventRepository interface {
	Create(ctx context.Context, event *entity.PaymentEvent) error
}

type paymentCallbackRepository interface {
	Create(ctx context.Context, callback *entity.PaymentCallback) error
}

type receiptLookup interface {
	FindByPaymentID(ctx context.Context, paymentID uint64) (*entity.Receipt, error)
}

// receiptDispatcher is notified once a payment enters completed.
type receiptDispatcher interface {
	TriggerReceiptDelivery(paymentID uint64)
}

type PaymentDetails struct {
	Payment *entity.Payment
	User    *entity.User
	Receipt *entity.Receipt
}

type PaymentService struct {
	paymentRepo  paymentRepository
	receiptRepo  receiptLookup
	eventRepo    paymentEventRepository
	callbackRepo paymentCallbackRepository
	users        *UserService
	providerReg  *provider.Registry
	publisher    events.Publisher
	dispatcher   receiptDispatcher
	paymentsCfg  config.PaymentsConfig
	publicURL    string
	links        linkSigner

	now              func() time.Time
	newReceiptNumber func(time.Time) string
}

func NewPaymentService(
	paymentRepo paymentRepository,
	receiptRepo receiptLookup,
	eventRepo paymentEventRepository,
	callbackRepo paymentCallbackRepository,
	users *UserService,
	providerReg *provider.Registry,
	publisher events.Publisher,
	dispatcher receiptDispatcher,
	paymentsCfg config.PaymentsConfig,
	publicURL string,
	links linkSigner,
) *PaymentService {
	if publisher == nil {
		publisher = events.NoopPublisher{}
	}

	return &PaymentService{
		paymentRepo:      paymentRepo,
		receiptRepo:      receiptRepo,
		eventRepo:        eventRepo,
		callbackRepo:     callbackRepo,
		users:            users,
		providerReg:      providerReg,
		publisher:        publisher,
		dispatcher:       dispatcher,
		paymentsCfg:      paymentsCfg,
		publicURL:        strings.TrimRight(strings.TrimSpace(publicURL), "/"),
		links:            links,
		now:              func() time.Time { return time.Now().UTC() },
		newReceiptNumber: generateReceiptNumber,
	}
}

type newPayment struct {
	customer    CustomerDetails
	amount      decimal.Decimal
	mode        string
	gateway     string
	serviceType string
	returnURL   string
	utr         string
}

// CreatePayment stores a pending payment and opens the gateway order. A
// gateway failure leaves the row failed and returns ErrGateway.
func (s *PaymentService) CreatePayment(ctx context.Context, req createPaymentRequest) (*entity.Payment, error) {
	return s.create(ctx, newPayment{
		customer: CustomerDetails{
			Name:    req.GetName(),
			Email:   req.GetEmail(),
			Phone:   req.GetPhone(),
			Address: req.GetAddress(),
		},
		amount:      req.GetAmount(),
		mode:        strings.ToLower(strings.TrimSpace(req.GetPaymentMode())),
		gateway:     strings.ToLower(strings.TrimSpace(req.GetGateway())),
		serviceType: strings.TrimSpace(req.GetServiceType()),
		returnURL:   strings.TrimSpace(req.GetReturnUrl()),
	})
}

func (s *PaymentService) create(ctx context.Context, input newPayment) (*entity.Payment, error) {
	if !input.amount.IsPositive() {
		return nil, fmt.Errorf("%w: amount must be positive", ErrInvalidRequest)
	}
	if input.mode == "" {
		input.mode = entity.PaymentModeUPI
	}
	if !isValidPaymentMode(input.mode) {
		return nil, fmt.Errorf("%w: unsupported payment mode", ErrInvalidRequest)
	}

	gateway := resolveGateway(input.mode, input.gateway)
	providerClient, err := s.providerReg.Get(gateway)
	if err != nil {
		if errors.Is(err, provider.ErrProviderNotSupported) {
			return nil, ErrProviderUnsupported
		}
		return nil, err
	}

	user, err := s.users.FindOrCreate(ctx, input.customer)
	if err != nil {
		return nil, err
	}

	now := s.now()
	payment := &entity.Payment{
		UserID:                user.ID,
		Amount:                input.amount.Round(2),
		Currency:              defaultCurrency,
		PaymentMode:           input.mode,
		Status:                entity.PaymentStatusPending,
		ServiceType:           normalizeOptionalString(input.serviceType),
		Gateway:               gateway,
		UTR:                   normalizeOptionalString(input.utr),
		ReceiptDeliveryStatus: entity.ReceiptDeliveryNone,
		CreatedAt:             now,
		UpdatedAt:             now,
	}

	if err := s.insertWithReceiptNumber(ctx, payment); err != nil {
		return nil, err
	}

	_ = s.eventRepo.Create(ctx, &entity.PaymentEvent{
		PaymentID: &payment.ID,
		EventType: "payment_created",
		NewStatus: payment.Status,
		CreatedAt: now,
	})
	s.publish(ctx, events.TypePaymentCreated, payment, "")

	returnURL, err := s.returnURL(payment, input.returnURL)
	if err != nil {
		return nil, err
	}

	output, gatewayErr := providerClient.CreateOrder(ctx, &provider.CreateInput{
		PaymentID:     payment.ID,
		ReceiptNumber: payment.ReceiptNumber,
		Amount:        payment.Amount,
		Currency:      payment.Currency,
		PaymentMode:   payment.PaymentMode,
		Customer: provider.Customer{
			UserID:  user.ID,
			Name:    user.Name,
			Email:   user.Email,
			Phone:   user.Phone,
			Address: user.Address,
		},
		ReturnURL: returnURL,
		NotifyURL: s.publicURL + "/webhooks/" + gateway,
	})
	if gatewayErr != nil {
		reason := truncate(gatewayErr.Error(), 1024)
		if _, _, err := s.applyTransition(ctx, payment, transition{
			to:        entity.PaymentStatusFailed,
			eventType: "gateway_order_failed",
			payload:   reason,
			apply: func(p *entity.Payment) {
				p.FailureReason = &reason
			},
		}); err != nil {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", ErrGateway, gatewayErr)
	}

	updated := *payment
	updated.GatewayOrderID = normalizeOptionalString(output.OrderID)
	updated.GatewaySessionID = output.SessionID
	updated.CheckoutURL = output.CheckoutURL
	updated.UpdatedAt = s.now()
	if err := s.paymentRepo.UpdateStatus(ctx, &updated, entity.PaymentStatusPending); err != nil {
		if errors.Is(err, repository.ErrPaymentStatusConflict) {
			return s.GetPayment(ctx, payment.ID)
		}
		return nil, err
	}

	return &updated, nil
}

func (s *PaymentService) insertWithReceiptNumber(ctx context.Context, payment *entity.Payment) error {
	var err error
	for attempt := 0; attempt < receiptNumberMaxAttempts; attempt++ {
		payment.ReceiptNumber = s.newReceiptNumber(payment.CreatedAt)
		err = s.paymentRepo.Create(ctx, payment)
		if err == nil {
			return nil
		}
		if !errors.Is(err, repository.ErrDuplicateReceiptNumber) {
			return err
		}
	}
	return fmt.Errorf("%w: receipt number collision", err)
}

// returnURL carries a payment link token so the page the gateway redirects
// to can read the payment back.
func (s *PaymentService) returnURL(payment *entity.Payment, requested string) (string, error) {
	base := requested
	if base == "" {
		base = s.publicURL + "/payments/" + strconv.FormatUint(payment.ID, 10) + "/status"
	}
	parsed, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("%w: invalid return url", ErrInvalidRequest)
	}

	token, err := s.links.Sign(access.ScopePayment, payment.ID)
	if err != nil {
		return "", err
	}
	query := parsed.Query()
	query.Set("token", token)
	parsed.RawQuery = query.Encode()
	return parsed.String(), nil
}

func (s *PaymentService) GetPayment(ctx context.Context, id uint64) (*entity.Payment, error) {
	payment, err := s.paymentRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if payment == nil {
		return nil, ErrPaymentNotFound
	}
	return payment, nil
}

func (s *PaymentService) ListPayments(ctx context.Context, req listPaymentsRequest) ([]*entity.Payment, int64, error) {
	status := strings.ToLower(strings.TrimSpace(req.GetStatus()))
	if status != "" && !entity.IsValidStatus(status) {
		return nil, 0, fmt.Errorf("%w: unknown status", ErrInvalidRequest)
	}

	return s.paymentRepo.List(ctx, repository.PaymentFilter{
		UserID:  req.GetUserId(),
		Status:  status,
		Gateway: strings.ToLower(strings.TrimSpace(req.GetGateway())),
		Page:    normalizePage(req.GetPage()),
		Limit:   normalizeLimit(req.GetLimit()),
	})
}

// GetPaymentDetails resolves a payment by gateway order id or receipt number,
// or by internal id or gateway payment id, and joins its user and receipt.
func (s *PaymentService) GetPaymentDetails(ctx context.Context, orderID, paymentID string) (*PaymentDetails, error) {
	orderID = strings.TrimSpace(orderID)
	paymentID = strings.TrimSpace(paymentID)

	var (
		payment *entity.Payment
		err     error
	)
	switch {
	case orderID != "":
		payment, err = s.paymentRepo.FindByAnyGatewayOrderID(ctx, orderID)
		if err == nil && payment == nil && IsReceiptNumber(orderID) {
			payment, err = s.paymentRepo.FindByReceiptNumber(ctx, orderID)
		}
	case paymentID != "":
		if id, parseErr := strconv.ParseUint(paymentID, 10, 64); parseErr == nil {
			payment, err = s.paymentRepo.FindByID(ctx, id)
		}
		if err == nil && payment == nil {
			payment, err = s.paymentRepo.FindByGatewayPaymentID(ctx, paymentID)
		}
	default:
		return nil, fmt.Errorf("%w: order_id or payment_id is required", ErrInvalidRequest)
	}
	if err != nil {
		return nil, err
	}
	if payment == nil {
		return nil, ErrPaymentNotFound
	}

	user, err := s.users.GetUser(ctx, payment.UserID)
	if err != nil && !errors.Is(err, ErrUserNotFound) {
		return nil, err
	}
	receipt, err := s.receiptRepo.FindByPaymentID(ctx, payment.ID)
	if err != nil {
		return nil, err
	}

	return &PaymentDetails{Payment: payment, User: user, Receipt: receipt}, nil
}

func (s *PaymentService) publish(ctx context.Context, eventType string, payment *entity.Payment, oldStatus string) {
	publishPaymentEvent(ctx, s.publisher, eventType, payment, oldStatus, s.now())
}

func (s *PaymentService) batchSize() int32 {
	if s.paymentsCfg.JobBatchSize > 0 {
		return s.paymentsCfg.JobBatchSize
	}
	return defaultBatchSize
}

func resolveGateway(mode, gateway string) string {
	switch mode {
	case entity.PaymentModeQR, entity.PaymentModeManual:
		return entity.GatewayManual
	}
	if gateway != "" {
		return gateway
	}
	switch mode {
	case entity.PaymentModePhonePe:
		return entity.GatewayPhonePe
	case entity.PaymentModeRazorpay:
		return entity.GatewayRazorpay
	default:
		return entity.GatewayCashfree
	}
}

func isValidPaymentMode(mode string) bool {
	switch mode {
	case entity.PaymentModeCard,
		entity.PaymentModeUPI,
		entity.PaymentModeNetBanking,
		entity.PaymentModeWallet,
		entity.PaymentModePhonePe,
		entity.PaymentModeCashfree,
		entity.PaymentModeRazorpay,
		entity.PaymentModeQR,
		entity.PaymentModeManual:
		return true
	default:
		return false
	}
}

func normalizeOptionalString(v string) *string {
	trimmed := strings.TrimSpace(v)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

func derefString(v *string) string {
	if v == nil {
		return ""
	}
	return *v
}

func truncate(value string, max int) string {
	if len(value) <= max {
		return value
	}
	return value[:max]
}

func keepFirstErr(current error, candidate error) error {
	if current != nil {
		return current
	}
	return candidate
}
