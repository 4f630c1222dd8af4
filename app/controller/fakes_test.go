package controller

import (
	"context"
	"net/http/httptest"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"github.com/vibast-solutions/ms-go-receipts/app/access"
	"github.com/vibast-solutions/ms-go-receipts/app/document"
	"github.com/vibast-solutions/ms-go-receipts/app/entity"
	"github.com/vibast-solutions/ms-go-receipts/app/notifier"
	"github.com/vibast-solutions/ms-go-receipts/app/provider"
	"github.com/vibast-solutions/ms-go-receipts/app/repository"
	"github.com/vibast-solutions/ms-go-receipts/app/service"
	"github.com/vibast-solutions/ms-go-receipts/app/session"
	"github.com/vibast-solutions/ms-go-receipts/config"
)

var testLinks = access.NewSigner("test-link-secret", time.Hour)

type controllerPaymentRepo struct {
	createFn       func(ctx context.Context, payment *entity.Payment) error
	updateStatusFn func(ctx context.Context, payment *entity.Payment, expectedStatus string) error
	findByIDFn     func(ctx context.Context, id uint64) (*entity.Payment, error)
	findByOrderFn  func(ctx context.Context, gateway, orderID string) (*entity.Payment, error)
	listFn         func(ctx context.Context, filter repository.PaymentFilter) ([]*entity.Payment, int64, error)
}

func (r *controllerPaymentRepo) Create(ctx context.Context, payment *entity.Payment) error {
	if r.createFn != nil {
		return r.createFn(ctx, payment)
	}
	return nil
}

func (r *controllerPaymentRepo) UpdateStatus(ctx context.Context, payment *entity.Payment, expectedStatus string) error {
	if r.updateStatusFn != nil {
		return r.updateStatusFn(ctx, payment, expectedStatus)
	}
	return nil
}

func (r *controllerPaymentRepo) UpdateReceiptDelivery(context.Context, *entity.Payment) error {
	return nil
}

func (r *controllerPaymentRepo) FindByID(ctx context.Context, id uint64) (*entity.Payment, error) {
	if r.findByIDFn != nil {
		return r.findByIDFn(ctx, id)
	}
	return nil, nil
}

func (r *controllerPaymentRepo) FindByReceiptNumber(context.Context, string) (*entity.Payment, error) {
	return nil, nil
}

func (r *controllerPaymentRepo) FindByGatewayOrderID(ctx context.Context, gateway, orderID string) (*entity.Payment, error) {
	if r.findByOrderFn != nil {
		return r.findByOrderFn(ctx, gateway, orderID)
	}
	return nil, nil
}

func (r *controllerPaymentRepo) FindByAnyGatewayOrderID(ctx context.Context, orderID string) (*entity.Payment, error) {
	if r.findByOrderFn != nil {
		return r.findByOrderFn(ctx, "", orderID)
	}
	return nil, nil
}

func (r *controllerPaymentRepo) FindByGatewayPaymentID(context.Context, string) (*entity.Payment, error) {
	return nil, nil
}

func (r *controllerPaymentRepo) List(ctx context.Context, filter repository.PaymentFilter) ([]*entity.Payment, int64, error) {
	if r.listFn != nil {
		return r.listFn(ctx, filter)
	}
	return []*entity.Payment{}, 0, nil
}

func (r *controllerPaymentRepo) ListDueReceiptDelivery(context.Context, time.Time, int32) ([]*entity.Payment, error) {
	return []*entity.Payment{}, nil
}

func (r *controllerPaymentRepo) ClaimReceiptDelivery(context.Context, uint64, time.Time, time.Time) (bool, error) {
	return false, nil
}

func (r *controllerPaymentRepo) ListExpiredPending(context.Context, time.Time, int32) ([]*entity.Payment, error) {
	return []*entity.Payment{}, nil
}

func (r *controllerPaymentRepo) ListForReconcile(context.Context, time.Time, int32) ([]*entity.Payment, error) {
	return []*entity.Payment{}, nil
}

func (r *controllerPaymentRepo) Stats(context.Context) (*repository.PaymentStats, error) {
	return &repository.PaymentStats{Total: 4, Completed: 3, Revenue: decimal.NewFromInt(1500)}, nil
}

type controllerUserRepo struct {
	users []*entity.User
}

func (r *controllerUserRepo) Create(_ context.Context, user *entity.User) error {
	user.ID = uint64(len(r.users) + 1)
	copyItem := *user
	r.users = append(r.users, &copyItem)
	return nil
}

func (r *controllerUserRepo) Update(_ context.Context, user *entity.User) error {
	for i, item := range r.users {
		if item.ID == user.ID {
			copyItem := *user
			r.users[i] = &copyItem
			return nil
		}
	}
	return repository.ErrUserNotFound
}

func (r *controllerUserRepo) FindByID(_ context.Context, id uint64) (*entity.User, error) {
	return r.find(func(u *entity.User) bool { return u.ID == id }), nil
}

func (r *controllerUserRepo) FindByEmail(_ context.Context, email string) (*entity.User, error) {
	return r.find(func(u *entity.User) bool { return u.Email == email }), nil
}

func (r *controllerUserRepo) FindByMobile(_ context.Context, mobile string) (*entity.User, error) {
	return r.find(func(u *entity.User) bool { return u.Mobile == mobile }), nil
}

func (r *controllerUserRepo) List(_ context.Context, filter repository.UserFilter) ([]*entity.User, int64, error) {
	items := make([]*entity.User, 0, len(r.users))
	for _, item := range r.users {
		if filter.Search == "" || strings.Contains(item.Name, filter.Search) {
			items = append(items, item)
		}
	}
	return items, int64(len(items)), nil
}

func (r *controllerUserRepo) Count(context.Context) (int64, error) {
	return int64(len(r.users)), nil
}

func (r *controllerUserRepo) find(match func(*entity.User) bool) *entity.User {
	for _, item := range r.users {
		if match(item) {
			copyItem := *item
			return &copyItem
		}
	}
	return nil
}

type controllerReceiptRepo struct {
	receipts []*entity.Receipt
}

func (r *controllerReceiptRepo) Create(_ context.Context, receipt *entity.Receipt) error {
	receipt.ID = uint64(len(r.receipts) + 1)
	copyItem := *receipt
	r.receipts = append(r.receipts, &copyItem)
	return nil
}

func (r *controllerReceiptRepo) UpdateStorageKey(context.Context, uint64, string) error {
	return nil
}

func (r *controllerReceiptRepo) FindByID(_ context.Context, id uint64) (*entity.Receipt, error) {
	for _, item := range r.receipts {
		if item.ID == id {
			copyItem := *item
			return &copyItem, nil
		}
	}
	return nil, nil
}

func (r *controllerReceiptRepo) FindByPaymentID(_ context.Context, paymentID uint64) (*entity.Receipt, error) {
	for _, item := range r.receipts {
		if item.PaymentID == paymentID {
			copyItem := *item
			return &copyItem, nil
		}
	}
	return nil, nil
}

func (r *controllerReceiptRepo) List(context.Context, repository.ReceiptFilter) ([]*entity.Receipt, int64, error) {
	return r.receipts, int64(len(r.receipts)), nil
}

func (r *controllerReceiptRepo) Count(context.Context) (int64, error) {
	return int64(len(r.receipts)), nil
}

type controllerEventRepo struct{}

func (r *controllerEventRepo) Create(context.Context, *entity.PaymentEvent) error {
	return nil
}

type controllerCallbackRepo struct{}

func (r *controllerCallbackRepo) Create(context.Context, *entity.PaymentCallback) error {
	return nil
}

type controllerProvider struct {
	createErr   error
	callbackErr error
	callbackEvt *provider.CallbackEvent
}

func (p *controllerProvider) Code() string {
	return entity.GatewayCashfree
}

func (p *controllerProvider) CreateOrder(_ context.Context, input *provider.CreateInput) (*provider.CreateOutput, error) {
	if p.createErr != nil {
		return nil, p.createErr
	}
	url := "https://payments.cashfree.example/session/" + input.ReceiptNumber
	return &provider.CreateOutput{OrderID: "order_" + input.ReceiptNumber, CheckoutURL: &url}, nil
}

func (p *controllerProvider) VerifyAndParseCallback(context.Context, []byte, string) (*provider.CallbackEvent, error) {
	if p.callbackErr != nil {
		return nil, p.callbackErr
	}
	return p.callbackEvt, nil
}

func (p *controllerProvider) GetOrderStatus(context.Context, string) (*provider.StatusResult, error) {
	return &provider.StatusResult{ProviderStatus: "ACTIVE", Status: entity.PaymentStatusPending}, nil
}

type controllerRenderer struct{}

func (controllerRenderer) Render(data document.ReceiptData) ([]byte, error) {
	return []byte("%PDF-" + data.ReceiptNumber), nil
}

type controllerArchive struct{}

func (controllerArchive) Enabled() bool {
	return false
}

func (controllerArchive) PutReceipt(context.Context, string, []byte) (string, error) {
	return "", nil
}

type controllerMailer struct {
	err  error
	sent []notifier.Mail
}

func (m *controllerMailer) Send(_ context.Context, mail notifier.Mail) error {
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, mail)
	return nil
}

type controllerWhatsApp struct {
	err error
}

func (w *controllerWhatsApp) Send(context.Context, string, string) error {
	return w.err
}

type controllerReminderRepo struct {
	reminders []*entity.Reminder
}

func (r *controllerReminderRepo) Create(_ context.Context, reminder *entity.Reminder) error {
	reminder.ID = uint64(len(r.reminders) + 1)
	r.reminders = append(r.reminders, reminder)
	return nil
}

func (r *controllerReminderRepo) ListByPayment(context.Context, uint64, int32) ([]*entity.Reminder, error) {
	return r.reminders, nil
}

type controllerAdminRepo struct {
	admin *entity.Admin
}

func (r *controllerAdminRepo) Create(context.Context, *entity.Admin) error {
	return nil
}

func (r *controllerAdminRepo) FindByIdentifier(_ context.Context, identifier string) (*entity.Admin, error) {
	if r.admin != nil && (r.admin.Username == identifier || r.admin.Email == identifier) {
		copyItem := *r.admin
		return &copyItem, nil
	}
	return nil, nil
}

func (r *controllerAdminRepo) TouchLastLogin(context.Context, uint64, time.Time) error {
	return nil
}

type controllerSessionStore struct {
	sessions map[string]*session.AdminSession
}

func (s *controllerSessionStore) Create(_ context.Context, sess *session.AdminSession) (string, error) {
	s.sessions["token-1"] = sess
	return "token-1", nil
}

func (s *controllerSessionStore) Get(_ context.Context, token string) (*session.AdminSession, error) {
	if sess, ok := s.sessions[token]; ok {
		return sess, nil
	}
	return nil, session.ErrSessionNotFound
}

func (s *controllerSessionStore) Delete(_ context.Context, token string) error {
	delete(s.sessions, token)
	return nil
}

// controllerDeps wires real services over the fakes above.
type controllerDeps struct {
	payments  *controllerPaymentRepo
	users     *controllerUserRepo
	receipts  *controllerReceiptRepo
	reminders *controllerReminderRepo
	gateway   *controllerProvider
	mailer    *controllerMailer
	whatsapp  *controllerWhatsApp
	admins    *controllerAdminRepo
	sessions  *controllerSessionStore

	userService     *service.UserService
	paymentService  *service.PaymentService
	receiptService  *service.ReceiptService
	reminderService *service.ReminderService
	adminService    *service.AdminService
}

func newControllerDeps() *controllerDeps {
	d := &controllerDeps{
		payments:  &controllerPaymentRepo{},
		users:     &controllerUserRepo{},
		receipts:  &controllerReceiptRepo{},
		reminders: &controllerReminderRepo{},
		gateway:   &controllerProvider{},
		mailer:    &controllerMailer{},
		whatsapp:  &controllerWhatsApp{},
		admins:    &controllerAdminRepo{},
		sessions:  &controllerSessionStore{sessions: map[string]*session.AdminSession{}},
	}

	cfg := config.PaymentsConfig{
		ReceiptDeliveryMaxAttempts:   3,
		ReceiptDeliveryRetryInterval: time.Minute,
		ReceiptDeliveryTimeout:       time.Second,
		PendingTimeout:               time.Hour,
		ReconcileStaleAfter:          time.Minute,
		JobBatchSize:                 10,
	}

	d.userService = service.NewUserService(d.users)
	d.receiptService = service.NewReceiptService(
		d.receipts, d.payments, d.users, &controllerEventRepo{},
		controllerRenderer{}, controllerArchive{}, d.mailer, nil,
		"", cfg,
	)
	d.paymentService = service.NewPaymentService(
		d.payments, d.receipts, &controllerEventRepo{}, &controllerCallbackRepo{},
		d.userService, provider.NewRegistry(d.gateway, provider.NewManualProvider()),
		nil, d.receiptService, cfg, "https://receipts.example", testLinks,
	)
	d.reminderService = service.NewReminderService(d.payments, d.users, d.reminders, d.mailer, d.whatsapp)
	d.adminService = service.NewAdminService(d.admins, d.sessions, d.payments, d.receipts, d.users)

	return d
}

func (d *controllerDeps) seedUser() *entity.User {
	user := &entity.User{Name: "Asha Rao", Email: "asha@example.com", Phone: "9876543210", Mobile: "9876543210"}
	_ = d.users.Create(context.Background(), user)
	return user
}

func (d *controllerDeps) withPayment(payment *entity.Payment) {
	d.payments.findByIDFn = func(_ context.Context, id uint64) (*entity.Payment, error) {
		if id != payment.ID {
			return nil, nil
		}
		copyItem := *payment
		return &copyItem, nil
	}
}

func newTestPayment(status string) *entity.Payment {
	orderID := "order_AKRX-20240315-1234"
	return &entity.Payment{
		ID:             7,
		UserID:         1,
		Amount:         decimal.NewFromInt(1500),
		Currency:       "INR",
		PaymentMode:    entity.PaymentModeUPI,
		Status:         status,
		ReceiptNumber:  "AKRX-20240315-1234",
		Gateway:        entity.GatewayCashfree,
		GatewayOrderID: &orderID,
		CreatedAt:      time.Date(2024, 3, 15, 6, 30, 0, 0, time.UTC),
		UpdatedAt:      time.Date(2024, 3, 15, 6, 30, 0, 0, time.UTC),
	}
}

func newJSONContext(e *echo.Echo, method, target, body string) (echo.Context, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}
