package service

import (
	"context"
	"errors"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"github.com/vibast-solutions/ms-go-receipts/app/access"
	"github.com/vibast-solutions/ms-go-receipts/app/document"
	"github.com/vibast-solutions/ms-go-receipts/app/entity"
	"github.com/vibast-solutions/ms-go-receipts/app/events"
	"github.com/vibast-solutions/ms-go-receipts/app/notifier"
	"github.com/vibast-solutions/ms-go-receipts/app/provider"
	"github.com/vibast-solutions/ms-go-receipts/app/repository"
	"github.com/vibast-solutions/ms-go-receipts/app/session"
	"github.com/vibast-solutions/ms-go-receipts/config"
)

var testNow = time.Date(2024, 3, 15, 6, 30, 0, 0, time.UTC)

type servicePaymentRepo struct {
	mu       sync.Mutex
	payments map[uint64]*entity.Payment
	nextID   uint64

	createErrs      []error
	updateStatusErr error
	conflictOnce    func(stored *entity.Payment)
}

func newServicePaymentRepo() *servicePaymentRepo {
	return &servicePaymentRepo{payments: map[uint64]*entity.Payment{}, nextID: 1}
}

func (r *servicePaymentRepo) Create(_ context.Context, payment *entity.Payment) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.createErrs) > 0 {
		err := r.createErrs[0]
		r.createErrs = r.createErrs[1:]
		if err != nil {
			return err
		}
	}
	for _, item := range r.payments {
		if item.ReceiptNumber == payment.ReceiptNumber {
			return repository.ErrDuplicateReceiptNumber
		}
	}

	payment.ID = r.nextID
	r.nextID++
	copyItem := *payment
	r.payments[payment.ID] = &copyItem
	return nil
}

func (r *servicePaymentRepo) UpdateStatus(_ context.Context, payment *entity.Payment, expectedStatus string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.updateStatusErr != nil {
		return r.updateStatusErr
	}
	stored, ok := r.payments[payment.ID]
	if !ok {
		return repository.ErrPaymentNotFound
	}
	if r.conflictOnce != nil {
		r.conflictOnce(stored)
		r.conflictOnce = nil
	}
	if stored.Status != expectedStatus {
		return repository.ErrPaymentStatusConflict
	}
	copyItem := *payment
	r.payments[payment.ID] = &copyItem
	return nil
}

func (r *servicePaymentRepo) UpdateReceiptDelivery(_ context.Context, payment *entity.Payment) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.payments[payment.ID]
	if !ok {
		return repository.ErrPaymentNotFound
	}
	stored.ReceiptDeliveryStatus = payment.ReceiptDeliveryStatus
	stored.ReceiptDeliveryAttempts = payment.ReceiptDeliveryAttempts
	stored.ReceiptDeliveryNextAt = payment.ReceiptDeliveryNextAt
	stored.ReceiptDeliveryLastErr = payment.ReceiptDeliveryLastErr
	stored.UpdatedAt = payment.UpdatedAt
	return nil
}

func (r *servicePaymentRepo) FindByID(_ context.Context, id uint64) (*entity.Payment, error) {
	return r.findOne(func(p *entity.Payment) bool { return p.ID == id }), nil
}

func (r *servicePaymentRepo) FindByReceiptNumber(_ context.Context, receiptNumber string) (*entity.Payment, error) {
	return r.findOne(func(p *entity.Payment) bool { return p.ReceiptNumber == receiptNumber }), nil
}

func (r *servicePaymentRepo) FindByGatewayOrderID(_ context.Context, gateway, orderID string) (*entity.Payment, error) {
	return r.findOne(func(p *entity.Payment) bool {
		return p.Gateway == gateway && derefString(p.GatewayOrderID) == orderID
	}), nil
}

func (r *servicePaymentRepo) FindByAnyGatewayOrderID(_ context.Context, orderID string) (*entity.Payment, error) {
	return r.findOne(func(p *entity.Payment) bool { return derefString(p.GatewayOrderID) == orderID }), nil
}

func (r *servicePaymentRepo) FindByGatewayPaymentID(_ context.Context, gatewayPaymentID string) (*entity.Payment, error) {
	return r.findOne(func(p *entity.Payment) bool { return derefString(p.GatewayPaymentID) == gatewayPaymentID }), nil
}

func (r *servicePaymentRepo) List(_ context.Context, filter repository.PaymentFilter) ([]*entity.Payment, int64, error) {
	items := r.findMany(func(p *entity.Payment) bool {
		if filter.UserID != 0 && p.UserID != filter.UserID {
			return false
		}
		if filter.Status != "" && p.Status != filter.Status {
			return false
		}
		return filter.Gateway == "" || p.Gateway == filter.Gateway
	})
	sort.Slice(items, func(i, j int) bool { return items[i].ID > items[j].ID })

	total := int64(len(items))
	start := int((filter.Page - 1) * filter.Limit)
	if start > len(items) {
		return []*entity.Payment{}, total, nil
	}
	end := start + int(filter.Limit)
	if end > len(items) {
		end = len(items)
	}
	return items[start:end], total, nil
}

func (r *servicePaymentRepo) ListDueReceiptDelivery(_ context.Context, now time.Time, limit int32) ([]*entity.Payment, error) {
	return limitItems(r.findMany(func(p *entity.Payment) bool {
		return p.ReceiptDeliveryStatus == entity.ReceiptDeliveryPending &&
			p.ReceiptDeliveryNextAt != nil && !p.ReceiptDeliveryNextAt.After(now)
	}), limit), nil
}

func (r *servicePaymentRepo) ClaimReceiptDelivery(_ context.Context, id uint64, now, leaseUntil time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.payments[id]
	if !ok || p.ReceiptDeliveryStatus != entity.ReceiptDeliveryPending ||
		p.ReceiptDeliveryNextAt == nil || p.ReceiptDeliveryNextAt.After(now) {
		return false, nil
	}
	lease := leaseUntil
	p.ReceiptDeliveryNextAt = &lease
	return true, nil
}

func (r *servicePaymentRepo) ListExpiredPending(_ context.Context, cutoff time.Time, limit int32) ([]*entity.Payment, error) {
	return limitItems(r.findMany(func(p *entity.Payment) bool {
		return p.Status == entity.PaymentStatusPending && p.Gateway != entity.GatewayManual && !p.CreatedAt.After(cutoff)
	}), limit), nil
}

func (r *servicePaymentRepo) ListForReconcile(_ context.Context, before time.Time, limit int32) ([]*entity.Payment, error) {
	return limitItems(r.findMany(func(p *entity.Payment) bool {
		return p.Status == entity.PaymentStatusPending && p.Gateway != entity.GatewayManual &&
			p.GatewayOrderID != nil && !p.UpdatedAt.After(before)
	}), limit), nil
}

func (r *servicePaymentRepo) Stats(_ context.Context) (*repository.PaymentStats, error) {
	stats := &repository.PaymentStats{Revenue: decimal.Zero}
	monthly := map[[2]int]*repository.MonthlyPaymentStat{}
	for _, p := range r.findMany(func(*entity.Payment) bool { return true }) {
		stats.Total++
		if p.Status != entity.PaymentStatusCompleted {
			continue
		}
		stats.Completed++
		stats.Revenue = stats.Revenue.Add(p.Amount)
		key := [2]int{p.CreatedAt.Year(), int(p.CreatedAt.Month())}
		if monthly[key] == nil {
			monthly[key] = &repository.MonthlyPaymentStat{Year: key[0], Month: key[1], Revenue: decimal.Zero}
		}
		monthly[key].Count++
		monthly[key].Revenue = monthly[key].Revenue.Add(p.Amount)
	}
	for _, m := range monthly {
		stats.Monthly = append(stats.Monthly, *m)
	}
	return stats, nil
}

func (r *servicePaymentRepo) put(p *entity.Payment) *entity.Payment {
	r.mu.Lock()
	defer r.mu.Unlock()

	if p.ID == 0 {
		p.ID = r.nextID
		r.nextID++
	} else if p.ID >= r.nextID {
		r.nextID = p.ID + 1
	}
	copyItem := *p
	r.payments[p.ID] = &copyItem
	return p
}

func (r *servicePaymentRepo) get(id uint64) *entity.Payment {
	return r.findOne(func(p *entity.Payment) bool { return p.ID == id })
}

func (r *servicePaymentRepo) findOne(match func(*entity.Payment) bool) *entity.Payment {
	items := r.findMany(match)
	if len(items) == 0 {
		return nil
	}
	return items[0]
}

func (r *servicePaymentRepo) findMany(match func(*entity.Payment) bool) []*entity.Payment {
	r.mu.Lock()
	defer r.mu.Unlock()

	items := make([]*entity.Payment, 0)
	for _, item := range r.payments {
		if match(item) {
			copyItem := *item
			items = append(items, &copyItem)
		}
	}
	sort.Slice(items, func(i, j int) bool { return items[i].ID < items[j].ID })
	return items
}

func limitItems(items []*entity.Payment, limit int32) []*entity.Payment {
	if limit > 0 && len(items) > int(limit) {
		return items[:limit]
	}
	return items
}

type serviceUserRepo struct {
	users   map[uint64]*entity.User
	nextID  uint64
	updates int
	// raceWinner is inserted just before the next Create to simulate a
	// concurrent checkout for the same email.
	raceWinner *entity.User
}

func newServiceUserRepo() *serviceUserRepo {
	return &serviceUserRepo{users: map[uint64]*entity.User{}, nextID: 1}
}

func (r *serviceUserRepo) Create(_ context.Context, user *entity.User) error {
	if r.raceWinner != nil {
		winner := *r.raceWinner
		winner.ID = r.nextID
		r.nextID++
		r.users[winner.ID] = &winner
		r.raceWinner = nil
	}
	for _, item := range r.users {
		if item.Email == user.Email {
			return repository.ErrUserAlreadyExists
		}
	}
	user.ID = r.nextID
	r.nextID++
	copyItem := *user
	r.users[user.ID] = &copyItem
	return nil
}

func (r *serviceUserRepo) Update(_ context.Context, user *entity.User) error {
	if _, ok := r.users[user.ID]; !ok {
		return repository.ErrUserNotFound
	}
	r.updates++
	copyItem := *user
	r.users[user.ID] = &copyItem
	return nil
}

func (r *serviceUserRepo) FindByID(_ context.Context, id uint64) (*entity.User, error) {
	if item, ok := r.users[id]; ok {
		copyItem := *item
		return &copyItem, nil
	}
	return nil, nil
}

func (r *serviceUserRepo) FindByEmail(_ context.Context, email string) (*entity.User, error) {
	for _, item := range r.users {
		if item.Email == email {
			copyItem := *item
			return &copyItem, nil
		}
	}
	return nil, nil
}

func (r *serviceUserRepo) FindByMobile(_ context.Context, mobile string) (*entity.User, error) {
	for _, item := range r.users {
		if item.Mobile == mobile {
			copyItem := *item
			return &copyItem, nil
		}
	}
	return nil, nil
}

func (r *serviceUserRepo) List(_ context.Context, filter repository.UserFilter) ([]*entity.User, int64, error) {
	items := make([]*entity.User, 0)
	for _, item := range r.users {
		if filter.Search != "" && !strings.Contains(item.Name+" "+item.Email, filter.Search) {
			continue
		}
		copyItem := *item
		items = append(items, &copyItem)
	}
	sort.Slice(items, func(i, j int) bool { return items[i].ID < items[j].ID })
	return items, int64(len(items)), nil
}

func (r *serviceUserRepo) Count(context.Context) (int64, error) {
	return int64(len(r.users)), nil
}

type serviceReceiptRepo struct {
	receipts map[uint64]*entity.Receipt
	nextID   uint64
	// raceWinner is inserted just before the next Create to simulate a
	// concurrent issuer.
	raceWinner *entity.Receipt
}

func newServiceReceiptRepo() *serviceReceiptRepo {
	return &serviceReceiptRepo{receipts: map[uint64]*entity.Receipt{}, nextID: 1}
}

func (r *serviceReceiptRepo) Create(_ context.Context, receipt *entity.Receipt) error {
	if r.raceWinner != nil {
		winner := *r.raceWinner
		winner.ID = r.nextID
		r.nextID++
		r.receipts[winner.ID] = &winner
		r.raceWinner = nil
	}
	for _, item := range r.receipts {
		if item.PaymentID == receipt.PaymentID {
			return repository.ErrReceiptAlreadyExists
		}
	}
	receipt.ID = r.nextID
	r.nextID++
	copyItem := *receipt
	r.receipts[receipt.ID] = &copyItem
	return nil
}

func (r *serviceReceiptRepo) UpdateStorageKey(_ context.Context, id uint64, storageKey string) error {
	item, ok := r.receipts[id]
	if !ok {
		return repository.ErrReceiptNotFound
	}
	item.StorageKey = &storageKey
	return nil
}

func (r *serviceReceiptRepo) FindByID(_ context.Context, id uint64) (*entity.Receipt, error) {
	if item, ok := r.receipts[id]; ok {
		copyItem := *item
		return &copyItem, nil
	}
	return nil, nil
}

func (r *serviceReceiptRepo) FindByPaymentID(_ context.Context, paymentID uint64) (*entity.Receipt, error) {
	for _, item := range r.receipts {
		if item.PaymentID == paymentID {
			copyItem := *item
			return &copyItem, nil
		}
	}
	return nil, nil
}

func (r *serviceReceiptRepo) List(_ context.Context, _ repository.ReceiptFilter) ([]*entity.Receipt, int64, error) {
	items := make([]*entity.Receipt, 0, len(r.receipts))
	for _, item := range r.receipts {
		copyItem := *item
		items = append(items, &copyItem)
	}
	sort.Slice(items, func(i, j int) bool { return items[i].ID > items[j].ID })
	return items, int64(len(items)), nil
}

func (r *serviceReceiptRepo) Count(context.Context) (int64, error) {
	return int64(len(r.receipts)), nil
}

type serviceEventRepo struct {
	mu     sync.Mutex
	events []*entity.PaymentEvent
}

func (r *serviceEventRepo) Create(_ context.Context, event *entity.PaymentEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	copyItem := *event
	r.events = append(r.events, &copyItem)
	return nil
}

func (r *serviceEventRepo) types() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	result := make([]string, 0, len(r.events))
	for _, event := range r.events {
		result = append(result, event.EventType)
	}
	return result
}

func (r *serviceEventRepo) count(eventType string) int {
	n := 0
	for _, t := range r.types() {
		if t == eventType {
			n++
		}
	}
	return n
}

type serviceCallbackRepo struct {
	callbacks []*entity.PaymentCallback
}

func (r *serviceCallbackRepo) Create(_ context.Context, callback *entity.PaymentCallback) error {
	copyItem := *callback
	r.callbacks = append(r.callbacks, &copyItem)
	return nil
}

func (r *serviceCallbackRepo) last() *entity.PaymentCallback {
	if len(r.callbacks) == 0 {
		return nil
	}
	return r.callbacks[len(r.callbacks)-1]
}

type serviceProvider struct {
	code        string
	createFn    func(input *provider.CreateInput) (*provider.CreateOutput, error)
	callbackFn  func(payload []byte, signature string) (*provider.CallbackEvent, error)
	statusFn    func(orderID string) (*provider.StatusResult, error)
	createCalls int
}

func (p *serviceProvider) Code() string {
	return p.code
}

func (p *serviceProvider) CreateOrder(_ context.Context, input *provider.CreateInput) (*provider.CreateOutput, error) {
	p.createCalls++
	if p.createFn != nil {
		return p.createFn(input)
	}
	session := "session_" + input.ReceiptNumber
	url := "https://gateway.example/pay/" + input.ReceiptNumber
	return &provider.CreateOutput{OrderID: "order_" + input.ReceiptNumber, SessionID: &session, CheckoutURL: &url}, nil
}

func (p *serviceProvider) VerifyAndParseCallback(_ context.Context, payload []byte, signature string) (*provider.CallbackEvent, error) {
	if p.callbackFn != nil {
		return p.callbackFn(payload, signature)
	}
	return nil, provider.ErrCallbackUnsupported
}

func (p *serviceProvider) GetOrderStatus(_ context.Context, orderID string) (*provider.StatusResult, error) {
	if p.statusFn != nil {
		return p.statusFn(orderID)
	}
	return &provider.StatusResult{ProviderStatus: "ACTIVE", Status: entity.PaymentStatusPending}, nil
}

type servicePublisher struct {
	mu     sync.Mutex
	events []events.PaymentEvent
	err    error
}

func (p *servicePublisher) Publish(_ context.Context, event events.PaymentEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return p.err
}

func (p *servicePublisher) Close() error {
	return nil
}

func (p *servicePublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	result := make([]string, 0, len(p.events))
	for _, event := range p.events {
		result = append(result, event.Type)
	}
	return result
}

type serviceMailer struct {
	mu    sync.Mutex
	sent  []notifier.Mail
	errFn func(mail notifier.Mail) error
}

func (m *serviceMailer) Send(_ context.Context, mail notifier.Mail) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.errFn != nil {
		if err := m.errFn(mail); err != nil {
			return err
		}
	}
	m.sent = append(m.sent, mail)
	return nil
}

func (m *serviceMailer) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sent)
}

type serviceRenderer struct {
	rendered []document.ReceiptData
	err      error
}

func (r *serviceRenderer) Render(data document.ReceiptData) ([]byte, error) {
	if r.err != nil {
		return nil, r.err
	}
	r.rendered = append(r.rendered, data)
	return []byte("%PDF-" + data.ReceiptNumber), nil
}

type serviceArchive struct {
	enabled bool
	keys    []string
	err     error
}

func (a *serviceArchive) Enabled() bool {
	return a.enabled
}

func (a *serviceArchive) PutReceipt(_ context.Context, receiptNumber string, _ []byte) (string, error) {
	if a.err != nil {
		return "", a.err
	}
	key := "receipts/" + receiptNumber + ".pdf"
	a.keys = append(a.keys, key)
	return key, nil
}

type serviceWhatsApp struct {
	to   []string
	body []string
	err  error
}

func (w *serviceWhatsApp) Send(_ context.Context, to, body string) error {
	if w.err != nil {
		return w.err
	}
	w.to = append(w.to, to)
	w.body = append(w.body, body)
	return nil
}

type serviceReminderRepo struct {
	reminders []*entity.Reminder
	createErr error
}

func (r *serviceReminderRepo) Create(_ context.Context, reminder *entity.Reminder) error {
	if r.createErr != nil {
		return r.createErr
	}
	reminder.ID = uint64(len(r.reminders) + 1)
	copyItem := *reminder
	r.reminders = append(r.reminders, &copyItem)
	return nil
}

func (r *serviceReminderRepo) ListByPayment(_ context.Context, paymentID uint64, limit int32) ([]*entity.Reminder, error) {
	items := make([]*entity.Reminder, 0)
	for _, item := range r.reminders {
		if item.PaymentID == paymentID {
			items = append(items, item)
		}
	}
	if len(items) > int(limit) {
		items = items[:limit]
	}
	return items, nil
}

type serviceAdminRepo struct {
	admins  []*entity.Admin
	touched map[uint64]time.Time
}

func (r *serviceAdminRepo) Create(_ context.Context, admin *entity.Admin) error {
	for _, item := range r.admins {
		if item.Username == admin.Username || item.Email == admin.Email {
			return repository.ErrAdminAlreadyExists
		}
	}
	admin.ID = uint64(len(r.admins) + 1)
	copyItem := *admin
	r.admins = append(r.admins, &copyItem)
	return nil
}

func (r *serviceAdminRepo) FindByIdentifier(_ context.Context, identifier string) (*entity.Admin, error) {
	for _, item := range r.admins {
		if item.Username == identifier || item.Email == identifier {
			copyItem := *item
			return &copyItem, nil
		}
	}
	return nil, nil
}

func (r *serviceAdminRepo) TouchLastLogin(_ context.Context, id uint64, at time.Time) error {
	if r.touched == nil {
		r.touched = map[uint64]time.Time{}
	}
	r.touched[id] = at
	return nil
}

type serviceSessionStore struct {
	sessions map[string]*session.AdminSession
	next     int
}

func (s *serviceSessionStore) Create(_ context.Context, sess *session.AdminSession) (string, error) {
	if s.sessions == nil {
		s.sessions = map[string]*session.AdminSession{}
	}
	s.next++
	token := "token-" + strconv.Itoa(s.next)
	s.sessions[token] = sess
	return token, nil
}

func (s *serviceSessionStore) Get(_ context.Context, token string) (*session.AdminSession, error) {
	if sess, ok := s.sessions[token]; ok {
		return sess, nil
	}
	return nil, session.ErrSessionNotFound
}

func (s *serviceSessionStore) Delete(_ context.Context, token string) error {
	delete(s.sessions, token)
	return nil
}

// testEnv wires the services over in-memory fakes with synchronous receipt
// delivery.
type testEnv struct {
	payments  *servicePaymentRepo
	users     *serviceUserRepo
	receipts  *serviceReceiptRepo
	events    *serviceEventRepo
	callbacks *serviceCallbackRepo
	publisher *servicePublisher
	mailer    *serviceMailer
	renderer  *serviceRenderer
	archive   *serviceArchive
	gateway   *serviceProvider

	userService    *UserService
	paymentService *PaymentService
	receiptService *ReceiptService
}

func newTestEnv() *testEnv {
	env := &testEnv{
		payments:  newServicePaymentRepo(),
		users:     newServiceUserRepo(),
		receipts:  newServiceReceiptRepo(),
		events:    &serviceEventRepo{},
		callbacks: &serviceCallbackRepo{},
		publisher: &servicePublisher{},
		mailer:    &serviceMailer{},
		renderer:  &serviceRenderer{},
		archive:   &serviceArchive{},
		gateway:   &serviceProvider{code: entity.GatewayCashfree},
	}

	cfg := config.PaymentsConfig{
		ReceiptDeliveryMaxAttempts:   3,
		ReceiptDeliveryRetryInterval: 5 * time.Minute,
		ReceiptDeliveryTimeout:       time.Minute,
		PendingTimeout:               24 * time.Hour,
		ReconcileStaleAfter:          15 * time.Minute,
		JobBatchSize:                 10,
	}

	env.userService = NewUserService(env.users)
	env.receiptService = NewReceiptService(
		env.receipts, env.payments, env.users, env.events,
		env.renderer, env.archive, env.mailer, env.publisher,
		"ops@example.com", cfg,
	)
	env.receiptService.now = func() time.Time { return testNow }
	env.receiptService.spawn = func(fn func()) { fn() }

	registry := provider.NewRegistry(
		env.gateway,
		&serviceProvider{code: entity.GatewayRazorpay},
		&serviceProvider{code: entity.GatewayPhonePe},
		provider.NewManualProvider(),
	)
	env.paymentService = NewPaymentService(
		env.payments, env.receipts, env.events, env.callbacks,
		env.userService, registry, env.publisher, env.receiptService,
		cfg, "https://receipts.example/", testLinks,
	)
	env.paymentService.now = func() time.Time { return testNow }

	seq := 1000
	env.paymentService.newReceiptNumber = func(time.Time) string {
		seq++
		return "AKRX-20240315-" + strconv.Itoa(seq)
	}

	return env
}

func (e *testEnv) seedUser() *entity.User {
	user := &entity.User{Name: "Asha Rao", Email: "asha@example.com", Phone: "9876543210", Mobile: "9876543210"}
	_ = e.users.Create(context.Background(), user)
	return user
}

func (e *testEnv) seedPayment(status, gateway string) *entity.Payment {
	user, _ := e.users.FindByEmail(context.Background(), "asha@example.com")
	if user == nil {
		user = e.seedUser()
	}
	orderID := "order_seed"
	return e.payments.put(&entity.Payment{
		UserID:         user.ID,
		Amount:         decimal.NewFromInt(500),
		Currency:       "INR",
		PaymentMode:    entity.PaymentModeUPI,
		Status:         status,
		ReceiptNumber:  "AKRX-20240315-" + strconv.Itoa(5000+len(e.payments.payments)),
		Gateway:        gateway,
		GatewayOrderID: &orderID,
		CreatedAt:      testNow.Add(-48 * time.Hour),
		UpdatedAt:      testNow.Add(-time.Hour),
	})
}

var errBoom = errors.New("boom")

var testLinks = access.NewSigner("test-link-secret", time.Hour)
