package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/vibast-solutions/ms-go-receipts/app/document"
	"github.com/vibast-solutions/ms-go-receipts/app/entity"
	"github.com/vibast-solutions/ms-go-receipts/app/events"
	"github.com/vibast-solutions/ms-go-receipts/app/factory"
	"github.com/vibast-solutions/ms-go-receipts/app/notifier"
	"github.com/vibast-solutions/ms-go-receipts/app/repository"
	"github.com/vibast-solutions/ms-go-receipts/config"
)

type listReceiptsRequest interface {
	GetSearch() string
	GetPage() int32
	GetLimit() int32
}

type directReceiptRequest interface {
	GetProjectName() string
	GetName() string
	GetEmail() string
	GetPhone() string
	GetAddress() string
	GetAmount() decimal.Decimal
	GetPaymentMode() string
	GetServiceType() string
	GetDescription() string
	GetReceiptNumber() string
}

type receiptRepository interface {
	Create(ctx context.Context, receipt *entity.Receipt) error
	UpdateStorageKey(ctx context.Context, id uint64, storageKey string) error
	FindByID(ctx context.Context, id uint64) (*entity.Receipt, error)
	FindByPaymentID(ctx context.Context, paymentID uint64) (*entity.Receipt, error)
	List(ctx context.Context, filter repository.ReceiptFilter) ([]*entity.Receipt, int64, error)
	Count(ctx context.Context) (int64, error)
}

type userLookup interface {
	FindByID(ctx context.Context, id uint64) (*entity.User, error)
}

type receiptRenderer interface {
	Render(data document.ReceiptData) ([]byte, error)
}

type receiptArchive interface {
	Enabled() bool
	PutReceipt(ctx context.Context, receiptNumber string, pdf []byte) (string, error)
}

type mailSender interface {
	Send(ctx context.Context, mail notifier.Mail) error
}

type ReceiptView struct {
	Receipt *entity.Receipt
	Payment *entity.Payment
	User    *entity.User
}

type DirectReceipt struct {
	ReceiptNumber string
	PDF           []byte
}

type ReceiptService struct {
	receiptRepo   receiptRepository
	paymentRepo   paymentRepository
	userRepo      userLookup
	eventRepo     paymentEventRepository
	renderer      receiptRenderer
	archive       receiptArchive
	mailer        mailSender
	publisher     events.Publisher
	operatorEmail string
	paymentsCfg   config.PaymentsConfig
	logger        *logrus.Entry

	now              func() time.Time
	spawn            func(fn func())
	newReceiptNumber func(time.Time) string
}

func NewReceiptService(
	receiptRepo receiptRepository,
	paymentRepo paymentRepository,
	userRepo userLookup,
	eventRepo paymentEventRepository,
	renderer receiptRenderer,
	archive receiptArchive,
	mailer mailSender,
	publisher events.Publisher,
	operatorEmail string,
	paymentsCfg config.PaymentsConfig,
) *ReceiptService {
	if publisher == nil {
		publisher = events.NoopPublisher{}
	}

	return &ReceiptService{
		receiptRepo:      receiptRepo,
		paymentRepo:      paymentRepo,
		userRepo:         userRepo,
		eventRepo:        eventRepo,
		renderer:         renderer,
		archive:          archive,
		mailer:           mailer,
		publisher:        publisher,
		operatorEmail:    strings.TrimSpace(operatorEmail),
		paymentsCfg:      paymentsCfg,
		logger:           factory.NewModuleLogger("receipt-service"),
		now:              func() time.Time { return time.Now().UTC() },
		spawn:            func(fn func()) { go fn() },
		newReceiptNumber: generateReceiptNumber,
	}
}

// EnsureReceipt returns the receipt of a payment, issuing it on first use
// once the payment is completed. An issued receipt is returned whatever the
// payment's later status. Concurrent callers converge on the same row.
func (s *ReceiptService) EnsureReceipt(ctx context.Context, paymentID uint64) (*entity.Receipt, error) {
	existing, err := s.receiptRepo.FindByPaymentID(ctx, paymentID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}

	payment, err := s.findPayment(ctx, paymentID)
	if err != nil {
		return nil, err
	}
	if payment.Status != entity.PaymentStatusCompleted {
		return nil, ErrPaymentNotCompleted
	}
	return s.ensureForPayment(ctx, payment)
}

func (s *ReceiptService) ensureForPayment(ctx context.Context, payment *entity.Payment) (*entity.Receipt, error) {
	existing, err := s.receiptRepo.FindByPaymentID(ctx, payment.ID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}

	now := s.now()
	receipt := &entity.Receipt{
		PaymentID:     payment.ID,
		ReceiptNumber: payment.ReceiptNumber,
		GeneratedAt:   now.Truncate(time.Second),
	}
	if err := s.receiptRepo.Create(ctx, receipt); err != nil {
		if !errors.Is(err, repository.ErrReceiptAlreadyExists) {
			return nil, err
		}
		winner, findErr := s.receiptRepo.FindByPaymentID(ctx, payment.ID)
		if findErr != nil {
			return nil, findErr
		}
		if winner == nil {
			return nil, err
		}
		return winner, nil
	}

	paymentID := payment.ID
	_ = s.eventRepo.Create(ctx, &entity.PaymentEvent{
		PaymentID: &paymentID,
		EventType: "receipt_issued",
		NewStatus: payment.Status,
		CreatedAt: now,
	})
	publishPaymentEvent(ctx, s.publisher, events.TypeReceiptIssued, payment, "", now)
	s.archiveReceipt(ctx, receipt, payment)

	return receipt, nil
}

func (s *ReceiptService) archiveReceipt(ctx context.Context, receipt *entity.Receipt, payment *entity.Payment) {
	if s.archive == nil || !s.archive.Enabled() {
		return
	}

	logger := s.logger.WithFields(logrus.Fields{"receipt_number": receipt.ReceiptNumber, "payment_id": payment.ID})
	user, err := s.userRepo.FindByID(ctx, payment.UserID)
	if err != nil {
		logger.WithError(err).Warn("receipt_archive_failed")
		return
	}
	pdf, err := s.renderer.Render(receiptData(receipt, payment, user))
	if err != nil {
		logger.WithError(err).Warn("receipt_archive_failed")
		return
	}
	key, err := s.archive.PutReceipt(ctx, receipt.ReceiptNumber, pdf)
	if err != nil {
		logger.WithError(err).Warn("receipt_archive_failed")
		return
	}
	if err := s.receiptRepo.UpdateStorageKey(ctx, receipt.ID, key); err != nil {
		logger.WithError(err).Warn("receipt_archive_failed")
		return
	}
	receipt.StorageKey = &key
}

func (s *ReceiptService) GetReceipt(ctx context.Context, id uint64) (*ReceiptView, error) {
	receipt, err := s.receiptRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if receipt == nil {
		return nil, ErrReceiptNotFound
	}
	return s.view(ctx, receipt)
}

func (s *ReceiptService) RenderReceiptPDF(ctx context.Context, id uint64) (*ReceiptView, []byte, error) {
	view, err := s.GetReceipt(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	pdf, err := s.renderer.Render(receiptData(view.Receipt, view.Payment, view.User))
	if err != nil {
		return nil, nil, err
	}
	return view, pdf, nil
}

// EnsureReceiptPDF issues the receipt of a completed payment if needed and
// renders it.
func (s *ReceiptService) EnsureReceiptPDF(ctx context.Context, paymentID uint64) (*ReceiptView, []byte, error) {
	receipt, err := s.EnsureReceipt(ctx, paymentID)
	if err != nil {
		return nil, nil, err
	}
	view, err := s.view(ctx, receipt)
	if err != nil {
		return nil, nil, err
	}
	pdf, err := s.renderer.Render(receiptData(view.Receipt, view.Payment, view.User))
	if err != nil {
		return nil, nil, err
	}
	return view, pdf, nil
}

// EmailReceipt re-sends an issued receipt to the customer only.
func (s *ReceiptService) EmailReceipt(ctx context.Context, id uint64) (*ReceiptView, error) {
	view, pdf, err := s.RenderReceiptPDF(ctx, id)
	if err != nil {
		return nil, err
	}
	if view.User == nil {
		return nil, ErrUserNotFound
	}

	mail, err := notifier.CustomerReceiptMail(mailData(view.Payment, view.User), pdf)
	if err != nil {
		return nil, err
	}
	if err := s.mailer.Send(ctx, mail); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotification, err)
	}
	return view, nil
}

func (s *ReceiptService) ListReceipts(ctx context.Context, req listReceiptsRequest) ([]*ReceiptView, int64, error) {
	items, total, err := s.receiptRepo.List(ctx, repository.ReceiptFilter{
		Search: strings.TrimSpace(req.GetSearch()),
		Page:   normalizePage(req.GetPage()),
		Limit:  normalizeLimit(req.GetLimit()),
	})
	if err != nil {
		return nil, 0, err
	}

	views := make([]*ReceiptView, 0, len(items))
	for _, item := range items {
		view, err := s.view(ctx, item)
		if err != nil {
			return nil, 0, err
		}
		views = append(views, view)
	}
	return views, total, nil
}

// deliverReceipt issues the receipt if needed and mails it to the customer
// and the operator mailbox. Only the customer mail decides success.
func (s *ReceiptService) deliverReceipt(ctx context.Context, payment *entity.Payment) error {
	receipt, err := s.ensureForPayment(ctx, payment)
	if err != nil {
		return err
	}
	user, err := s.userRepo.FindByID(ctx, payment.UserID)
	if err != nil {
		return err
	}
	if user == nil {
		return ErrUserNotFound
	}

	pdf, err := s.renderer.Render(receiptData(receipt, payment, user))
	if err != nil {
		return err
	}

	data := mailData(payment, user)
	customerMail, err := notifier.CustomerReceiptMail(data, pdf)
	if err != nil {
		return err
	}
	if err := s.mailer.Send(ctx, customerMail); err != nil {
		return fmt.Errorf("%w: %v", ErrNotification, err)
	}

	if s.operatorEmail != "" {
		operatorMail, err := notifier.OperatorReceiptMail(s.operatorEmail, data, pdf)
		if err == nil {
			err = s.mailer.Send(ctx, operatorMail)
		}
		if err != nil {
			s.logger.WithError(err).WithField("payment_id", payment.ID).Warn("operator_receipt_mail_failed")
		}
	}

	return nil
}

// GenerateDirectReceipt renders and mails a receipt for admin-supplied
// customer data. Only an audit event is stored.
func (s *ReceiptService) GenerateDirectReceipt(ctx context.Context, req directReceiptRequest, actor string) (*DirectReceipt, error) {
	name := strings.TrimSpace(req.GetName())
	email := strings.ToLower(strings.TrimSpace(req.GetEmail()))
	amount := req.GetAmount()
	if name == "" || email == "" || !amount.IsPositive() {
		return nil, fmt.Errorf("%w: name, email and a positive amount are required", ErrInvalidRequest)
	}

	now := s.now()
	receiptNumber := strings.TrimSpace(req.GetReceiptNumber())
	if receiptNumber == "" {
		receiptNumber = s.newReceiptNumber(now)
	}
	mode := strings.TrimSpace(req.GetPaymentMode())
	address := strings.Join(strings.Fields(req.GetAddress()), " ")
	pdf, err := s.renderer.Render(document.ReceiptData{
		ReceiptNumber:   receiptNumber,
		IssuedAt:        now,
		CustomerName:    name,
		CustomerEmail:   email,
		CustomerPhone:   strings.TrimSpace(req.GetPhone()),
		CustomerAddress: address,
		Amount:          amount,
		PaymentMode:     mode,
		Status:          entity.PaymentStatusCompleted,
		ProjectName:     strings.TrimSpace(req.GetProjectName()),
		ServiceType:     strings.TrimSpace(req.GetServiceType()),
		Description:     strings.TrimSpace(req.GetDescription()),
	})
	if err != nil {
		return nil, err
	}

	mail, err := notifier.DirectReceiptMail(notifier.DirectReceiptMailData{
		ReceiptNumber: receiptNumber,
		IssuedOn:      now.In(istLocation).Format("02 Jan 2006"),
		ProjectName:   strings.TrimSpace(req.GetProjectName()),
		Name:          name,
		Email:         email,
		Phone:         strings.TrimSpace(req.GetPhone()),
		Address:       address,
		Amount:        amount,
		PaymentMode:   mode,
		ServiceType:   strings.TrimSpace(req.GetServiceType()),
		Description:   strings.TrimSpace(req.GetDescription()),
	}, pdf)
	if err != nil {
		return nil, err
	}
	if err := s.mailer.Send(ctx, mail); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotification, err)
	}

	var actorPtr *string
	if actor != "" {
		actorPtr = &actor
	}
	payloadBytes, _ := json.Marshal(map[string]string{
		"receipt_number": receiptNumber,
		"email":          email,
		"amount":         amount.StringFixed(2),
	})
	payload := string(payloadBytes)
	_ = s.eventRepo.Create(ctx, &entity.PaymentEvent{
		EventType:   "direct_receipt_issued",
		NewStatus:   entity.PaymentStatusCompleted,
		Actor:       actorPtr,
		PayloadJSON: &payload,
		CreatedAt:   now,
	})

	return &DirectReceipt{ReceiptNumber: receiptNumber, PDF: pdf}, nil
}

func (s *ReceiptService) findPayment(ctx context.Context, id uint64) (*entity.Payment, error) {
	payment, err := s.paymentRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if payment == nil {
		return nil, ErrPaymentNotFound
	}
	return payment, nil
}

func (s *ReceiptService) view(ctx context.Context, receipt *entity.Receipt) (*ReceiptView, error) {
	payment, err := s.findPayment(ctx, receipt.PaymentID)
	if err != nil {
		return nil, err
	}
	user, err := s.userRepo.FindByID(ctx, payment.UserID)
	if err != nil {
		return nil, err
	}
	return &ReceiptView{Receipt: receipt, Payment: payment, User: user}, nil
}

func receiptData(receipt *entity.Receipt, payment *entity.Payment, user *entity.User) document.ReceiptData {
	data := document.ReceiptData{
		ReceiptNumber:    receipt.ReceiptNumber,
		IssuedAt:         receipt.GeneratedAt,
		Amount:           payment.Amount,
		PaymentMode:      payment.PaymentMode,
		Status:           payment.Status,
		GatewayOrderID:   derefString(payment.GatewayOrderID),
		GatewayPaymentID: derefString(payment.GatewayPaymentID),
		ServiceType:      derefString(payment.ServiceType),
	}
	if user != nil {
		data.CustomerName = user.Name
		data.CustomerEmail = user.Email
		data.CustomerPhone = user.Phone
		data.CustomerAddress = user.Address
	}
	return data
}

func mailData(payment *entity.Payment, user *entity.User) notifier.ReceiptMailData {
	return notifier.ReceiptMailData{
		Name:          user.Name,
		Email:         user.Email,
		Amount:        payment.Amount,
		ReceiptNumber: payment.ReceiptNumber,
	}
}
