package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/vibast-solutions/ms-go-receipts/app/entity"
	"github.com/vibast-solutions/ms-go-receipts/app/notifier"
)

const reminderSentMessage = "Reminder sent and logged successfully"

type sendReminderRequest interface {
	GetPaymentId() uint64
	GetChannel() string
	GetMessage() string
}

type reminderRepository interface {
	Create(ctx context.Context, reminder *entity.Reminder) error
	ListByPayment(ctx context.Context, paymentID uint64, limit int32) ([]*entity.Reminder, error)
}

type paymentLookup interface {
	FindByID(ctx context.Context, id uint64) (*entity.Payment, error)
}

type whatsAppSender interface {
	Send(ctx context.Context, to, body string) error
}

// ReminderResult reports channel failures without failing the call; the
// audit row is stored either way.
type ReminderResult struct {
	Reminder  *entity.Reminder
	Delivered bool
	Message   string
}

type ReminderService struct {
	paymentRepo  paymentLookup
	userRepo     userLookup
	reminderRepo reminderRepository
	mailer       mailSender
	whatsapp     whatsAppSender
	now          func() time.Time
}

func NewReminderService(
	paymentRepo paymentLookup,
	userRepo userLookup,
	reminderRepo reminderRepository,
	mailer mailSender,
	whatsapp whatsAppSender,
) *ReminderService {
	return &ReminderService{
		paymentRepo:  paymentRepo,
		userRepo:     userRepo,
		reminderRepo: reminderRepo,
		mailer:       mailer,
		whatsapp:     whatsapp,
		now:          func() time.Time { return time.Now().UTC() },
	}
}

func (s *ReminderService) SendReminder(ctx context.Context, req sendReminderRequest) (*ReminderResult, error) {
	channel := strings.ToLower(strings.TrimSpace(req.GetChannel()))
	message := strings.TrimSpace(req.GetMessage())
	if req.GetPaymentId() == 0 || channel == "" || message == "" {
		return nil, fmt.Errorf("%w: Missing required fields", ErrInvalidRequest)
	}
	if channel != entity.ReminderChannelEmail && channel != entity.ReminderChannelWhatsApp {
		return nil, fmt.Errorf("%w: Unsupported channel", ErrInvalidRequest)
	}

	payment, err := s.paymentRepo.FindByID(ctx, req.GetPaymentId())
	if err != nil {
		return nil, err
	}
	if payment == nil {
		return nil, fmt.Errorf("%w: Invalid paymentId", ErrInvalidRequest)
	}
	user, err := s.userRepo.FindByID(ctx, payment.UserID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, fmt.Errorf("%w: User not found", ErrInvalidRequest)
	}

	sendErr := s.deliver(ctx, channel, payment, user, message)

	reminder := &entity.Reminder{
		PaymentID: payment.ID,
		Channel:   channel,
		Message:   message,
		Status:    entity.ReminderStatusSent,
		SentAt:    s.now(),
	}
	if sendErr != nil {
		errMsg := truncate(sendErr.Error(), 1024)
		reminder.Status = entity.ReminderStatusError
		reminder.Error = &errMsg
	}
	if err := s.reminderRepo.Create(ctx, reminder); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrReminderNotLogged, err)
	}

	if sendErr != nil {
		return &ReminderResult{Reminder: reminder, Message: sendErr.Error()}, nil
	}
	return &ReminderResult{Reminder: reminder, Delivered: true, Message: reminderSentMessage}, nil
}

func (s *ReminderService) ListReminders(ctx context.Context, paymentID uint64, limit int32) ([]*entity.Reminder, error) {
	if paymentID == 0 {
		return nil, fmt.Errorf("%w: payment_id is required", ErrInvalidRequest)
	}
	if limit <= 0 {
		limit = 50
	}
	return s.reminderRepo.ListByPayment(ctx, paymentID, limit)
}

func (s *ReminderService) deliver(ctx context.Context, channel string, payment *entity.Payment, user *entity.User, message string) error {
	switch channel {
	case entity.ReminderChannelWhatsApp:
		phone := user.Mobile
		if phone == "" {
			phone = user.Phone
		}
		return s.whatsapp.Send(ctx, phone, notifier.ReminderWhatsAppBody(user.Name, payment.Amount, message))
	default:
		mail, err := notifier.ReminderMail(user.Email, user.Name, payment.Amount, message)
		if err != nil {
			return err
		}
		return s.mailer.Send(ctx, mail)
	}
}
