package service

import (
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/vibast-solutions/ms-go-receipts/app/entity"
	"github.com/vibast-solutions/ms-go-receipts/app/events"
	"github.com/vibast-solutions/ms-go-receipts/app/repository"
)

const (
	defaultDeliveryTimeout       = 60 * time.Second
	defaultDeliveryRetryInterval = 5 * time.Minute
)

// TriggerReceiptDelivery makes one immediate delivery attempt in the
// background. Whatever happens, the outbox row stays due for the dispatch job.
func (s *ReceiptService) TriggerReceiptDelivery(paymentID uint64) {
	s.spawn(func() {
		ctx, cancel := context.WithTimeout(context.Background(), s.deliveryTimeout())
		defer cancel()

		if err := s.deliverDue(ctx, paymentID); err != nil {
			s.logger.WithError(err).WithField("payment_id", paymentID).Warn("receipt_delivery_attempt_failed")
		}
	})
}

func (s *ReceiptService) RunReceiptDispatchBatch(ctx context.Context) error {
	items, err := s.paymentRepo.ListDueReceiptDelivery(ctx, s.now(), s.batchSize())
	if err != nil {
		return err
	}

	var firstErr error
	for _, payment := range items {
		if payment == nil {
			continue
		}
		if err := s.deliverDue(ctx, payment.ID); err != nil {
			firstErr = keepFirstErr(firstErr, err)
		}
	}

	return firstErr
}

// ResendReceipt re-arms the outbox for a completed payment and delivers it
// synchronously.
func (s *ReceiptService) ResendReceipt(ctx context.Context, paymentID uint64) (*entity.Payment, error) {
	payment, err := s.findPayment(ctx, paymentID)
	if err != nil {
		return nil, err
	}
	if payment.Status != entity.PaymentStatusCompleted {
		return nil, ErrPaymentNotCompleted
	}

	now := s.now()
	armReceiptDelivery(payment, now)
	payment.UpdatedAt = now
	if err := s.paymentRepo.UpdateReceiptDelivery(ctx, payment); err != nil {
		if errors.Is(err, repository.ErrPaymentNotFound) {
			return nil, ErrPaymentNotFound
		}
		return nil, err
	}

	if err := s.deliverDue(ctx, paymentID); err != nil {
		return nil, err
	}
	return s.findPayment(ctx, paymentID)
}

// deliverDue claims the outbox slot with a lease so concurrent workers never
// deliver the same receipt twice. An unclaimed slot is not an error.
func (s *ReceiptService) deliverDue(ctx context.Context, paymentID uint64) error {
	now := s.now()
	claimed, err := s.paymentRepo.ClaimReceiptDelivery(ctx, paymentID, now, now.Add(s.deliveryTimeout()))
	if err != nil {
		return err
	}
	if !claimed {
		return nil
	}

	payment, err := s.findPayment(ctx, paymentID)
	if err != nil {
		return err
	}
	return s.deliverClaimed(ctx, payment)
}

func (s *ReceiptService) deliverClaimed(ctx context.Context, payment *entity.Payment) error {
	now := s.now()
	if payment.Status != entity.PaymentStatusCompleted {
		payment.ReceiptDeliveryStatus = entity.ReceiptDeliveryNone
		payment.ReceiptDeliveryNextAt = nil
		payment.UpdatedAt = now
		return s.paymentRepo.UpdateReceiptDelivery(ctx, payment)
	}

	if err := s.deliverReceipt(ctx, payment); err != nil {
		return s.recordDeliveryFailure(ctx, payment, now, err)
	}

	payment.ReceiptDeliveryStatus = entity.ReceiptDeliverySuccess
	payment.ReceiptDeliveryAttempts++
	payment.ReceiptDeliveryNextAt = nil
	payment.ReceiptDeliveryLastErr = nil
	payment.UpdatedAt = now
	if err := s.paymentRepo.UpdateReceiptDelivery(ctx, payment); err != nil {
		return err
	}

	paymentID := payment.ID
	_ = s.eventRepo.Create(ctx, &entity.PaymentEvent{
		PaymentID: &paymentID,
		EventType: "receipt_delivered",
		NewStatus: payment.Status,
		CreatedAt: now,
	})
	publishPaymentEvent(ctx, s.publisher, events.TypeReceiptDelivered, payment, "", now)

	return nil
}

func (s *ReceiptService) recordDeliveryFailure(ctx context.Context, payment *entity.Payment, now time.Time, deliveryErr error) error {
	payment.ReceiptDeliveryAttempts++
	trimmed := truncate(deliveryErr.Error(), 1024)
	payment.ReceiptDeliveryLastErr = &trimmed

	maxAttempts := s.paymentsCfg.ReceiptDeliveryMaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = 1
	}

	if payment.ReceiptDeliveryAttempts >= maxAttempts {
		payment.ReceiptDeliveryStatus = entity.ReceiptDeliveryFailed
		payment.ReceiptDeliveryNextAt = nil
	} else {
		retryInterval := s.paymentsCfg.ReceiptDeliveryRetryInterval
		if retryInterval <= 0 {
			retryInterval = defaultDeliveryRetryInterval
		}
		next := now.Add(retryInterval * time.Duration(payment.ReceiptDeliveryAttempts))
		payment.ReceiptDeliveryStatus = entity.ReceiptDeliveryPending
		payment.ReceiptDeliveryNextAt = &next
	}
	payment.UpdatedAt = now

	if err := s.paymentRepo.UpdateReceiptDelivery(ctx, payment); err != nil {
		return err
	}

	paymentID := payment.ID
	_ = s.eventRepo.Create(ctx, &entity.PaymentEvent{
		PaymentID: &paymentID,
		EventType: "receipt_delivery_failed",
		NewStatus: payment.Status,
		CreatedAt: now,
	})
	s.logger.WithError(deliveryErr).WithFields(logrus.Fields{
		"payment_id": payment.ID,
		"attempts":   payment.ReceiptDeliveryAttempts,
	}).Warn("receipt_delivery_failed")

	return deliveryErr
}

func (s *ReceiptService) deliveryTimeout() time.Duration {
	if s.paymentsCfg.ReceiptDeliveryTimeout > 0 {
		return s.paymentsCfg.ReceiptDeliveryTimeout
	}
	return defaultDeliveryTimeout
}

func (s *ReceiptService) batchSize() int32 {
	if s.paymentsCfg.JobBatchSize > 0 {
		return s.paymentsCfg.JobBatchSize
	}
	return defaultBatchSize
}
