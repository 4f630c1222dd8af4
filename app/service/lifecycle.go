package service

import (
	"context"
	"errors"
	"time"

	"github.com/vibast-solutions/ms-go-receipts/app/entity"
	"github.com/vibast-solutions/ms-go-receipts/app/events"
	"github.com/vibast-solutions/ms-go-receipts/app/repository"
)

type transition struct {
	to        string
	eventType string
	actor     string
	payload   string
	// override lets an admin move a payment out of a terminal status.
	override bool
	apply    func(p *entity.Payment)
}

// applyTransition moves current to t.to with a compare-and-set on the status
// it was read with. A lost race returns the stored row and changed=false.
// Terminal payments are left untouched unless t.override is set.
func (s *PaymentService) applyTransition(ctx context.Context, current *entity.Payment, t transition) (*entity.Payment, bool, error) {
	if !entity.IsValidStatus(t.to) || current.Status == t.to {
		return current, false, nil
	}
	if current.IsTerminal() && !t.override {
		return current, false, nil
	}

	now := s.now()
	next := *current
	next.Status = t.to
	if t.apply != nil {
		t.apply(&next)
	}
	if next.Status == entity.PaymentStatusCompleted {
		armReceiptDelivery(&next, now)
	}
	next.UpdatedAt = now

	if err := s.paymentRepo.UpdateStatus(ctx, &next, current.Status); err != nil {
		if errors.Is(err, repository.ErrPaymentStatusConflict) {
			stored, findErr := s.GetPayment(ctx, current.ID)
			if findErr != nil {
				return nil, false, findErr
			}
			return stored, false, nil
		}
		return nil, false, err
	}

	var actor, payload *string
	if t.actor != "" {
		actor = &t.actor
	}
	if t.payload != "" {
		payload = &t.payload
	}
	oldStatus := current.Status
	paymentID := next.ID
	_ = s.eventRepo.Create(ctx, &entity.PaymentEvent{
		PaymentID:   &paymentID,
		EventType:   t.eventType,
		OldStatus:   &oldStatus,
		NewStatus:   next.Status,
		Actor:       actor,
		PayloadJSON: payload,
		CreatedAt:   now,
	})
	s.publish(ctx, events.TypePaymentStatusChanged, &next, oldStatus)

	if next.Status == entity.PaymentStatusCompleted && s.dispatcher != nil {
		s.dispatcher.TriggerReceiptDelivery(next.ID)
	}

	return &next, true, nil
}

func armReceiptDelivery(payment *entity.Payment, now time.Time) {
	payment.ReceiptDeliveryStatus = entity.ReceiptDeliveryPending
	payment.ReceiptDeliveryAttempts = 0
	payment.ReceiptDeliveryNextAt = &now
	payment.ReceiptDeliveryLastErr = nil
}
