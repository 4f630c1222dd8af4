package service

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/vibast-solutions/ms-go-receipts/app/entity"
	"github.com/vibast-solutions/ms-go-receipts/app/events"
	"github.com/vibast-solutions/ms-go-receipts/app/factory"
)

var eventsLogger = factory.NewModuleLogger("payment-events")

// publishPaymentEvent is best-effort; the payment_events table stays the
// source of truth.
func publishPaymentEvent(
	ctx context.Context,
	publisher events.Publisher,
	eventType string,
	payment *entity.Payment,
	oldStatus string,
	at time.Time,
) {
	err := publisher.Publish(ctx, events.PaymentEvent{
		Type:          eventType,
		PaymentID:     payment.ID,
		ReceiptNumber: payment.ReceiptNumber,
		Status:        payment.Status,
		OldStatus:     oldStatus,
		Gateway:       payment.Gateway,
		Amount:        payment.Amount.StringFixed(2),
		OccurredAt:    at,
	})
	if err != nil {
		eventsLogger.WithError(err).WithFields(logrus.Fields{
			"payment_id": payment.ID,
			"event_type": eventType,
		}).Warn("payment_event_publish_failed")
	}
}
