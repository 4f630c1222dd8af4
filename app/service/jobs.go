package service

import (
	"context"

	"github.com/vibast-solutions/ms-go-receipts/app/entity"
	"github.com/vibast-solutions/ms-go-receipts/app/factory"
)

var jobsLogger = factory.NewModuleLogger("payment-jobs")

// RunReconcileBatch polls gateways for pending payments that have not moved
// for ReconcileStaleAfter and applies the reported outcome.
func (s *PaymentService) RunReconcileBatch(ctx context.Context) error {
	before := s.now().Add(-s.paymentsCfg.ReconcileStaleAfter)
	items, err := s.paymentRepo.ListForReconcile(ctx, before, s.batchSize())
	if err != nil {
		return err
	}

	var firstErr error
	for _, payment := range items {
		if payment == nil || payment.Gateway == entity.GatewayManual {
			continue
		}
		if _, _, err := s.reconcile(ctx, payment, "payment_reconciled"); err != nil {
			firstErr = keepFirstErr(firstErr, err)
		}
	}

	return firstErr
}

// RunExpirePendingBatch cancels gateway payments left pending past
// PendingTimeout. The gateway is polled first so a payment that was paid but
// never called back is completed instead. Manual payments wait for a human and
// are never expired.
func (s *PaymentService) RunExpirePendingBatch(ctx context.Context) error {
	cutoff := s.now().Add(-s.paymentsCfg.PendingTimeout)
	items, err := s.paymentRepo.ListExpiredPending(ctx, cutoff, s.batchSize())
	if err != nil {
		return err
	}

	var firstErr error
	for _, payment := range items {
		if payment == nil || payment.Gateway == entity.GatewayManual {
			continue
		}
		current, _, err := s.reconcile(ctx, payment, "payment_reconciled")
		if err != nil {
			jobsLogger.WithError(err).WithField("payment_id", payment.ID).Warn("payment_expire_skipped")
			continue
		}
		if current.Status != entity.PaymentStatusPending {
			continue
		}

		reason := "payment expired"
		if _, _, err := s.applyTransition(ctx, current, transition{
			to:        entity.PaymentStatusCancelled,
			eventType: "payment_expired",
			apply: func(p *entity.Payment) {
				p.FailureReason = &reason
			},
		}); err != nil {
			firstErr = keepFirstErr(firstErr, err)
		}
	}

	return firstErr
}
