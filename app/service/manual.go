package service

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/vibast-solutions/ms-go-receipts/app/entity"
)

var utrPattern = regexp.MustCompile(`^[A-Za-z0-9]{10,22}$`)

type createQRPaymentRequest interface {
	GetName() string
	GetEmail() string
	GetPhone() string
	GetAddress() string
	GetAmount() decimal.Decimal
	GetServiceType() string
	GetUtr() string
}

type overrideStatusRequest interface {
	GetStatus() string
	GetReason() string
}

func IsValidUTR(utr string) bool {
	return utrPattern.MatchString(utr)
}

// CreateQRPayment records a QR transfer the customer says they made. The
// payment waits in pending until an admin approves it or a UTR is verified.
func (s *PaymentService) CreateQRPayment(ctx context.Context, req createQRPaymentRequest) (*entity.Payment, error) {
	utr := strings.TrimSpace(req.GetUtr())
	if utr != "" && !IsValidUTR(utr) {
		return nil, fmt.Errorf("%w: invalid UTR format", ErrInvalidRequest)
	}

	return s.create(ctx, newPayment{
		customer: CustomerDetails{
			Name:    req.GetName(),
			Email:   req.GetEmail(),
			Phone:   req.GetPhone(),
			Address: req.GetAddress(),
		},
		amount:      req.GetAmount(),
		mode:        entity.PaymentModeQR,
		serviceType: strings.TrimSpace(req.GetServiceType()),
		utr:         utr,
	})
}

// SubmitUTR completes a pending manual payment once the customer supplies a
// well-formed bank reference.
func (s *PaymentService) SubmitUTR(ctx context.Context, id uint64, utr string) (*entity.Payment, error) {
	utr = strings.TrimSpace(utr)
	if !IsValidUTR(utr) {
		return nil, fmt.Errorf("%w: invalid UTR format", ErrInvalidRequest)
	}

	payment, err := s.GetPayment(ctx, id)
	if err != nil {
		return nil, err
	}
	if payment.Gateway != entity.GatewayManual {
		return nil, fmt.Errorf("%w: UTR applies to manual payments only", ErrInvalidStatus)
	}

	switch payment.Status {
	case entity.PaymentStatusPending:
	case entity.PaymentStatusCompleted:
		if derefString(payment.UTR) == utr {
			return payment, nil
		}
		return nil, fmt.Errorf("%w: payment already completed", ErrInvalidStatus)
	default:
		return nil, fmt.Errorf("%w: payment is %s", ErrInvalidStatus, payment.Status)
	}

	result, _, err := s.applyTransition(ctx, payment, transition{
		to:        entity.PaymentStatusCompleted,
		eventType: "utr_verified",
		payload:   utr,
		apply: func(p *entity.Payment) {
			p.UTR = &utr
			p.GatewayPaymentID = &utr
		},
	})
	return result, err
}

// ApprovePayment is the admin confirmation of a manual transfer.
func (s *PaymentService) ApprovePayment(ctx context.Context, id uint64, actor string) (*entity.Payment, error) {
	payment, err := s.GetPayment(ctx, id)
	if err != nil {
		return nil, err
	}
	if payment.Gateway != entity.GatewayManual {
		return nil, fmt.Errorf("%w: only manual payments can be approved", ErrInvalidStatus)
	}

	switch payment.Status {
	case entity.PaymentStatusCompleted:
		return payment, nil
	case entity.PaymentStatusPending:
	default:
		return nil, fmt.Errorf("%w: payment is %s", ErrInvalidStatus, payment.Status)
	}

	result, _, err := s.applyTransition(ctx, payment, transition{
		to:        entity.PaymentStatusCompleted,
		eventType: "admin_approved",
		actor:     actor,
	})
	return result, err
}

// OverrideStatus is the only path that can reopen a terminal payment.
func (s *PaymentService) OverrideStatus(ctx context.Context, id uint64, req overrideStatusRequest, actor string) (*entity.Payment, error) {
	status := strings.ToLower(strings.TrimSpace(req.GetStatus()))
	if !entity.IsValidStatus(status) {
		return nil, fmt.Errorf("%w: unknown status", ErrInvalidRequest)
	}

	payment, err := s.GetPayment(ctx, id)
	if err != nil {
		return nil, err
	}

	reason := strings.TrimSpace(req.GetReason())
	result, changed, err := s.applyTransition(ctx, payment, transition{
		to:        status,
		eventType: "admin_override",
		actor:     actor,
		payload:   reason,
		override:  true,
		apply: func(p *entity.Payment) {
			if status == entity.PaymentStatusFailed && reason != "" {
				p.FailureReason = &reason
			}
		},
	})
	if err != nil {
		return nil, err
	}
	if !changed && result.Status != status {
		return nil, fmt.Errorf("%w: payment changed concurrently", ErrConflict)
	}
	return result, nil
}
