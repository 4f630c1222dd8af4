package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/vibast-solutions/ms-go-receipts/app/entity"
	"github.com/vibast-solutions/ms-go-receipts/app/provider"
)

type handleCallbackRequest interface {
	GetGateway() string
	GetSignature() string
	GetPayload() string
}

// HandleCallback verifies a gateway notification and applies its outcome.
// Rejected deliveries are recorded in the callback log and never touch the
// payment row.
func (s *PaymentService) HandleCallback(ctx context.Context, req handleCallbackRequest) (*entity.Payment, error) {
	gateway := strings.ToLower(strings.TrimSpace(req.GetGateway()))
	providerClient, err := s.providerReg.Get(gateway)
	if err != nil {
		if errors.Is(err, provider.ErrProviderNotSupported) {
			return nil, ErrProviderUnsupported
		}
		return nil, err
	}

	payload := []byte(req.GetPayload())
	signature := strings.TrimSpace(req.GetSignature())
	event, err := providerClient.VerifyAndParseCallback(ctx, payload, signature)
	if err != nil {
		s.persistRejectedCallback(ctx, gateway, "", req, err.Error())
		switch {
		case errors.Is(err, provider.ErrInvalidSignature):
			return nil, ErrInvalidSignature
		case errors.Is(err, provider.ErrCallbackUnsupported):
			return nil, ErrProviderUnsupported
		case errors.Is(err, provider.ErrMalformedCallback):
			return nil, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
		default:
			return nil, fmt.Errorf("%w: %v", ErrGateway, err)
		}
	}

	payment, err := s.paymentRepo.FindByGatewayOrderID(ctx, gateway, event.OrderID)
	if err != nil {
		return nil, err
	}
	if payment == nil {
		s.persistRejectedCallback(ctx, gateway, event.OrderID, req, "payment not found for order id")
		return nil, ErrPaymentNotFound
	}

	eventType := strings.TrimSpace(event.EventType)
	if eventType == "" {
		eventType = gateway + "_callback"
	}

	result, changed, err := s.applyTransition(ctx, payment, transition{
		to:        event.Status,
		eventType: eventType,
		payload:   string(payload),
		apply: func(p *entity.Payment) {
			if event.PaymentID != nil {
				p.GatewayPaymentID = event.PaymentID
			}
			if event.PaymentMethod != nil {
				p.GatewayPaymentMethod = event.PaymentMethod
			}
			if event.Signature != nil {
				p.GatewaySignature = event.Signature
			}
			if event.PaidAt != nil {
				p.GatewayPaidAt = event.PaidAt
			}
		},
	})
	if err != nil {
		return nil, err
	}

	status := entity.PaymentCallbackProcessed
	if !changed {
		status = entity.PaymentCallbackIgnored
	}
	paymentID := payment.ID
	orderID := event.OrderID
	if err := s.callbackRepo.Create(ctx, &entity.PaymentCallback{
		PaymentID:   &paymentID,
		Gateway:     gateway,
		OrderID:     &orderID,
		Signature:   signature,
		PayloadJSON: req.GetPayload(),
		Status:      status,
		CreatedAt:   s.now(),
	}); err != nil {
		return nil, err
	}

	return result, nil
}

// RefreshPaymentStatus polls the gateway for a pending payment. Gateway
// errors leave the stored status untouched.
func (s *PaymentService) RefreshPaymentStatus(ctx context.Context, id uint64) (*entity.Payment, error) {
	payment, err := s.GetPayment(ctx, id)
	if err != nil {
		return nil, err
	}
	if payment.IsTerminal() || payment.Gateway == entity.GatewayManual {
		return payment, nil
	}

	result, _, err := s.reconcile(ctx, payment, "status_refreshed")
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *PaymentService) reconcile(ctx context.Context, payment *entity.Payment, eventType string) (*entity.Payment, bool, error) {
	orderID := strings.TrimSpace(derefString(payment.GatewayOrderID))
	if orderID == "" {
		return payment, false, nil
	}

	providerClient, err := s.providerReg.Get(payment.Gateway)
	if err != nil {
		if errors.Is(err, provider.ErrProviderNotSupported) {
			return nil, false, ErrProviderUnsupported
		}
		return nil, false, err
	}

	status, err := providerClient.GetOrderStatus(ctx, orderID)
	if err != nil {
		return nil, false, fmt.Errorf("%w: %v", ErrGateway, err)
	}

	return s.applyTransition(ctx, payment, transition{
		to:        status.Status,
		eventType: eventType,
		payload:   status.ProviderStatus,
		apply: func(p *entity.Payment) {
			if status.PaymentID != nil {
				p.GatewayPaymentID = status.PaymentID
			}
		},
	})
}

func (s *PaymentService) persistRejectedCallback(
	ctx context.Context,
	gateway string,
	orderID string,
	req handleCallbackRequest,
	reason string,
) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		reason = "callback rejected"
	}
	trimmedErr := truncate(reason, 1024)
	_ = s.callbackRepo.Create(ctx, &entity.PaymentCallback{
		Gateway:     gateway,
		OrderID:     normalizeOptionalString(orderID),
		Signature:   strings.TrimSpace(req.GetSignature()),
		PayloadJSON: req.GetPayload(),
		Status:      entity.PaymentCallbackRejected,
		Error:       &trimmedErr,
		CreatedAt:   s.now(),
	})
}
