package provider

import (
	"context"

	"github.com/vibast-solutions/ms-go-receipts/app/entity"
)

// ManualProvider backs QR and offline payments. Settlement is confirmed by an
// admin or a UTR submission, never by the gateway.
type ManualProvider struct{}

func NewManualProvider() *ManualProvider {
	return &ManualProvider{}
}

func (p *ManualProvider) Code() string {
	return entity.GatewayManual
}

func (p *ManualProvider) CreateOrder(_ context.Context, input *CreateInput) (*CreateOutput, error) {
	return &CreateOutput{OrderID: input.ReceiptNumber}, nil
}

func (p *ManualProvider) VerifyAndParseCallback(context.Context, []byte, string) (*CallbackEvent, error) {
	return nil, ErrCallbackUnsupported
}

func (p *ManualProvider) GetOrderStatus(context.Context, string) (*StatusResult, error) {
	return &StatusResult{ProviderStatus: "manual", Status: entity.PaymentStatusPending}, nil
}
