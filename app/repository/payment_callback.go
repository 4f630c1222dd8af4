package repository

import (
	"context"

	"github.com/vibast-solutions/ms-go-receipts/app/entity"
)

type PaymentCallbackRepository struct {
	db DBTX
}

func NewPaymentCallbackRepository(db DBTX) *PaymentCallbackRepository {
	return &PaymentCallbackRepository{db: db}
}

func (r *PaymentCallbackRepository) Create(ctx context.Context, callback *entity.PaymentCallback) error {
	query := `
		INSERT INTO payment_callbacks (payment_id, gateway, order_id, signature, payload_json, status, error, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	result, err := r.db.ExecContext(ctx, query,
		nullableUint64Value(callback.PaymentID),
		callback.Gateway,
		nullableStringValue(callback.OrderID),
		callback.Signature,
		callback.PayloadJSON,
		callback.Status,
		nullableStringValue(callback.Error),
		callback.CreatedAt,
	)
	if err != nil {
		return err
	}

	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	callback.ID = uint64(id)
	return nil
}
