package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/vibast-solutions/ms-go-receipts/app/entity"
)

var (
	ErrPaymentNotFound        = errors.New("payment not found")
	ErrDuplicateReceiptNumber = errors.New("receipt number already exists")
	ErrPaymentStatusConflict  = errors.New("payment status changed concurrently")
)

const paymentColumns = `id, user_id, amount, currency, payment_mode, status, receipt_number, service_type,
			gateway, gateway_order_id, gateway_payment_id, gateway_signature, gateway_session_id,
			gateway_payment_method, gateway_paid_at, checkout_url, utr, failure_reason,
			receipt_delivery_status, receipt_delivery_attempts, receipt_delivery_next_at, receipt_delivery_last_error,
			created_at, updated_at`

type PaymentFilter struct {
	UserID  uint64
	Status  string
	Gateway string
	Page    int32
	Limit   int32
}

type MonthlyPaymentStat struct {
	Year    int
	Month   int
	Count   int64
	Revenue decimal.Decimal
}

type PaymentStats struct {
	Total     int64
	Completed int64
	Revenue   decimal.Decimal
	Monthly   []MonthlyPaymentStat
}

type PaymentRepository struct {
	db DBTX
}

func NewPaymentRepository(db DBTX) *PaymentRepository {
	return &PaymentRepository{db: db}
}

func (r *PaymentRepository) Create(ctx context.Context, payment *entity.Payment) error {
	query := `
		INSERT INTO payments (
			user_id, amount, currency, payment_mode, status, receipt_number, service_type,
			gateway, gateway_order_id, gateway_payment_id, gateway_signature, gateway_session_id,
			gateway_payment_method, gateway_paid_at, checkout_url, utr, failure_reason,
			receipt_delivery_status, receipt_delivery_attempts, receipt_delivery_next_at, receipt_delivery_last_error,
			created_at, updated_at
		)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	result, err := r.db.ExecContext(ctx, query,
		payment.UserID,
		payment.Amount,
		payment.Currency,
		payment.PaymentMode,
		payment.Status,
		payment.ReceiptNumber,
		nullableStringValue(payment.ServiceType),
		payment.Gateway,
		nullableStringValue(payment.GatewayOrderID),
		nullableStringValue(payment.GatewayPaymentID),
		nullableStringValue(payment.GatewaySignature),
		nullableStringValue(payment.GatewaySessionID),
		nullableStringValue(payment.GatewayPaymentMethod),
		nullableTimeValue(payment.GatewayPaidAt),
		nullableStringValue(payment.CheckoutURL),
		nullableStringValue(payment.UTR),
		nullableStringValue(payment.FailureReason),
		payment.ReceiptDeliveryStatus,
		payment.ReceiptDeliveryAttempts,
		nullableTimeValue(payment.ReceiptDeliveryNextAt),
		nullableStringValue(payment.ReceiptDeliveryLastErr),
		payment.CreatedAt,
		payment.UpdatedAt,
	)
	if err != nil {
		if isDuplicateEntryError(err) && duplicateKeyName(err) == "uq_payments_receipt_number" {
			return ErrDuplicateReceiptNumber
		}
		return err
	}

	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	payment.ID = uint64(id)
	return nil
}

// Update writes every mutable column unconditionally.
func (r *PaymentRepository) Update(ctx context.Context, payment *entity.Payment) error {
	return r.update(ctx, payment, "")
}

// UpdateStatus writes the row only if its stored status still equals
// expectedStatus. ErrPaymentStatusConflict reports a lost race.
func (r *PaymentRepository) UpdateStatus(ctx context.Context, payment *entity.Payment, expectedStatus string) error {
	return r.update(ctx, payment, expectedStatus)
}

func (r *PaymentRepository) update(ctx context.Context, payment *entity.Payment, expectedStatus string) error {
	query := `
		UPDATE payments SET
			amount = ?,
			payment_mode = ?,
			status = ?,
			service_type = ?,
			gateway = ?,
			gateway_order_id = ?,
			gateway_payment_id = ?,
			gateway_signature = ?,
			gateway_session_id = ?,
			gateway_payment_method = ?,
			gateway_paid_at = ?,
			checkout_url = ?,
			utr = ?,
			failure_reason = ?,
			receipt_delivery_status = ?,
			receipt_delivery_attempts = ?,
			receipt_delivery_next_at = ?,
			receipt_delivery_last_error = ?,
			updated_at = ?
		WHERE id = ?
	`
	args := []interface{}{
		payment.Amount,
		payment.PaymentMode,
		payment.Status,
		nullableStringValue(payment.ServiceType),
		payment.Gateway,
		nullableStringValue(payment.GatewayOrderID),
		nullableStringValue(payment.GatewayPaymentID),
		nullableStringValue(payment.GatewaySignature),
		nullableStringValue(payment.GatewaySessionID),
		nullableStringValue(payment.GatewayPaymentMethod),
		nullableTimeValue(payment.GatewayPaidAt),
		nullableStringValue(payment.CheckoutURL),
		nullableStringValue(payment.UTR),
		nullableStringValue(payment.FailureReason),
		payment.ReceiptDeliveryStatus,
		payment.ReceiptDeliveryAttempts,
		nullableTimeValue(payment.ReceiptDeliveryNextAt),
		nullableStringValue(payment.ReceiptDeliveryLastErr),
		payment.UpdatedAt,
		payment.ID,
	}
	if expectedStatus != "" {
		query += " AND status = ?"
		args = append(args, expectedStatus)
	}

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		if expectedStatus != "" {
			return ErrPaymentStatusConflict
		}
		return ErrPaymentNotFound
	}

	return nil
}

// UpdateReceiptDelivery writes only the delivery outbox columns so it never
// races with status transitions.
func (r *PaymentRepository) UpdateReceiptDelivery(ctx context.Context, payment *entity.Payment) error {
	query := `
		UPDATE payments SET
			receipt_delivery_status = ?,
			receipt_delivery_attempts = ?,
			receipt_delivery_next_at = ?,
			receipt_delivery_last_error = ?,
			updated_at = ?
		WHERE id = ?
	`
	result, err := r.db.ExecContext(ctx, query,
		payment.ReceiptDeliveryStatus,
		payment.ReceiptDeliveryAttempts,
		nullableTimeValue(payment.ReceiptDeliveryNextAt),
		nullableStringValue(payment.ReceiptDeliveryLastErr),
		payment.UpdatedAt,
		payment.ID,
	)
	if err != nil {
		return err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrPaymentNotFound
	}
	return nil
}

func (r *PaymentRepository) FindByID(ctx context.Context, id uint64) (*entity.Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE id = ?`
	return r.findOne(ctx, query, id)
}

func (r *PaymentRepository) FindByReceiptNumber(ctx context.Context, receiptNumber string) (*entity.Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE receipt_number = ? LIMIT 1`
	return r.findOne(ctx, query, receiptNumber)
}

func (r *PaymentRepository) FindByGatewayOrderID(ctx context.Context, gateway, orderID string) (*entity.Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE gateway = ? AND gateway_order_id = ? LIMIT 1`
	return r.findOne(ctx, query, gateway, orderID)
}

func (r *PaymentRepository) FindByAnyGatewayOrderID(ctx context.Context, orderID string) (*entity.Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE gateway_order_id = ? ORDER BY id DESC LIMIT 1`
	return r.findOne(ctx, query, orderID)
}

func (r *PaymentRepository) FindByGatewayPaymentID(ctx context.Context, gatewayPaymentID string) (*entity.Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE gateway_payment_id = ? ORDER BY id DESC LIMIT 1`
	return r.findOne(ctx, query, gatewayPaymentID)
}

func (r *PaymentRepository) List(ctx context.Context, filter PaymentFilter) ([]*entity.Payment, int64, error) {
	conditions := make([]string, 0, 3)
	args := make([]interface{}, 0, 5)

	if filter.UserID > 0 {
		conditions = append(conditions, "user_id = ?")
		args = append(args, filter.UserID)
	}
	if strings.TrimSpace(filter.Status) != "" {
		conditions = append(conditions, "status = ?")
		args = append(args, filter.Status)
	}
	if strings.TrimSpace(filter.Gateway) != "" {
		conditions = append(conditions, "gateway = ?")
		args = append(args, filter.Gateway)
	}

	where := ""
	if len(conditions) > 0 {
		where = " WHERE " + strings.Join(conditions, " AND ")
	}

	var total int64
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM payments`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `SELECT ` + paymentColumns + ` FROM payments` + where + ` ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?`
	args = append(args, filter.Limit, pageOffset(filter.Page, filter.Limit))

	payments, err := r.queryMany(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	return payments, total, nil
}

func (r *PaymentRepository) ListDueReceiptDelivery(ctx context.Context, now time.Time, limit int32) ([]*entity.Payment, error) {
	query := `
		SELECT ` + paymentColumns + `
		FROM payments
		WHERE receipt_delivery_status = ?
		  AND receipt_delivery_next_at IS NOT NULL
		  AND receipt_delivery_next_at <= ?
		ORDER BY receipt_delivery_next_at ASC
		LIMIT ?
	`
	return r.queryMany(ctx, query, entity.ReceiptDeliveryPending, now, limit)
}

// ClaimReceiptDelivery pushes next_at forward to leaseUntil for a due
// delivery. Only one caller observes true for a given due slot.
func (r *PaymentRepository) ClaimReceiptDelivery(ctx context.Context, id uint64, now, leaseUntil time.Time) (bool, error) {
	query := `
		UPDATE payments SET receipt_delivery_next_at = ?
		WHERE id = ?
		  AND receipt_delivery_status = ?
		  AND receipt_delivery_next_at IS NOT NULL
		  AND receipt_delivery_next_at <= ?
	`
	result, err := r.db.ExecContext(ctx, query, leaseUntil, id, entity.ReceiptDeliveryPending, now)
	if err != nil {
		return false, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

func (r *PaymentRepository) ListExpiredPending(ctx context.Context, cutoff time.Time, limit int32) ([]*entity.Payment, error) {
	query := `
		SELECT ` + paymentColumns + `
		FROM payments
		WHERE status = ?
		  AND gateway <> ?
		  AND created_at <= ?
		ORDER BY created_at ASC
		LIMIT ?
	`
	return r.queryMany(ctx, query, entity.PaymentStatusPending, entity.GatewayManual, cutoff, limit)
}

func (r *PaymentRepository) ListForReconcile(ctx context.Context, before time.Time, limit int32) ([]*entity.Payment, error) {
	query := `
		SELECT ` + paymentColumns + `
		FROM payments
		WHERE status = ?
		  AND gateway <> ?
		  AND gateway_order_id IS NOT NULL
		  AND updated_at <= ?
		ORDER BY updated_at ASC
		LIMIT ?
	`
	return r.queryMany(ctx, query, entity.PaymentStatusPending, entity.GatewayManual, before, limit)
}

func (r *PaymentRepository) Stats(ctx context.Context) (*PaymentStats, error) {
	stats := &PaymentStats{}
	var revenue decimal.NullDecimal

	query := `
		SELECT COUNT(*),
			COALESCE(SUM(CASE WHEN status = ? THEN 1 ELSE 0 END), 0),
			SUM(CASE WHEN status = ? THEN amount ELSE 0 END)
		FROM payments
	`
	if err := r.db.QueryRowContext(ctx, query, entity.PaymentStatusCompleted, entity.PaymentStatusCompleted).
		Scan(&stats.Total, &stats.Completed, &revenue); err != nil {
		return nil, err
	}
	stats.Revenue = decimal.Zero
	if revenue.Valid {
		stats.Revenue = revenue.Decimal
	}

	monthlyQuery := `
		SELECT YEAR(created_at), MONTH(created_at), COUNT(*), COALESCE(SUM(amount), 0)
		FROM payments
		WHERE status = ?
		GROUP BY YEAR(created_at), MONTH(created_at)
		ORDER BY YEAR(created_at), MONTH(created_at)
	`
	rows, err := r.db.QueryContext(ctx, monthlyQuery, entity.PaymentStatusCompleted)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	stats.Monthly = make([]MonthlyPaymentStat, 0)
	for rows.Next() {
		var item MonthlyPaymentStat
		if err := rows.Scan(&item.Year, &item.Month, &item.Count, &item.Revenue); err != nil {
			return nil, err
		}
		stats.Monthly = append(stats.Monthly, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return stats, nil
}

func (r *PaymentRepository) findOne(ctx context.Context, query string, args ...interface{}) (*entity.Payment, error) {
	payment := &entity.Payment{}
	if err := scanPayment(r.db.QueryRowContext(ctx, query, args...), payment); err == sql.ErrNoRows {
		return nil, nil
	} else if err != nil {
		return nil, err
	}
	return payment, nil
}

func (r *PaymentRepository) queryMany(ctx context.Context, query string, args ...interface{}) ([]*entity.Payment, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	payments := make([]*entity.Payment, 0)
	for rows.Next() {
		item := &entity.Payment{}
		if err := scanPayment(rows, item); err != nil {
			return nil, err
		}
		payments = append(payments, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return payments, nil
}

func scanPayment(scan rowScanner, payment *entity.Payment) error {
	var serviceType sql.NullString
	var gatewayOrderID sql.NullString
	var gatewayPaymentID sql.NullString
	var gatewaySignature sql.NullString
	var gatewaySessionID sql.NullString
	var gatewayPaymentMethod sql.NullString
	var gatewayPaidAt sql.NullTime
	var checkoutURL sql.NullString
	var utr sql.NullString
	var failureReason sql.NullString
	var deliveryNextAt sql.NullTime
	var deliveryLastErr sql.NullString

	err := scan.Scan(
		&payment.ID,
		&payment.UserID,
		&payment.Amount,
		&payment.Currency,
		&payment.PaymentMode,
		&payment.Status,
		&payment.ReceiptNumber,
		&serviceType,
		&payment.Gateway,
		&gatewayOrderID,
		&gatewayPaymentID,
		&gatewaySignature,
		&gatewaySessionID,
		&gatewayPaymentMethod,
		&gatewayPaidAt,
		&checkoutURL,
		&utr,
		&failureReason,
		&payment.ReceiptDeliveryStatus,
		&payment.ReceiptDeliveryAttempts,
		&deliveryNextAt,
		&deliveryLastErr,
		&payment.CreatedAt,
		&payment.UpdatedAt,
	)
	if err != nil {
		return err
	}

	payment.ServiceType = stringPtrFromNull(serviceType)
	payment.GatewayOrderID = stringPtrFromNull(gatewayOrderID)
	payment.GatewayPaymentID = stringPtrFromNull(gatewayPaymentID)
	payment.GatewaySignature = stringPtrFromNull(gatewaySignature)
	payment.GatewaySessionID = stringPtrFromNull(gatewaySessionID)
	payment.GatewayPaymentMethod = stringPtrFromNull(gatewayPaymentMethod)
	payment.GatewayPaidAt = timePtrFromNull(gatewayPaidAt)
	payment.CheckoutURL = stringPtrFromNull(checkoutURL)
	payment.UTR = stringPtrFromNull(utr)
	payment.FailureReason = stringPtrFromNull(failureReason)
	payment.ReceiptDeliveryNextAt = timePtrFromNull(deliveryNextAt)
	payment.ReceiptDeliveryLastErr = stringPtrFromNull(deliveryLastErr)

	return nil
}
