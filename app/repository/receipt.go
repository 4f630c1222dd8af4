package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/vibast-solutions/ms-go-receipts/app/entity"
)

var (
	ErrReceiptNotFound      = errors.New("receipt not found")
	ErrReceiptAlreadyExists = errors.New("receipt already exists for payment")
)

const receiptColumns = `r.id, r.payment_id, r.receipt_number, r.storage_key, r.generated_at`

type ReceiptFilter struct {
	Search string
	Page   int32
	Limit  int32
}

type ReceiptRepository struct {
	db DBTX
}

func NewReceiptRepository(db DBTX) *ReceiptRepository {
	return &ReceiptRepository{db: db}
}

func (r *ReceiptRepository) Create(ctx context.Context, receipt *entity.Receipt) error {
	query := `
		INSERT INTO receipts (payment_id, receipt_number, storage_key, generated_at)
		VALUES (?, ?, ?, ?)
	`

	result, err := r.db.ExecContext(ctx, query,
		receipt.PaymentID,
		receipt.ReceiptNumber,
		nullableStringValue(receipt.StorageKey),
		receipt.GeneratedAt,
	)
	if err != nil {
		if isDuplicateEntryError(err) {
			return ErrReceiptAlreadyExists
		}
		return err
	}

	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	receipt.ID = uint64(id)
	return nil
}

func (r *ReceiptRepository) UpdateStorageKey(ctx context.Context, id uint64, storageKey string) error {
	result, err := r.db.ExecContext(ctx, `UPDATE receipts SET storage_key = ? WHERE id = ?`, storageKey, id)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrReceiptNotFound
	}
	return nil
}

func (r *ReceiptRepository) FindByID(ctx context.Context, id uint64) (*entity.Receipt, error) {
	query := `SELECT ` + receiptColumns + ` FROM receipts r WHERE r.id = ?`
	return r.findOne(ctx, query, id)
}

func (r *ReceiptRepository) FindByPaymentID(ctx context.Context, paymentID uint64) (*entity.Receipt, error) {
	query := `SELECT ` + receiptColumns + ` FROM receipts r WHERE r.payment_id = ? LIMIT 1`
	return r.findOne(ctx, query, paymentID)
}

func (r *ReceiptRepository) List(ctx context.Context, filter ReceiptFilter) ([]*entity.Receipt, int64, error) {
	from := `
		FROM receipts r
		JOIN payments p ON p.id = r.payment_id
		JOIN users u ON u.id = p.user_id
	`
	args := make([]interface{}, 0, 5)
	if strings.TrimSpace(filter.Search) != "" {
		pattern := likePattern(filter.Search)
		from += " WHERE r.receipt_number LIKE ? OR u.name LIKE ? OR u.email LIKE ?"
		args = append(args, pattern, pattern, pattern)
	}

	var total int64
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*)`+from, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `SELECT ` + receiptColumns + from + ` ORDER BY r.generated_at DESC, r.id DESC LIMIT ? OFFSET ?`
	args = append(args, filter.Limit, pageOffset(filter.Page, filter.Limit))

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	receipts := make([]*entity.Receipt, 0)
	for rows.Next() {
		item := &entity.Receipt{}
		if err := scanReceipt(rows, item); err != nil {
			return nil, 0, err
		}
		receipts = append(receipts, item)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	return receipts, total, nil
}

func (r *ReceiptRepository) Count(ctx context.Context) (int64, error) {
	var total int64
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM receipts`).Scan(&total); err != nil {
		return 0, err
	}
	return total, nil
}

func (r *ReceiptRepository) findOne(ctx context.Context, query string, args ...interface{}) (*entity.Receipt, error) {
	receipt := &entity.Receipt{}
	if err := scanReceipt(r.db.QueryRowContext(ctx, query, args...), receipt); err == sql.ErrNoRows {
		return nil, nil
	} else if err != nil {
		return nil, err
	}
	return receipt, nil
}

func scanReceipt(scanner rowScanner, receipt *entity.Receipt) error {
	var storageKey sql.NullString
	if err := scanner.Scan(
		&receipt.ID,
		&receipt.PaymentID,
		&receipt.ReceiptNumber,
		&storageKey,
		&receipt.GeneratedAt,
	); err != nil {
		return err
	}
	receipt.StorageKey = stringPtrFromNull(storageKey)
	return nil
}
