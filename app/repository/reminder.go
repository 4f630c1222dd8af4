package repository

import (
	"context"
	"database/sql"

	"github.com/vibast-solutions/ms-go-receipts/app/entity"
)

type ReminderRepository struct {
	db DBTX
}

func NewReminderRepository(db DBTX) *ReminderRepository {
	return &ReminderRepository{db: db}
}

func (r *ReminderRepository) Create(ctx context.Context, reminder *entity.Reminder) error {
	query := `
		INSERT INTO reminders (payment_id, channel, message, status, error, sent_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`

	result, err := r.db.ExecContext(ctx, query,
		reminder.PaymentID,
		reminder.Channel,
		reminder.Message,
		reminder.Status,
		nullableStringValue(reminder.Error),
		reminder.SentAt,
	)
	if err != nil {
		return err
	}

	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	reminder.ID = uint64(id)
	return nil
}

func (r *ReminderRepository) ListByPayment(ctx context.Context, paymentID uint64, limit int32) ([]*entity.Reminder, error) {
	query := `
		SELECT id, payment_id, channel, message, status, error, sent_at
		FROM reminders
		WHERE payment_id = ?
		ORDER BY sent_at DESC, id DESC
		LIMIT ?
	`

	rows, err := r.db.QueryContext(ctx, query, paymentID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	reminders := make([]*entity.Reminder, 0)
	for rows.Next() {
		item := &entity.Reminder{}
		var reminderErr sql.NullString
		if err := rows.Scan(
			&item.ID,
			&item.PaymentID,
			&item.Channel,
			&item.Message,
			&item.Status,
			&reminderErr,
			&item.SentAt,
		); err != nil {
			return nil, err
		}
		item.Error = stringPtrFromNull(reminderErr)
		reminders = append(reminders, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return reminders, nil
}
