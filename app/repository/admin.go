package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/vibast-solutions/ms-go-receipts/app/entity"
)

var ErrAdminAlreadyExists = errors.New("admin already exists")

type AdminRepository struct {
	db DBTX
}

func NewAdminRepository(db DBTX) *AdminRepository {
	return &AdminRepository{db: db}
}

func (r *AdminRepository) Create(ctx context.Context, admin *entity.Admin) error {
	query := `
		INSERT INTO admins (username, email, password_hash, role, is_active, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	result, err := r.db.ExecContext(ctx, query,
		admin.Username,
		admin.Email,
		admin.PasswordHash,
		admin.Role,
		admin.IsActive,
		admin.CreatedAt,
		admin.UpdatedAt,
	)
	if err != nil {
		if isDuplicateEntryError(err) {
			return ErrAdminAlreadyExists
		}
		return err
	}

	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	admin.ID = uint64(id)
	return nil
}

// FindByIdentifier matches either the username or the email column.
func (r *AdminRepository) FindByIdentifier(ctx context.Context, identifier string) (*entity.Admin, error) {
	query := `
		SELECT id, username, email, password_hash, role, is_active, last_login_at, created_at, updated_at
		FROM admins
		WHERE username = ? OR email = ?
		ORDER BY id ASC
		LIMIT 1
	`

	admin := &entity.Admin{}
	var lastLoginAt sql.NullTime
	err := r.db.QueryRowContext(ctx, query, identifier, identifier).Scan(
		&admin.ID,
		&admin.Username,
		&admin.Email,
		&admin.PasswordHash,
		&admin.Role,
		&admin.IsActive,
		&lastLoginAt,
		&admin.CreatedAt,
		&admin.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	admin.LastLoginAt = timePtrFromNull(lastLoginAt)
	return admin, nil
}

func (r *AdminRepository) TouchLastLogin(ctx context.Context, id uint64, at time.Time) error {
	_, err := r.db.ExecContext(ctx, `UPDATE admins SET last_login_at = ?, updated_at = ? WHERE id = ?`, at, at, id)
	return err
}
