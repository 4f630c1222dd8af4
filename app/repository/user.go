package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/vibast-solutions/ms-go-receipts/app/entity"
)

var (
	ErrUserNotFound      = errors.New("user not found")
	ErrUserAlreadyExists = errors.New("user already exists")
)

const userColumns = `id, name, email, phone, mobile, address, created_at, updated_at`

type UserFilter struct {
	Search string
	Page   int32
	Limit  int32
}

type UserRepository struct {
	db DBTX
}

func NewUserRepository(db DBTX) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) Create(ctx context.Context, user *entity.User) error {
	query := `
		INSERT INTO users (name, email, phone, mobile, address, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	result, err := r.db.ExecContext(ctx, query,
		user.Name,
		user.Email,
		user.Phone,
		user.Mobile,
		user.Address,
		user.CreatedAt,
		user.UpdatedAt,
	)
	if err != nil {
		if isDuplicateEntryError(err) {
			return ErrUserAlreadyExists
		}
		return err
	}

	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	user.ID = uint64(id)
	return nil
}

func (r *UserRepository) Update(ctx context.Context, user *entity.User) error {
	query := `
		UPDATE users SET
			name = ?,
			phone = ?,
			mobile = ?,
			address = ?,
			updated_at = ?
		WHERE id = ?
	`

	result, err := r.db.ExecContext(ctx, query,
		user.Name,
		user.Phone,
		user.Mobile,
		user.Address,
		user.UpdatedAt,
		user.ID,
	)
	if err != nil {
		return err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrUserNotFound
	}
	return nil
}

func (r *UserRepository) FindByID(ctx context.Context, id uint64) (*entity.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = ?`
	return r.findOne(ctx, query, id)
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = ? LIMIT 1`
	return r.findOne(ctx, query, email)
}

func (r *UserRepository) FindByMobile(ctx context.Context, mobile string) (*entity.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE mobile = ? ORDER BY id ASC LIMIT 1`
	return r.findOne(ctx, query, mobile)
}

func (r *UserRepository) List(ctx context.Context, filter UserFilter) ([]*entity.User, int64, error) {
	where := ""
	args := make([]interface{}, 0, 5)
	if strings.TrimSpace(filter.Search) != "" {
		pattern := likePattern(filter.Search)
		where = " WHERE name LIKE ? OR email LIKE ? OR mobile LIKE ?"
		args = append(args, pattern, pattern, pattern)
	}

	var total int64
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `SELECT ` + userColumns + ` FROM users` + where + ` ORDER BY id DESC LIMIT ? OFFSET ?`
	args = append(args, filter.Limit, pageOffset(filter.Page, filter.Limit))

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	users := make([]*entity.User, 0)
	for rows.Next() {
		user := &entity.User{}
		if err := scanUser(rows, user); err != nil {
			return nil, 0, err
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	return users, total, nil
}

func (r *UserRepository) Count(ctx context.Context) (int64, error) {
	var total int64
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&total); err != nil {
		return 0, err
	}
	return total, nil
}

func (r *UserRepository) findOne(ctx context.Context, query string, args ...interface{}) (*entity.User, error) {
	user := &entity.User{}
	if err := scanUser(r.db.QueryRowContext(ctx, query, args...), user); err == sql.ErrNoRows {
		return nil, nil
	} else if err != nil {
		return nil, err
	}
	return user, nil
}

func scanUser(scanner rowScanner, user *entity.User) error {
	return scanner.Scan(
		&user.ID,
		&user.Name,
		&user.Email,
		&user.Phone,
		&user.Mobile,
		&user.Address,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
}
