package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	mysqlDriver "github.com/go-sql-driver/mysql"
)

type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func isDuplicateEntryError(err error) bool {
	var mysqlErr *mysqlDriver.MySQLError
	return errors.As(err, &mysqlErr) && mysqlErr.Number == 1062
}

// duplicateKeyName extracts the index name from a 1062 message such as
// "Duplicate entry 'x' for key 'payments.uq_payments_receipt_number'".
func duplicateKeyName(err error) string {
	var mysqlErr *mysqlDriver.MySQLError
	if !errors.As(err, &mysqlErr) || mysqlErr.Number != 1062 {
		return ""
	}
	msg := mysqlErr.Message
	idx := strings.LastIndex(msg, "for key ")
	if idx < 0 {
		return ""
	}
	key := strings.Trim(msg[idx+len("for key "):], "'` ")
	if dot := strings.LastIndex(key, "."); dot >= 0 {
		key = key[dot+1:]
	}
	return key
}

func nullableStringValue(v *string) interface{} {
	if v == nil {
		return nil
	}
	return *v
}

func nullableUint64Value(v *uint64) interface{} {
	if v == nil {
		return nil
	}
	return *v
}

func nullableTimeValue(v *time.Time) interface{} {
	if v == nil {
		return nil
	}
	return *v
}

func stringPtrFromNull(v sql.NullString) *string {
	if !v.Valid {
		return nil
	}
	s := v.String
	return &s
}

func uint64PtrFromNull(v sql.NullInt64) *uint64 {
	if !v.Valid {
		return nil
	}
	n := uint64(v.Int64)
	return &n
}

func timePtrFromNull(v sql.NullTime) *time.Time {
	if !v.Valid {
		return nil
	}
	t := v.Time
	return &t
}

func likePattern(search string) string {
	replacer := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + replacer.Replace(strings.TrimSpace(search)) + "%"
}

func pageOffset(page, limit int32) int32 {
	if page <= 1 {
		return 0
	}
	return (page - 1) * limit
}
