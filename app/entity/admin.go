package entity

import "time"

type Admin struct {
	ID uint64

	Username     string
	Email        string
	PasswordHash string
	Role         string
	IsActive     bool

	LastLoginAt *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
