package entity

import "time"

type User struct {
	ID uint64

	Name    string
	Email   string
	Phone   string
	Mobile  string
	Address string

	CreatedAt time.Time
	UpdatedAt time.Time
}
