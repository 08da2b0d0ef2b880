package model

import "time"

type User struct {
	ID         int       `db:"id" json:"id"`
	TelegramID *int64    `db:"telegram_id" json:"telegram_id"`
	Email      string    `db:"email" json:"email"`
	Username   string    `db:"username" json:"username"`
	FirstName  string    `db:"first_name" json:"first_name"`
	LastName   string    `db:"last_name" json:"last_name"`
	Role       string    `db:"role" json:"role"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}
