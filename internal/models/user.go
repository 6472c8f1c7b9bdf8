package models

import (
	"time"

	"github.com/google/uuid"
)

type User struct {
	ID               uuid.UUID `db:"id"`
	Name             string    `db:"name"`
	Email            string    `db:"email"`
	Password         string    `db:"password"`
	EmailVerified    bool      `db:"email_verified"`
	VerificationCode int       `db:"verification_code"`
	CreatedAt        time.Time `db:"created_at"`
	UpdatedAt        time.Time `db:"updated_at"`
}
