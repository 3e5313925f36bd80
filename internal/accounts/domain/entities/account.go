package entities

import (
	"errors"
	"time"
)

// Ошибки домена учетной записи.
var (
	ErrEmptyAccountID   = errors.New("account ID cannot be empty")
	ErrInvalidEmail     = errors.New("invalid email format")
	ErrPasswordTooShort = errors.New("password must contain at least 8 characters")
	ErrAccountNotFound  = errors.New("account not found")
)

// Account представляет основную сущность домена учетной записи.
type Account struct {
	ID           string
	Email        string
	Username     string
	FirstName    string
	LastName     string
	PasswordHash string
	IsActive     bool
	IsStaff      bool
	IsSuperuser  bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
