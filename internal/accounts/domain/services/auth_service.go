package services

import (
	"errors"
	"time"
)

// Ошибки домена аутентификации.
var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrEmailAlreadyExists = errors.New("account with this email already exists")
	ErrTokenIssueFailed   = errors.New("failed to issue access token")
)

// AccessToken представляет выданный токен доступа.
type AccessToken struct {
	AccountID string
	Token     string
	ExpiresAt time.Time
}
