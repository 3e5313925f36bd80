package api

import (
	"context"

	"goaccounts/internal/accounts/domain/services"
)

// AuthUseCase определяет основной порт для операций аутентификации.
type AuthUseCase interface {
	Login(ctx context.Context, email, password string) (*services.AccessToken, error)
}
