package api

import (
	"context"

	"goaccounts/internal/accounts/domain/entities"
)

// AccountUseCase определяет основной порт для операций создания учетных записей.
type AccountUseCase interface {
	Register(ctx context.Context, email, password, username, firstName, lastName string) (*entities.Account, error)

	CreateSuperuser(ctx context.Context, email, password string) (*entities.Account, error)
}
