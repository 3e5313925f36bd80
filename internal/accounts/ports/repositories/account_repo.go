package repositories

import (
	"context"

	"goaccounts/internal/accounts/domain/entities"
)

// AccountRepository определяет интерфейс для операций сохранения учетных записей.
type AccountRepository interface {
	Create(ctx context.Context, account *entities.Account) (*entities.Account, error)

	FindByID(ctx context.Context, id string) (*entities.Account, error)

	FindByEmail(ctx context.Context, email string) (*entities.Account, error)

	Update(ctx context.Context, account *entities.Account) (*entities.Account, error)
}
