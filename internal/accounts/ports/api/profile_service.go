package api

import (
	"context"

	"goaccounts/internal/accounts/app/dto"
)

// ProfileUseCase определяет основной порт для операций с профилем учетной записи.
type ProfileUseCase interface {
	GetProfile(ctx context.Context, accountID string) (*dto.ProfileView, error)

	UpdateProfile(ctx context.Context, accountID string, patch *dto.ProfileUpdate) (*dto.ProfileView, error)
}
