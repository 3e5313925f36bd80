package app

import (
	"context"
	"errors"
	"fmt"

	"goaccounts/internal/accounts/domain/entities"
	"goaccounts/internal/accounts/domain/services"
	"goaccounts/internal/accounts/ports/api"
	"goaccounts/internal/accounts/ports/repositories"
	svc "goaccounts/internal/accounts/ports/services"
	"goaccounts/pkg/logger"

	"go.uber.org/zap"
)

const (
	methodLogin = "Login"

	msgLoginAttempt        = "login attempt"
	msgLoginNonExistent    = "login attempt with non-existent email"
	msgLoginInactive       = "login attempt for inactive account"
	msgInvalidPasswordAuth = "invalid password provided"
	msgAccountLoggedIn     = "account logged in successfully"
	msgTokenIssued         = "access token issued"

	msgErrFindingAccount    = "error finding account by email"
	msgErrVerifyingPassword = "error verifying password"
	msgErrIssueToken        = "failed to issue access token"

	errCtxInvalidCredentials = "invalid credentials"
	errCtxFindingAccount     = "finding account"
	errCtxVerifyingPassword  = "verifying password"
	errCtxIssuingToken       = "issuing token"
)

// AuthUseCaseImpl реализует интерфейс AuthUseCase.
type AuthUseCaseImpl struct {
	accountRepo repositories.AccountRepository
	passwordSvc svc.PasswordService
	tokenSvc    svc.TokenService
}

// NewAuthUseCase создает новый экземпляр сервиса аутентификации.
func NewAuthUseCase(
	accountRepo repositories.AccountRepository,
	passwordSvc svc.PasswordService,
	tokenSvc svc.TokenService,
) api.AuthUseCase {
	return &AuthUseCaseImpl{
		accountRepo: accountRepo,
		passwordSvc: passwordSvc,
		tokenSvc:    tokenSvc,
	}
}

// Login аутентифицирует учетную запись по email и паролю и выдает токен доступа.
// Несуществующий email и неверный пароль дают одинаковую ошибку,
// чтобы исключить перечисление учетных записей.
func (a *AuthUseCaseImpl) Login(ctx context.Context, email, password string) (*services.AccessToken, error) {
	log := logger.Log(ctx).With(zap.String("method", methodLogin))
	log.Debug(ctx, msgLoginAttempt)

	account, err := a.accountRepo.FindByEmail(ctx, NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, entities.ErrAccountNotFound) {
			log.Debug(ctx, msgLoginNonExistent)
			return nil, fmt.Errorf("%s: %w", errCtxInvalidCredentials, services.ErrInvalidCredentials)
		}
		log.Error(ctx, msgErrFindingAccount, zap.Error(err))
		return nil, fmt.Errorf("%s: %w", errCtxFindingAccount, err)
	}

	if !account.IsActive {
		log.Debug(ctx, msgLoginInactive, zap.String("accountID", account.ID))
		return nil, fmt.Errorf("%s: %w", errCtxInvalidCredentials, services.ErrInvalidCredentials)
	}

	valid, err := a.passwordSvc.Verify(ctx, password, account.PasswordHash)
	if err != nil {
		log.Error(ctx, msgErrVerifyingPassword, zap.Error(err), zap.String("accountID", account.ID))
		return nil, fmt.Errorf("%s: %w", errCtxVerifyingPassword, err)
	}
	if !valid {
		log.Debug(ctx, msgInvalidPasswordAuth, zap.String("accountID", account.ID))
		return nil, fmt.Errorf("%s: %w", errCtxInvalidCredentials, services.ErrInvalidCredentials)
	}

	log.Info(ctx, msgAccountLoggedIn, zap.String("accountID", account.ID))

	token, expiresAt, err := a.tokenSvc.GenerateAccessToken(ctx, account.ID)
	if err != nil {
		log.Error(ctx, msgErrIssueToken, zap.Error(err), zap.String("accountID", account.ID))
		return nil, fmt.Errorf("%s: %w", errCtxIssuingToken, services.ErrTokenIssueFailed)
	}

	log.Debug(ctx, msgTokenIssued, zap.String("accountID", account.ID))

	return &services.AccessToken{
		AccountID: account.ID,
		Token:     token,
		ExpiresAt: expiresAt,
	}, nil
}
