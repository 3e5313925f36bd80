package app

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"goaccounts/internal/accounts/domain/entities"
	"goaccounts/internal/accounts/domain/services"
	"goaccounts/internal/accounts/ports/api"
	"goaccounts/internal/accounts/ports/repositories"
	svc "goaccounts/internal/accounts/ports/services"
	"goaccounts/pkg/logger"

	"go.uber.org/zap"
)

const (
	methodRegister        = "Register"
	methodCreateSuperuser = "CreateSuperuser"

	msgStartRegistration     = "starting account registration"
	msgStartSuperuserCreate  = "starting superuser creation"
	msgInvalidEmailFormat    = "invalid email format"
	msgInvalidPassword       = "invalid password"
	msgEmailExists           = "account with this email already exists"
	msgAccountRegistered     = "account registered successfully"
	msgSuperuserCreated      = "superuser created successfully"
	msgErrCheckExistingEmail = "failed to check existing account"
	msgErrHashPassword       = "failed to hash password"
	msgErrCreateAccount      = "failed to create account"

	errCtxValidatingEmail    = "validating email"
	errCtxValidatingPassword = "validating password"
	errCtxCheckingAccount    = "checking existing account"
	errCtxEmailRegistered    = "email already registered"
	errCtxHashingPassword    = "hashing password"
	errCtxCreatingAccount    = "creating account"
)

// AccountUseCaseImpl реализует интерфейс AccountUseCase.
type AccountUseCaseImpl struct {
	accountRepo repositories.AccountRepository
	passwordSvc svc.PasswordService
}

// NewAccountUseCase создает новый экземпляр сервиса учетных записей.
func NewAccountUseCase(
	accountRepo repositories.AccountRepository,
	passwordSvc svc.PasswordService,
) api.AccountUseCase {
	return &AccountUseCaseImpl{
		accountRepo: accountRepo,
		passwordSvc: passwordSvc,
	}
}

// Register создает новую учетную запись с предоставленными учетными данными.
func (a *AccountUseCaseImpl) Register(ctx context.Context, email, password, username, firstName, lastName string) (*entities.Account, error) {
	log := logger.Log(ctx).With(zap.String("method", methodRegister))
	log.Debug(ctx, msgStartRegistration)

	account := &entities.Account{
		Email:     email,
		Username:  username,
		FirstName: firstName,
		LastName:  lastName,
		IsActive:  true,
	}

	created, err := a.create(ctx, log, account, password)
	if err != nil {
		return nil, err
	}

	log.Info(ctx, msgAccountRegistered, zap.String("accountID", created.ID))
	return created, nil
}

// CreateSuperuser создает учетную запись с правами персонала и суперпользователя.
func (a *AccountUseCaseImpl) CreateSuperuser(ctx context.Context, email, password string) (*entities.Account, error) {
	log := logger.Log(ctx).With(zap.String("method", methodCreateSuperuser))
	log.Debug(ctx, msgStartSuperuserCreate)

	// Флаг суперпользователя всегда влечет флаг персонала.
	account := &entities.Account{
		Email:       email,
		IsActive:    true,
		IsStaff:     true,
		IsSuperuser: true,
	}

	created, err := a.create(ctx, log, account, password)
	if err != nil {
		return nil, err
	}

	log.Info(ctx, msgSuperuserCreated, zap.String("accountID", created.ID))
	return created, nil
}

// create валидирует учетные данные и сохраняет новую учетную запись.
func (a *AccountUseCaseImpl) create(ctx context.Context, log *logger.Logger, account *entities.Account, password string) (*entities.Account, error) {
	if err := validateEmail(account.Email); err != nil {
		log.Debug(ctx, msgInvalidEmailFormat, zap.Error(err))
		return nil, fmt.Errorf("%s: %w", errCtxValidatingEmail, err)
	}
	account.Email = NormalizeEmail(account.Email)

	if err := validatePassword(password); err != nil {
		log.Debug(ctx, msgInvalidPassword, zap.Error(err))
		return nil, fmt.Errorf("%s: %w", errCtxValidatingPassword, err)
	}

	existing, err := a.accountRepo.FindByEmail(ctx, account.Email)
	if err != nil && !errors.Is(err, entities.ErrAccountNotFound) {
		log.Error(ctx, msgErrCheckExistingEmail, zap.Error(err))
		return nil, fmt.Errorf("%s: %w", errCtxCheckingAccount, err)
	}
	if existing != nil {
		log.Debug(ctx, msgEmailExists)
		return nil, fmt.Errorf("%s: %w", errCtxEmailRegistered, services.ErrEmailAlreadyExists)
	}

	hashedPassword, err := a.passwordSvc.Hash(ctx, password)
	if err != nil {
		log.Error(ctx, msgErrHashPassword, zap.Error(err))
		return nil, fmt.Errorf("%s: %w", errCtxHashingPassword, err)
	}
	account.PasswordHash = hashedPassword

	created, err := a.accountRepo.Create(ctx, account)
	if err != nil {
		// Уникальный индекс по email закрывает гонку одновременных регистраций.
		if errors.Is(err, services.ErrEmailAlreadyExists) {
			log.Debug(ctx, msgEmailExists)
			return nil, fmt.Errorf("%s: %w", errCtxEmailRegistered, services.ErrEmailAlreadyExists)
		}
		log.Error(ctx, msgErrCreateAccount, zap.Error(err))
		return nil, fmt.Errorf("%s: %w", errCtxCreatingAccount, err)
	}

	return created, nil
}

// NormalizeEmail приводит email к каноническому виду: обрезка пробелов и нижний регистр.
// Операция идемпотентна и применяется при записи и при поиске.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Валидация email: непустая локальная часть, один '@', домен с точкой.
func validateEmail(email string) error {
	if email == "" {
		return entities.ErrInvalidEmail
	}

	emailRegex := regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
	if !emailRegex.MatchString(strings.TrimSpace(email)) {
		return entities.ErrInvalidEmail
	}

	return nil
}

// Валидация пароля.
func validatePassword(password string) error {
	if len(password) < services.MinPasswordLength {
		return entities.ErrPasswordTooShort
	}

	return nil
}

// GetValidateEmailFunc экспортирует функцию validateEmail для тестирования.
func GetValidateEmailFunc() func(string) error {
	return validateEmail
}

// GetValidatePasswordFunc экспортирует функцию validatePassword для тестирования.
func GetValidatePasswordFunc() func(string) error {
	return validatePassword
}
