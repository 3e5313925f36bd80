package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"goaccounts/internal/accounts/app/dto"
	"goaccounts/internal/accounts/domain/entities"
	"goaccounts/internal/accounts/domain/services"
	"goaccounts/internal/accounts/ports/api"
	"goaccounts/internal/accounts/ports/cache"
	"goaccounts/internal/accounts/ports/repositories"
	svc "goaccounts/internal/accounts/ports/services"
	"goaccounts/pkg/logger"

	"go.uber.org/zap"
)

const (
	methodGetProfile    = "GetProfile"
	methodUpdateProfile = "UpdateProfile"

	profileCacheKeyPrefix = "profile:"

	msgRequestingProfile     = "requesting account profile"
	msgEmptyAccountID        = "empty account ID provided"
	msgProfileFromCache      = "profile served from cache"
	msgProfileRetrieved      = "account profile successfully retrieved"
	msgUpdatingProfile       = "updating account profile"
	msgProfileUpdated        = "account profile successfully updated"
	msgEmailTakenByOther     = "email already used by another account"
	msgErrFindingByID        = "failed to find account by ID"
	msgErrCheckingEmail      = "failed to check email uniqueness"
	msgErrHashingNewPassword = "failed to hash new password"
	msgErrUpdatingAccount    = "failed to update account"
	msgWarnCacheRead         = "profile cache read failed"
	msgWarnCacheWrite        = "profile cache write failed"
	msgWarnCacheInvalidate   = "profile cache invalidation failed"

	errCtxValidatingAccountID = "validating account ID"
	errCtxFetchingProfile     = "fetching account profile"
	errCtxValidatingNewEmail  = "validating new email"
	errCtxCheckingNewEmail    = "checking new email"
	errCtxEmailTaken          = "email already registered"
	errCtxValidatingNewPass   = "validating new password"
	errCtxHashingNewPass      = "hashing new password"
	errCtxUpdatingAccount     = "updating account"
)

// ProfileUseCaseImpl реализует интерфейс ProfileUseCase.
type ProfileUseCaseImpl struct {
	accountRepo  repositories.AccountRepository
	passwordSvc  svc.PasswordService
	profileCache cache.Cache
}

// NewProfileUseCase создает новый экземпляр сервиса профиля.
// Кэш может быть nil, тогда чтение идет напрямую из репозитория.
func NewProfileUseCase(
	accountRepo repositories.AccountRepository,
	passwordSvc svc.PasswordService,
	profileCache cache.Cache,
) api.ProfileUseCase {
	return &ProfileUseCaseImpl{
		accountRepo:  accountRepo,
		passwordSvc:  passwordSvc,
		profileCache: profileCache,
	}
}

// GetProfile возвращает профиль владельца учетной записи.
// Представление содержит только email, username, first_name и last_name.
func (p *ProfileUseCaseImpl) GetProfile(ctx context.Context, accountID string) (*dto.ProfileView, error) {
	log := logger.Log(ctx).With(zap.String("method", methodGetProfile), zap.String("accountID", accountID))
	log.Debug(ctx, msgRequestingProfile)

	if accountID == "" {
		log.Debug(ctx, msgEmptyAccountID)
		return nil, fmt.Errorf("%s: %w", errCtxValidatingAccountID, entities.ErrEmptyAccountID)
	}

	if view := p.readCachedProfile(ctx, log, accountID); view != nil {
		log.Debug(ctx, msgProfileFromCache)
		return view, nil
	}

	account, err := p.accountRepo.FindByID(ctx, accountID)
	if err != nil {
		log.Error(ctx, msgErrFindingByID, zap.Error(err))
		return nil, fmt.Errorf("%s: %w", errCtxFetchingProfile, err)
	}

	view := profileViewOf(account)
	p.writeCachedProfile(ctx, log, accountID, view)

	log.Info(ctx, msgProfileRetrieved)
	return view, nil
}

// UpdateProfile применяет разреженный набор полей к учетной записи владельца.
// Все присланные поля валидируются до записи; изменение атомарно.
func (p *ProfileUseCaseImpl) UpdateProfile(ctx context.Context, accountID string, patch *dto.ProfileUpdate) (*dto.ProfileView, error) {
	log := logger.Log(ctx).With(zap.String("method", methodUpdateProfile), zap.String("accountID", accountID))
	log.Debug(ctx, msgUpdatingProfile)

	if accountID == "" {
		log.Debug(ctx, msgEmptyAccountID)
		return nil, fmt.Errorf("%s: %w", errCtxValidatingAccountID, entities.ErrEmptyAccountID)
	}

	account, err := p.accountRepo.FindByID(ctx, accountID)
	if err != nil {
		log.Error(ctx, msgErrFindingByID, zap.Error(err))
		return nil, fmt.Errorf("%s: %w", errCtxFetchingProfile, err)
	}

	if patch == nil {
		return profileViewOf(account), nil
	}

	updated := *account

	if patch.Email != nil {
		if err := validateEmail(*patch.Email); err != nil {
			return nil, fmt.Errorf("%s: %w", errCtxValidatingNewEmail, err)
		}
		normalized := NormalizeEmail(*patch.Email)
		if normalized != account.Email {
			other, err := p.accountRepo.FindByEmail(ctx, normalized)
			if err != nil && !errors.Is(err, entities.ErrAccountNotFound) {
				log.Error(ctx, msgErrCheckingEmail, zap.Error(err))
				return nil, fmt.Errorf("%s: %w", errCtxCheckingNewEmail, err)
			}
			if other != nil && other.ID != account.ID {
				log.Debug(ctx, msgEmailTakenByOther)
				return nil, fmt.Errorf("%s: %w", errCtxEmailTaken, services.ErrEmailAlreadyExists)
			}
		}
		updated.Email = normalized
	}

	if patch.Password != nil {
		if err := validatePassword(*patch.Password); err != nil {
			return nil, fmt.Errorf("%s: %w", errCtxValidatingNewPass, err)
		}
		hash, err := p.passwordSvc.Hash(ctx, *patch.Password)
		if err != nil {
			log.Error(ctx, msgErrHashingNewPassword, zap.Error(err))
			return nil, fmt.Errorf("%s: %w", errCtxHashingNewPass, err)
		}
		updated.PasswordHash = hash
	}

	if patch.Username != nil {
		updated.Username = *patch.Username
	}
	if patch.FirstName != nil {
		updated.FirstName = *patch.FirstName
	}
	if patch.LastName != nil {
		updated.LastName = *patch.LastName
	}

	saved, err := p.accountRepo.Update(ctx, &updated)
	if err != nil {
		// Гонка по уникальности email закрывается ограничением хранилища.
		if errors.Is(err, services.ErrEmailAlreadyExists) {
			log.Debug(ctx, msgEmailTakenByOther)
			return nil, fmt.Errorf("%s: %w", errCtxEmailTaken, services.ErrEmailAlreadyExists)
		}
		log.Error(ctx, msgErrUpdatingAccount, zap.Error(err))
		return nil, fmt.Errorf("%s: %w", errCtxUpdatingAccount, err)
	}

	p.invalidateCachedProfile(ctx, log, accountID)

	log.Info(ctx, msgProfileUpdated)
	return profileViewOf(saved), nil
}

// profileViewOf строит представление профиля по разрешенному списку полей.
func profileViewOf(account *entities.Account) *dto.ProfileView {
	return &dto.ProfileView{
		Email:     account.Email,
		Username:  account.Username,
		FirstName: account.FirstName,
		LastName:  account.LastName,
	}
}

// Ошибки кэша не влияют на результат запроса.
func (p *ProfileUseCaseImpl) readCachedProfile(ctx context.Context, log *logger.Logger, accountID string) *dto.ProfileView {
	if p.profileCache == nil {
		return nil
	}

	raw, err := p.profileCache.Get(ctx, profileCacheKeyPrefix+accountID)
	if err != nil {
		log.Warn(ctx, msgWarnCacheRead, zap.Error(err))
		return nil
	}
	if raw == "" {
		return nil
	}

	var view dto.ProfileView
	if err := json.Unmarshal([]byte(raw), &view); err != nil {
		log.Warn(ctx, msgWarnCacheRead, zap.Error(err))
		return nil
	}
	return &view
}

func (p *ProfileUseCaseImpl) writeCachedProfile(ctx context.Context, log *logger.Logger, accountID string, view *dto.ProfileView) {
	if p.profileCache == nil {
		return
	}

	raw, err := json.Marshal(view)
	if err != nil {
		log.Warn(ctx, msgWarnCacheWrite, zap.Error(err))
		return
	}
	if err := p.profileCache.Set(ctx, profileCacheKeyPrefix+accountID, string(raw), 0); err != nil {
		log.Warn(ctx, msgWarnCacheWrite, zap.Error(err))
	}
}

func (p *ProfileUseCaseImpl) invalidateCachedProfile(ctx context.Context, log *logger.Logger, accountID string) {
	if p.profileCache == nil {
		return
	}

	if err := p.profileCache.Delete(ctx, profileCacheKeyPrefix+accountID); err != nil {
		log.Warn(ctx, msgWarnCacheInvalidate, zap.Error(err))
	}
}
