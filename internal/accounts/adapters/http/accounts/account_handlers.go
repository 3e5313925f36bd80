// Package accounts содержит HTTP обработчики сервиса учетных записей.
package accounts

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gofiber/fiber/v3"
	"go.uber.org/zap"

	"goaccounts/internal/accounts/adapters/http/middleware"
	"goaccounts/internal/accounts/app/dto"
	"goaccounts/internal/accounts/domain/entities"
	"goaccounts/internal/accounts/domain/services"
	"goaccounts/internal/accounts/ports/api"
	"goaccounts/pkg/logger"
)

// Константы для логирования.
const (
	LogHandlerRegister      = "accounts handler: register"
	LogHandlerToken         = "accounts handler: token"
	LogHandlerGetProfile    = "accounts handler: get profile"
	LogHandlerUpdateProfile = "accounts handler: update profile"

	ErrorInvalidRequest       = "invalid request"
	ErrorMissingCredentials   = "email and password are required"
	ErrorFailedToServeRequest = "failed to serve request"
	ErrorInternalServer       = "internal server error"
	ErrorMethodNotAllowed     = "method not allowed"
	ErrorUnauthenticated      = "unauthenticated"
)

// Машиночитаемые виды ошибок в теле ответа.
const (
	kindInvalidRequest     = "invalid_request"
	kindInvalidEmail       = "invalid_email"
	kindPasswordTooShort   = "password_too_short"
	kindEmailAlreadyExists = "email_already_exists"
	kindInvalidCredentials = "invalid_credentials"
	kindUnauthenticated    = "unauthenticated"
	kindMethodNotAllowed   = "method_not_allowed"
	kindInternalError      = "internal_error"
)

// Вспомогательная функция для обработки ошибок HTTP.
func sendErrorResponse(ctx fiber.Ctx, statusCode int, kind, message string) error {
	if err := ctx.Status(statusCode).JSON(fiber.Map{
		"error": message,
		"kind":  kind,
	}); err != nil {
		return fmt.Errorf("error sending response: %w", err)
	}
	return nil
}

// mapDomainError переводит доменную ошибку в статус и вид ответа.
// Ошибки хранилища наружу не раскрываются.
func mapDomainError(err error) (int, string, string) {
	switch {
	case errors.Is(err, entities.ErrInvalidEmail):
		return http.StatusBadRequest, kindInvalidEmail, entities.ErrInvalidEmail.Error()
	case errors.Is(err, entities.ErrPasswordTooShort):
		return http.StatusBadRequest, kindPasswordTooShort, entities.ErrPasswordTooShort.Error()
	case errors.Is(err, services.ErrEmailAlreadyExists):
		return http.StatusBadRequest, kindEmailAlreadyExists, services.ErrEmailAlreadyExists.Error()
	case errors.Is(err, services.ErrInvalidCredentials):
		return http.StatusBadRequest, kindInvalidCredentials, services.ErrInvalidCredentials.Error()
	case errors.Is(err, entities.ErrAccountNotFound), errors.Is(err, entities.ErrEmptyAccountID):
		return http.StatusUnauthorized, kindUnauthenticated, ErrorUnauthenticated
	default:
		return http.StatusInternalServerError, kindInternalError, ErrorInternalServer
	}
}

// Handler содержит HTTP обработчики учетных записей.
type Handler struct {
	accountService api.AccountUseCase
	authService    api.AuthUseCase
	profileService api.ProfileUseCase
}

// NewHandler создает новый экземпляр обработчика учетных записей.
func NewHandler(accountService api.AccountUseCase, authService api.AuthUseCase, profileService api.ProfileUseCase) *Handler {
	return &Handler{
		accountService: accountService,
		authService:    authService,
		profileService: profileService,
	}
}

// Register обрабатывает запрос на создание новой учетной записи.
func (h *Handler) Register(ctx fiber.Ctx) error {
	requestCtx := ctx.Context()
	log := logger.Log(requestCtx)
	log.Info(requestCtx, LogHandlerRegister)

	var req dto.RegisterRequest
	if err := ctx.Bind().JSON(&req); err != nil {
		log.Debug(requestCtx, ErrorInvalidRequest, zap.Error(err))
		return sendErrorResponse(ctx, http.StatusBadRequest, kindInvalidRequest, ErrorInvalidRequest)
	}

	if req.Email == "" || req.Password == "" {
		return sendErrorResponse(ctx, http.StatusBadRequest, kindInvalidRequest, ErrorMissingCredentials)
	}

	account, err := h.accountService.Register(requestCtx, req.Email, req.Password, req.Username, req.FirstName, req.LastName)
	if err != nil {
		log.Debug(requestCtx, ErrorFailedToServeRequest, zap.Error(err))
		status, kind, message := mapDomainError(err)
		return sendErrorResponse(ctx, status, kind, message)
	}

	response := dto.RegisterResponse{
		ID:        account.ID,
		Email:     account.Email,
		Username:  account.Username,
		FirstName: account.FirstName,
		LastName:  account.LastName,
	}

	if err := ctx.Status(http.StatusCreated).JSON(response); err != nil {
		return fmt.Errorf("sending response: %w", err)
	}
	return nil
}

// Token обрабатывает запрос на выдачу токена доступа.
// Отсутствующие поля и неверные учетные данные дают одинаковый статус 400.
func (h *Handler) Token(ctx fiber.Ctx) error {
	requestCtx := ctx.Context()
	log := logger.Log(requestCtx)
	log.Info(requestCtx, LogHandlerToken)

	var req dto.TokenRequest
	if err := ctx.Bind().JSON(&req); err != nil {
		log.Debug(requestCtx, ErrorInvalidRequest, zap.Error(err))
		return sendErrorResponse(ctx, http.StatusBadRequest, kindInvalidRequest, ErrorInvalidRequest)
	}

	if req.Email == "" || req.Password == "" {
		return sendErrorResponse(ctx, http.StatusBadRequest, kindInvalidRequest, ErrorMissingCredentials)
	}

	token, err := h.authService.Login(requestCtx, req.Email, req.Password)
	if err != nil {
		log.Debug(requestCtx, ErrorFailedToServeRequest, zap.Error(err))
		status, kind, message := mapDomainError(err)
		return sendErrorResponse(ctx, status, kind, message)
	}

	if err := ctx.Status(http.StatusOK).JSON(dto.TokenResponse{Access: token.Token}); err != nil {
		return fmt.Errorf("sending response: %w", err)
	}
	return nil
}

// GetProfile обрабатывает запрос на получение профиля вызывающего.
func (h *Handler) GetProfile(ctx fiber.Ctx) error {
	requestCtx := ctx.Context()
	log := logger.Log(requestCtx)
	log.Info(requestCtx, LogHandlerGetProfile)

	accountID, ok := ctx.Locals(middleware.AccountIDKey).(string)
	if !ok || accountID == "" {
		return sendErrorResponse(ctx, http.StatusUnauthorized, kindUnauthenticated, ErrorUnauthenticated)
	}

	profile, err := h.profileService.GetProfile(requestCtx, accountID)
	if err != nil {
		log.Debug(requestCtx, ErrorFailedToServeRequest, zap.Error(err))
		status, kind, message := mapDomainError(err)
		return sendErrorResponse(ctx, status, kind, message)
	}

	if err := ctx.Status(http.StatusOK).JSON(profile); err != nil {
		return fmt.Errorf("sending response: %w", err)
	}
	return nil
}

// UpdateProfile обрабатывает частичное обновление профиля вызывающего.
func (h *Handler) UpdateProfile(ctx fiber.Ctx) error {
	requestCtx := ctx.Context()
	log := logger.Log(requestCtx)
	log.Info(requestCtx, LogHandlerUpdateProfile)

	accountID, ok := ctx.Locals(middleware.AccountIDKey).(string)
	if !ok || accountID == "" {
		return sendErrorResponse(ctx, http.StatusUnauthorized, kindUnauthenticated, ErrorUnauthenticated)
	}

	var patch dto.ProfileUpdate
	if err := ctx.Bind().JSON(&patch); err != nil {
		log.Debug(requestCtx, ErrorInvalidRequest, zap.Error(err))
		return sendErrorResponse(ctx, http.StatusBadRequest, kindInvalidRequest, ErrorInvalidRequest)
	}

	profile, err := h.profileService.UpdateProfile(requestCtx, accountID, &patch)
	if err != nil {
		log.Debug(requestCtx, ErrorFailedToServeRequest, zap.Error(err))
		status, kind, message := mapDomainError(err)
		return sendErrorResponse(ctx, status, kind, message)
	}

	if err := ctx.Status(http.StatusOK).JSON(profile); err != nil {
		return fmt.Errorf("sending response: %w", err)
	}
	return nil
}

// MethodNotAllowed отвечает 405 на неподдерживаемые методы профиля.
func (h *Handler) MethodNotAllowed(ctx fiber.Ctx) error {
	return sendErrorResponse(ctx, http.StatusMethodNotAllowed, kindMethodNotAllowed, ErrorMethodNotAllowed)
}
