// Package middleware содержит промежуточное ПО для HTTP обработчиков.
package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v3"
	"go.uber.org/zap"

	svc "goaccounts/internal/accounts/ports/services"
	"goaccounts/pkg/logger"
)

// Константы для логирования.
const (
	LogAuthMiddleware = "auth middleware"

	ErrorNoAuthHeader       = "no authorization header provided"
	ErrorInvalidTokenFormat = "invalid token format"
	ErrorInvalidToken       = "invalid or expired token"

	// AccountIDKey - ключ locals с ID аутентифицированной учетной записи.
	AccountIDKey = "accountID"

	bearerPrefix = "Bearer "

	kindUnauthenticated = "unauthenticated"
)

// unauthenticated отправляет единый ответ 401 без различения причин отказа.
func unauthenticated(ctx fiber.Ctx, message string) error {
	return ctx.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
		"error": message,
		"kind":  kindUnauthenticated,
	})
}

// NewAuthMiddleware создает промежуточное ПО, которое разрешает предъявителя
// токена в ID учетной записи. Любой дефект токена дает отказ: анонимного
// вызывающего не существует.
func NewAuthMiddleware(tokenSvc svc.TokenService) fiber.Handler {
	return func(ctx fiber.Ctx) error {
		requestCtx := ctx.Context()
		log := logger.Log(requestCtx).With(zap.String("middleware", "auth"))
		log.Debug(requestCtx, LogAuthMiddleware)

		authHeader := ctx.Get("Authorization")
		if authHeader == "" {
			log.Debug(requestCtx, ErrorNoAuthHeader)
			return unauthenticated(ctx, ErrorNoAuthHeader)
		}

		if !strings.HasPrefix(authHeader, bearerPrefix) {
			log.Debug(requestCtx, ErrorInvalidTokenFormat)
			return unauthenticated(ctx, ErrorInvalidTokenFormat)
		}

		accountID, err := tokenSvc.ValidateAccessToken(requestCtx, strings.TrimPrefix(authHeader, bearerPrefix))
		if err != nil {
			log.Debug(requestCtx, ErrorInvalidToken, zap.Error(err))
			return unauthenticated(ctx, ErrorInvalidToken)
		}

		ctx.Locals(AccountIDKey, accountID)

		return ctx.Next()
	}
}
