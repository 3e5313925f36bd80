// Package http содержит компоненты для HTTP сервера.
package http

import (
	"github.com/gofiber/fiber/v3"

	"goaccounts/internal/accounts/adapters/http/accounts"
	"goaccounts/internal/accounts/adapters/http/middleware"
	"goaccounts/internal/accounts/ports/api"
	svc "goaccounts/internal/accounts/ports/services"
)

// SetupRouter настраивает маршрутизацию для HTTP сервера.
func SetupRouter(app *fiber.App, accountService api.AccountUseCase, authService api.AuthUseCase, profileService api.ProfileUseCase, tokenService svc.TokenService) {
	handler := accounts.NewHandler(accountService, authService, profileService)

	// Middleware для всех запросов.
	app.Use(middleware.NewLoggerMiddleware())
	app.Use(middleware.NewRecoveryMiddleware())

	// Публичные маршруты.
	app.Post("/create", handler.Register)
	app.Post("/token", handler.Token)

	// Профиль требует предъявителя токена.
	profile := app.Group("/profile")
	profile.Use(middleware.NewAuthMiddleware(tokenService))
	profile.Get("", handler.GetProfile)
	profile.Patch("", handler.UpdateProfile)

	// Профиль поддерживает только чтение и частичное обновление.
	profile.Post("", handler.MethodNotAllowed)
	profile.Put("", handler.MethodNotAllowed)
	profile.Delete("", handler.MethodNotAllowed)

	// Обработчик для несуществующих маршрутов.
	app.Use(func(c fiber.Ctx) error {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Route not found",
		})
	})
}
