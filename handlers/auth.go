package handlers

import (
	"champlink-platform/services"

	"github.com/gofiber/fiber/v2"
)

func SetupAuthRoutes(app *fiber.App, authService *services.AuthService) {
	// Single endpoint dispatched on the action field (login/register).
	app.Post("/api/auth", authService.Dispatch)
}
