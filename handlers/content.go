package handlers

import (
	"champlink-platform/services"

	"github.com/gofiber/fiber/v2"
)

func SetupContentRoutes(app *fiber.App, contentService *services.ContentService) {
	// Reads are multiplexed on ?resource=, writes on the body's resource
	// and action fields.
	app.Get("/api/content", contentService.Get)
	app.Post("/api/content", contentService.Post)
}
