package handlers

import (
	"champlink-platform/services"

	"github.com/gofiber/fiber/v2"
)

func SetupSimulationRoutes(app *fiber.App, simService *services.SimulationService) {
	app.Post("/api/simulate", simService.Create)
	app.Get("/api/simulate/:id", simService.Snapshot)
	app.Delete("/api/simulate/:id", simService.Close)
}
