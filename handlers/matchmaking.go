package handlers

import (
	"champlink-platform/services"

	"github.com/gofiber/fiber/v2"
)

func SetupMatchmakingRoutes(app *fiber.App, mmService *services.MatchmakingService) {
	// POST dispatches on action (join_queue/leave_queue/check_match/finish_match).
	app.Post("/api/matchmaking", mmService.Dispatch)

	// GET with ?user_id returns that user's queue status, without it global
	// queue stats.
	app.Get("/api/matchmaking", mmService.Status)
}
