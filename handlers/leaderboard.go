package handlers

import (
	"champlink-platform/services"

	"github.com/gofiber/fiber/v2"
)

func SetupLeaderboardRoutes(app *fiber.App, lbService *services.LeaderboardService) {
	app.Get("/api/leaderboard", lbService.Leaderboard)
	app.Get("/api/stats", lbService.Stats)
}
