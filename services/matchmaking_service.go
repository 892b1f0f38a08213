package services

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"champlink-platform/metrics"
	"champlink-platform/models"
	"champlink-platform/storage"
)

// MatchmakingService owns the real matchmaking queue: joining, leaving,
// pairing and result reporting. Queue state lives in Redis, matches and
// player stats in Postgres.
type MatchmakingService struct {
	DB    *gorm.DB
	Queue *storage.QueueStore
	Log   *zap.Logger

	// MaxRatingDiff is the initial skill window for pairing; it widens as
	// players wait.
	MaxRatingDiff int

	// GameModes the stats endpoint and the pairing worker iterate over.
	GameModes []string
}

func NewMatchmakingService(db *gorm.DB, queue *storage.QueueStore, log *zap.Logger, maxRatingDiff int, gameModes []string) *MatchmakingService {
	if maxRatingDiff <= 0 {
		maxRatingDiff = 200
	}
	if len(gameModes) == 0 {
		gameModes = []string{"classic", "1v1"}
	}
	return &MatchmakingService{DB: db, Queue: queue, Log: log, MaxRatingDiff: maxRatingDiff, GameModes: gameModes}
}

type matchmakingRequest struct {
	Action       string `json:"action"`
	UserID       uint   `json:"userId"`
	GameMode     string `json:"gameMode"`
	MatchID      string `json:"matchId"`
	WinnerID     uint   `json:"winnerId"`
	Player1Score int    `json:"player1Score"`
	Player2Score int    `json:"player2Score"`
	Duration     int    `json:"duration"`
}

type opponentPayload struct {
	UserID      uint    `json:"userId"`
	Username    string  `json:"username"`
	DisplayName string  `json:"displayName"`
	Level       int     `json:"level"`
	Avatar      *string `json:"avatar"`
	SkillRating int     `json:"skillRating"`
}

// Dispatch routes a matchmaking request by its action field.
func (s *MatchmakingService) Dispatch(c *fiber.Ctx) error {
	var req matchmakingRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	switch req.Action {
	case "join_queue":
		return s.joinQueue(c, req)
	case "leave_queue":
		return s.leaveQueue(c, req)
	case "check_match":
		return s.checkMatch(c, req)
	case "finish_match":
		return s.finishMatch(c, req)
	default:
		return c.Status(400).JSON(fiber.Map{"error": "Invalid action"})
	}
}

func (s *MatchmakingService) joinQueue(c *fiber.Ctx, req matchmakingRequest) error {
	if req.UserID == 0 {
		return c.Status(400).JSON(fiber.Map{"error": "User ID is required"})
	}
	gameMode := req.GameMode
	if gameMode == "" {
		gameMode = "classic"
	}

	var user models.User
	if err := s.DB.First(&user, req.UserID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(404).JSON(fiber.Map{"error": "User not found"})
		}
		return c.Status(500).JSON(fiber.Map{"error": "database error"})
	}

	ctx := c.UserContext()
	if _, err := s.Queue.Ticket(ctx, user.ID); err == nil {
		return c.Status(409).JSON(fiber.Map{"error": "Already in queue"})
	} else if !errors.Is(err, storage.ErrNotQueued) {
		return c.Status(500).JSON(fiber.Map{"error": "queue unavailable"})
	}

	ticket := &models.QueueTicket{
		UserID:      user.ID,
		GameMode:    gameMode,
		SkillRating: user.SkillRating(),
		JoinedAt:    time.Now(),
	}
	if err := s.Queue.Enqueue(ctx, ticket); err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "failed to join queue"})
	}
	s.refreshQueueDepth(ctx, gameMode)

	candidates, err := s.Queue.Candidates(ctx, gameMode,
		ticket.SkillRating-s.MaxRatingDiff, ticket.SkillRating+s.MaxRatingDiff, 32)
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "failed to search for opponents"})
	}

	opponent := pickOpponent(candidates, ticket)
	if opponent == nil {
		return c.JSON(fiber.Map{
			"message": "Added to queue, searching for opponent...",
			"status":  "searching",
		})
	}

	match, opponentUser, err := s.createMatch(ctx, ticket, opponent)
	if err != nil {
		s.Log.Error("failed to create match", zap.Error(err))
		return c.Status(500).JSON(fiber.Map{"error": "failed to create match"})
	}

	return c.JSON(fiber.Map{
		"message": "Match found!",
		"matchId": match.MatchID,
		"opponent": opponentPayload{
			UserID:      opponentUser.ID,
			Username:    opponentUser.Username,
			DisplayName: opponentUser.DisplayName,
			Level:       opponentUser.Level,
			Avatar:      opponentUser.AvatarURL,
			SkillRating: opponent.SkillRating,
		},
		"status": "match_found",
	})
}

func (s *MatchmakingService) leaveQueue(c *fiber.Ctx, req matchmakingRequest) error {
	if req.UserID == 0 {
		return c.Status(400).JSON(fiber.Map{"error": "User ID is required"})
	}

	ctx := c.UserContext()
	ticket, err := s.Queue.Ticket(ctx, req.UserID)
	if err == nil {
		if err := s.Queue.Remove(ctx, req.UserID); err != nil {
			return c.Status(500).JSON(fiber.Map{"error": "failed to leave queue"})
		}
		s.refreshQueueDepth(ctx, ticket.GameMode)
	}

	return c.JSON(fiber.Map{"message": "Left queue successfully"})
}

func (s *MatchmakingService) checkMatch(c *fiber.Ctx, req matchmakingRequest) error {
	if req.MatchID == "" {
		return c.Status(400).JSON(fiber.Map{"error": "Match ID is required"})
	}

	var match models.Match
	err := s.DB.Preload("Player1").Preload("Player2").
		Where("match_id = ?", req.MatchID).First(&match).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return c.Status(404).JSON(fiber.Map{"error": "Match not found"})
	}
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "database error"})
	}

	return c.JSON(fiber.Map{
		"matchId":  match.MatchID,
		"gameMode": match.GameMode,
		"status":   match.Status,
		"players": fiber.Map{
			"player1": playerSummary(match.Player1, match.Player1ID, match.Player1Score),
			"player2": playerSummary(match.Player2, match.Player2ID, match.Player2Score),
		},
		"winnerId":  match.WinnerID,
		"createdAt": match.CreatedAt,
	})
}

func playerSummary(u *models.User, id uint, score int) fiber.Map {
	summary := fiber.Map{"id": id, "score": score}
	if u != nil {
		summary["username"] = u.Username
		summary["displayName"] = u.DisplayName
	}
	return summary
}

// MatchPoints computes the point awards for a finished match: the winner
// gets a base award plus a bonus per round played, the loser always keeps
// at least one point for participating.
func MatchPoints(player1Score, player2Score int) (winner, loser int) {
	const basePoints = 10
	rounds := player1Score + player2Score
	winner = basePoints + rounds*2
	loser = rounds
	if loser < 1 {
		loser = 1
	}
	return winner, loser
}

func (s *MatchmakingService) finishMatch(c *fiber.Ctx, req matchmakingRequest) error {
	if req.MatchID == "" || req.WinnerID == 0 {
		return c.Status(400).JSON(fiber.Map{"error": "Match ID and winner ID are required"})
	}

	var match models.Match
	err := s.DB.Where("match_id = ?", req.MatchID).First(&match).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return c.Status(404).JSON(fiber.Map{"error": "Match not found"})
	}
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "database error"})
	}

	if match.Status == models.MatchCompleted {
		return c.Status(409).JSON(fiber.Map{"error": "Match already completed"})
	}
	if req.WinnerID != match.Player1ID && req.WinnerID != match.Player2ID {
		return c.Status(400).JSON(fiber.Map{"error": "Winner is not part of this match"})
	}

	loserID := match.Player1ID
	if req.WinnerID == match.Player1ID {
		loserID = match.Player2ID
	}
	winnerPoints, loserPoints := MatchPoints(req.Player1Score, req.Player2Score)

	now := time.Now()
	err = s.DB.Transaction(func(tx *gorm.DB) error {
		updates := map[string]any{
			"status":           models.MatchCompleted,
			"winner_id":        req.WinnerID,
			"player1_score":    req.Player1Score,
			"player2_score":    req.Player2Score,
			"points_awarded":   winnerPoints,
			"duration_seconds": req.Duration,
			"finished_at":      now,
		}
		if err := tx.Model(&models.Match{}).Where("id = ?", match.ID).Updates(updates).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.User{}).Where("id = ?", req.WinnerID).
			Updates(map[string]any{
				"wins":   gorm.Expr("wins + 1"),
				"points": gorm.Expr("points + ?", winnerPoints),
			}).Error; err != nil {
			return err
		}
		return tx.Model(&models.User{}).Where("id = ?", loserID).
			Updates(map[string]any{
				"losses": gorm.Expr("losses + 1"),
				"points": gorm.Expr("points + ?", loserPoints),
			}).Error
	})
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "failed to finish match"})
	}

	metrics.MatchesFinished.Inc()
	s.Log.Info("match finished",
		zap.String("match_id", match.MatchID),
		zap.Uint("winner_id", req.WinnerID),
	)

	return c.JSON(fiber.Map{
		"message":  "Match completed successfully",
		"winnerId": req.WinnerID,
		"pointsAwarded": fiber.Map{
			"winner": winnerPoints,
			"loser":  loserPoints,
		},
	})
}

// Status serves GET requests: per-user queue status with ?user_id, global
// queue stats otherwise.
func (s *MatchmakingService) Status(c *fiber.Ctx) error {
	ctx := c.UserContext()

	if id := c.QueryInt("user_id"); id > 0 {
		userID := uint(id)
		ticket, err := s.Queue.Ticket(ctx, userID)
		if err == nil {
			return c.JSON(fiber.Map{
				"inQueue":     true,
				"gameMode":    ticket.GameMode,
				"skillRating": ticket.SkillRating,
				"joinedAt":    ticket.JoinedAt,
			})
		}
		if !errors.Is(err, storage.ErrNotQueued) {
			return c.Status(500).JSON(fiber.Map{"error": "queue unavailable"})
		}
		return s.pendingMatchStatus(c, userID)
	}

	return s.queueStats(c)
}

// pendingMatchStatus lets a user who already left the queue discover a
// match the background pairing worker created for them.
func (s *MatchmakingService) pendingMatchStatus(c *fiber.Ctx, userID uint) error {
	var match models.Match
	err := s.DB.Preload("Player1").Preload("Player2").
		Where("status = ? AND (player1_id = ? OR player2_id = ?)", models.MatchWaiting, userID, userID).
		Order("created_at DESC").First(&match).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return c.JSON(fiber.Map{"inQueue": false})
	}
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "database error"})
	}

	opponent := match.Player1
	if match.Player1ID == userID {
		opponent = match.Player2
	}
	payload := fiber.Map{
		"inQueue": false,
		"status":  "match_found",
		"matchId": match.MatchID,
	}
	if opponent != nil {
		payload["opponent"] = opponentPayload{
			UserID:      opponent.ID,
			Username:    opponent.Username,
			DisplayName: opponent.DisplayName,
			Level:       opponent.Level,
			Avatar:      opponent.AvatarURL,
			SkillRating: opponent.SkillRating(),
		}
	}
	return c.JSON(payload)
}

func (s *MatchmakingService) queueStats(c *fiber.Ctx) error {
	ctx := c.UserContext()

	var totalInQueue int64
	for _, mode := range s.GameModes {
		size, err := s.Queue.Size(ctx, mode)
		if err != nil {
			return c.Status(500).JSON(fiber.Map{"error": "queue unavailable"})
		}
		totalInQueue += size
	}

	var activeMatches, matchesToday int64
	if err := s.DB.Model(&models.Match{}).
		Where("status = ?", models.MatchInProgress).Count(&activeMatches).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "database error"})
	}
	today := time.Now().Truncate(24 * time.Hour)
	if err := s.DB.Model(&models.Match{}).
		Where("status = ? AND created_at >= ?", models.MatchCompleted, today).
		Count(&matchesToday).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "database error"})
	}

	return c.JSON(fiber.Map{
		"totalInQueue":  totalInQueue,
		"activeMatches": activeMatches,
		"matchesToday":  matchesToday,
	})
}

// pickOpponent returns the compatible candidate with the closest skill
// rating, oldest ticket first on ties. The requesting user is skipped.
func pickOpponent(candidates []models.QueueTicket, self *models.QueueTicket) *models.QueueTicket {
	var best *models.QueueTicket
	bestDiff := 0
	for i := range candidates {
		cand := &candidates[i]
		if cand.UserID == self.UserID || cand.GameMode != self.GameMode {
			continue
		}
		diff := cand.SkillRating - self.SkillRating
		if diff < 0 {
			diff = -diff
		}
		if best == nil || diff < bestDiff ||
			(diff == bestDiff && cand.JoinedAt.Before(best.JoinedAt)) {
			best = cand
			bestDiff = diff
		}
	}
	return best
}

// ratingWindow widens the acceptable skill gap as a player waits: +50
// every 30 seconds, capped at 1000.
func (s *MatchmakingService) ratingWindow(waitTime time.Duration) int {
	window := s.MaxRatingDiff + int(waitTime.Seconds())/30*50
	if window > 1000 {
		window = 1000
	}
	return window
}

// createMatch persists a match for the two tickets and removes both from
// the queue. Returns the match and the opponent's user row.
func (s *MatchmakingService) createMatch(ctx context.Context, a, b *models.QueueTicket) (*models.Match, *models.User, error) {
	var opponent models.User
	if err := s.DB.First(&opponent, b.UserID).Error; err != nil {
		return nil, nil, err
	}

	match := &models.Match{
		MatchID:   uuid.NewString()[:8],
		GameMode:  a.GameMode,
		Status:    models.MatchWaiting,
		Player1ID: a.UserID,
		Player2ID: b.UserID,
	}
	if err := s.DB.Create(match).Error; err != nil {
		return nil, nil, err
	}

	for _, userID := range []uint{a.UserID, b.UserID} {
		if err := s.Queue.Remove(ctx, userID); err != nil {
			s.Log.Warn("failed to remove matched user from queue",
				zap.Uint("user_id", userID),
				zap.Error(err),
			)
		}
	}
	s.refreshQueueDepth(ctx, a.GameMode)

	metrics.MatchesCreated.WithLabelValues(a.GameMode).Inc()
	s.Log.Info("match created",
		zap.String("match_id", match.MatchID),
		zap.String("game_mode", match.GameMode),
		zap.Uint("player1_id", match.Player1ID),
		zap.Uint("player2_id", match.Player2ID),
	)
	return match, &opponent, nil
}

// PairWaiting matches up players left waiting in one game mode's queue.
// Called periodically by the queue worker so a single-shot join that
// returned "searching" still ends in a match.
func (s *MatchmakingService) PairWaiting(ctx context.Context, gameMode string) (int, error) {
	tickets, err := s.Queue.All(ctx, gameMode, 256)
	if err != nil {
		return 0, err
	}
	if len(tickets) < 2 {
		s.refreshQueueDepth(ctx, gameMode)
		return 0, nil
	}

	sort.Slice(tickets, func(i, j int) bool {
		return tickets[i].SkillRating < tickets[j].SkillRating
	})

	created := 0
	for i := 0; i+1 < len(tickets); {
		a, b := &tickets[i], &tickets[i+1]
		window := s.ratingWindow(time.Since(a.JoinedAt))
		if w := s.ratingWindow(time.Since(b.JoinedAt)); w > window {
			window = w
		}
		if b.SkillRating-a.SkillRating > window {
			i++
			continue
		}
		if _, _, err := s.createMatch(ctx, a, b); err != nil {
			s.Log.Error("failed to pair waiting players",
				zap.String("game_mode", gameMode),
				zap.Error(err),
			)
			i++
			continue
		}
		created++
		i += 2
	}
	return created, nil
}

func (s *MatchmakingService) refreshQueueDepth(ctx context.Context, gameMode string) {
	size, err := s.Queue.Size(ctx, gameMode)
	if err != nil {
		return
	}
	metrics.QueueDepth.WithLabelValues(gameMode).Set(float64(size))
}
