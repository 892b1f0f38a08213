package services

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
	"go.uber.org/zap"

	"champlink-platform/metrics"
	"champlink-platform/simulate"
)

// SimulationService exposes the simulated matchmaking engine over HTTP.
// Each session owns one engine; sessions idle past their TTL are evicted
// and their timers shut down with them.
type SimulationService struct {
	Log      *zap.Logger
	Config   simulate.Config
	sessions *cache.Cache
}

const (
	sessionTTL     = 10 * time.Minute
	sessionCleanup = time.Minute
)

func NewSimulationService(log *zap.Logger) *SimulationService {
	sessions := cache.New(sessionTTL, sessionCleanup)
	sessions.OnEvicted(func(id string, value any) {
		if engine, ok := value.(*simulate.Engine); ok {
			engine.Close()
		}
	})
	return &SimulationService{
		Log:      log,
		Config:   simulate.DefaultConfig(),
		sessions: sessions,
	}
}

// Create opens a new simulated search session and returns its id. The game
// mode is cosmetic; the simulated sequence is the same for every mode.
func (s *SimulationService) Create(c *fiber.Ctx) error {
	var req struct {
		GameMode string `json:"gameMode"`
	}
	_ = c.BodyParser(&req)
	if req.GameMode == "" {
		req.GameMode = "classic"
	}

	id := uuid.NewString()
	engine := simulate.NewEngine(s.Config)
	engine.Open()
	s.sessions.SetDefault(id, engine)

	metrics.SimulationSessions.Inc()
	s.Log.Info("simulation session opened",
		zap.String("session_id", id),
		zap.String("game_mode", req.GameMode),
	)

	return c.Status(201).JSON(fiber.Map{
		"sessionId": id,
		"gameMode":  req.GameMode,
		"steps":     simulate.Steps,
	})
}

// Snapshot returns the current session state plus the active step
// descriptor. Reading a session refreshes its TTL.
func (s *SimulationService) Snapshot(c *fiber.Ctx) error {
	id := c.Params("id")
	value, ok := s.sessions.Get(id)
	if !ok {
		return c.Status(404).JSON(fiber.Map{"error": "Session not found"})
	}
	engine := value.(*simulate.Engine)
	s.sessions.SetDefault(id, engine)

	state := engine.Snapshot()
	payload := fiber.Map{
		"sessionId": id,
		"state":     state,
	}
	if state.CurrentStep >= 0 && state.CurrentStep < len(simulate.Steps) {
		payload["step"] = simulate.Steps[state.CurrentStep]
	}
	return c.JSON(payload)
}

// Close tears a session down immediately.
func (s *SimulationService) Close(c *fiber.Ctx) error {
	id := c.Params("id")
	value, ok := s.sessions.Get(id)
	if !ok {
		return c.Status(404).JSON(fiber.Map{"error": "Session not found"})
	}
	value.(*simulate.Engine).Close()
	s.sessions.Delete(id)

	s.Log.Info("simulation session closed", zap.String("session_id", id))
	return c.JSON(fiber.Map{"message": "Session closed"})
}

// Shutdown closes every live session. Called on server shutdown.
func (s *SimulationService) Shutdown() {
	for id, item := range s.sessions.Items() {
		if engine, ok := item.Object.(*simulate.Engine); ok {
			engine.Close()
		}
		s.sessions.Delete(id)
	}
}
