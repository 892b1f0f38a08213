package main

import (
	"context"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/gofiber/adaptor/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"champlink-platform/config"
	"champlink-platform/handlers"
	"champlink-platform/metrics"
	"champlink-platform/middleware"
	"champlink-platform/models"
	"champlink-platform/services"
	"champlink-platform/storage"
	"champlink-platform/workers"
)

func main() {
	logger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("failed to load configuration", zap.Error(err))
	}

	db, err := gorm.Open(postgres.Open(cfg.DatabaseURL), &gorm.Config{})
	if err != nil {
		logger.Fatal("failed to connect to database", zap.Error(err))
	}

	if err := db.AutoMigrate(
		&models.User{},
		&models.Match{},
		&models.Friend{},
		&models.Message{},
		&models.Challenge{},
		&models.Tournament{},
		&models.TournamentParticipant{},
		&models.NewsItem{},
	); err != nil {
		logger.Fatal("failed to migrate database", zap.Error(err))
	}

	queue, err := storage.NewQueueStore(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, logger)
	if err != nil {
		logger.Fatal("failed to connect to Redis", zap.Error(err))
	}
	defer queue.Close()

	authService := services.NewAuthService(db, logger)
	mmService := services.NewMatchmakingService(db, queue, logger, cfg.MaxRatingDiff, cfg.GameModes)
	contentService := services.NewContentService(db, logger)
	lbService := services.NewLeaderboardService(db, logger)
	simService := services.NewSimulationService(logger)

	app := fiber.New(fiber.Config{
		AppName: "champlink-platform",
	})

	origins := strings.Split(cfg.AllowedOrigins, ",")
	for i, origin := range origins {
		origins[i] = strings.TrimSpace(origin)
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins:     strings.Join(origins, ","),
		AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, X-User-Id",
		AllowCredentials: true,
		MaxAge:           86400,
	}))
	app.Use(middleware.RequestLogger(logger))
	app.Use(middleware.UserContext())

	handlers.SetupAuthRoutes(app, authService)
	handlers.SetupMatchmakingRoutes(app, mmService)
	handlers.SetupContentRoutes(app, contentService)
	handlers.SetupLeaderboardRoutes(app, lbService)
	handlers.SetupSimulationRoutes(app, simService)

	app.Get("/metrics", adaptor.HTTPHandler(metrics.Handler()))
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	queueWorker := workers.NewQueueWorker(mmService, cfg.QueueInterval, logger)
	queueWorker.Start(ctx)

	sched, err := mmService.StartTournamentScheduler()
	if err != nil {
		logger.Fatal("failed to start scheduler", zap.Error(err))
	}

	go func() {
		logger.Info("server listening", zap.String("addr", cfg.Addr()))
		if err := app.Listen(cfg.Addr()); err != nil {
			logger.Error("server stopped", zap.Error(err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")
	_ = sched.Shutdown()
	simService.Shutdown()
	if err := app.Shutdown(); err != nil {
		logger.Error("shutdown error", zap.Error(err))
	}
}
