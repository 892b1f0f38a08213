package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config is the service configuration, read from the environment with an
// optional .env file for local development.
type Config struct {
	Port           int    `envconfig:"PORT" default:"5200"`
	DatabaseURL    string `envconfig:"DATABASE_URL" required:"true"`
	RedisAddr      string `envconfig:"REDIS_ADDR" default:"localhost:6379"`
	RedisPassword  string `envconfig:"REDIS_PASSWORD"`
	RedisDB        int    `envconfig:"REDIS_DB" default:"0"`
	AllowedOrigins string `envconfig:"ALLOWED_ORIGINS" default:"http://localhost:3000"`

	GameModes     []string      `envconfig:"GAME_MODES" default:"classic,1v1"`
	QueueInterval time.Duration `envconfig:"QUEUE_INTERVAL" default:"10s"`
	MaxRatingDiff int           `envconfig:"MAX_RATING_DIFF" default:"200"`
}

// Load reads the configuration. A missing .env file is not an error.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := new(Config)
	if err := envconfig.Process("champlink", cfg); err != nil {
		return nil, fmt.Errorf("failed to read configuration: %w", err)
	}
	return cfg, nil
}

// Addr is the listen address for the HTTP server.
func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}
