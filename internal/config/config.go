package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"
)

const (
	// DefaultTokenTTL keeps issued tokens valid for thirty days.
	DefaultTokenTTL = 30 * 24 * time.Hour

	// DefaultBcryptCost is the work factor applied to new password hashes.
	DefaultBcryptCost = 10

	defaultAddr = ":8080"
)

// Config carries every process-wide setting. It is read once at startup and
// passed explicitly into constructors; nothing reads the environment after
// Load returns.
type Config struct {
	Addr        string
	PostgresDSN string
	AuthSecret  string
	TokenTTL    time.Duration
	BcryptCost  int
	Environment string
}

// Production reports whether error detail must be suppressed in responses.
func (c Config) Production() bool {
	return strings.EqualFold(c.Environment, "production")
}

// Load reads configuration from the environment. A .env file in the working
// directory is merged in first when present (development convenience; real
// deployments set variables directly).
//
// The signing secret has no fallback on purpose: starting without one would
// mean every deployment shares a guessable key.
func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := Config{
		Addr:        envOr("LODGIA_ADDR", defaultAddr),
		PostgresDSN: os.Getenv("LODGIA_PG_DSN"),
		AuthSecret:  strings.TrimSpace(os.Getenv("LODGIA_AUTH_SECRET")),
		TokenTTL:    DefaultTokenTTL,
		BcryptCost:  DefaultBcryptCost,
		Environment: envOr("LODGIA_ENV", "development"),
	}

	if cfg.AuthSecret == "" {
		return Config{}, errors.New("LODGIA_AUTH_SECRET is required")
	}

	if raw := os.Getenv("LODGIA_TOKEN_TTL"); raw != "" {
		ttl, err := time.ParseDuration(raw)
		if err != nil {
			return Config{}, fmt.Errorf("parse LODGIA_TOKEN_TTL: %w", err)
		}
		if ttl <= 0 {
			return Config{}, errors.New("LODGIA_TOKEN_TTL must be positive")
		}
		cfg.TokenTTL = ttl
	}

	if raw := os.Getenv("LODGIA_BCRYPT_COST"); raw != "" {
		cost, err := strconv.Atoi(raw)
		if err != nil {
			return Config{}, fmt.Errorf("parse LODGIA_BCRYPT_COST: %w", err)
		}
		if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
			return Config{}, fmt.Errorf("LODGIA_BCRYPT_COST must be between %d and %d", bcrypt.MinCost, bcrypt.MaxCost)
		}
		cfg.BcryptCost = cost
	}

	return cfg, nil
}

func envOr(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}
