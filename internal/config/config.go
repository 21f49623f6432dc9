package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"golang.org/x/crypto/bcrypt"
)

// DevJWTSecret signs tokens when APP_ENV=dev and no JWT_SECRET is set.
// Never use it outside local development.
const DevJWTSecret = "dev-only-insecure-jwt-secret"

var ErrMissingSecret = errors.New("config: JWT_SECRET is required outside dev")

type Config struct {
	Env         string        `env:"APP_ENV" envDefault:"dev"`
	HTTPPort    string        `env:"HTTP_PORT" envDefault:"8080"`
	JWTSecret   string        `env:"JWT_SECRET"`
	JWTIssuer   string        `env:"JWT_ISSUER" envDefault:"user-directory"`
	TokenTTL    time.Duration `env:"JWT_TTL" envDefault:"30m"`
	BcryptCost  int           `env:"BCRYPT_COST" envDefault:"10"`
	HashWorkers int           `env:"HASH_WORKERS" envDefault:"4"`
	CORSOrigins []string      `env:"CORS_ALLOWED_ORIGINS" envSeparator:"," envDefault:"*"`

	// InsecureSecret is set when DevJWTSecret was substituted.
	InsecureSecret bool `env:"-"`
}

func Load() (Config, error) {
	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return Config{}, fmt.Errorf("config: %w", err)
	}

	if cfg.JWTSecret == "" {
		if cfg.Env != "dev" {
			return Config{}, ErrMissingSecret
		}
		cfg.JWTSecret = DevJWTSecret
		cfg.InsecureSecret = true
	}
	if cfg.BcryptCost < bcrypt.MinCost || cfg.BcryptCost > bcrypt.MaxCost {
		return Config{}, fmt.Errorf("config: BCRYPT_COST %d out of range [%d,%d]", cfg.BcryptCost, bcrypt.MinCost, bcrypt.MaxCost)
	}
	if cfg.TokenTTL <= 0 {
		return Config{}, fmt.Errorf("config: JWT_TTL must be positive, got %s", cfg.TokenTTL)
	}
	if cfg.HashWorkers < 1 {
		return Config{}, fmt.Errorf("config: HASH_WORKERS must be at least 1, got %d", cfg.HashWorkers)
	}
	return cfg, nil
}
