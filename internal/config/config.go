// internal/config/config.go
//
// Process configuration, read from the environment (and a local .env file
// when present).
//
// Environment variables:
//   PORT=5175                  HTTP listen port
//   LOG_LEVEL=info             zerolog level
//   APP_ENV=development        "production" switches cookies to Secure/SameSite=None
//   CLIENT_ORIGIN=...          single origin allowed by CORS
//   DATABASE_PATH=./data/funfair.db
//   JWT_SECRET, JWT_EXPIRES_DAYS=14
//   API_KEY, GEMINI_MODEL      assistant credentials and model
//   REDIS_ADDR, REDIS_PASSWORD, REDIS_DB, SESSION_TTL=24h
//   CURRICULUM_FILE            optional curriculum override
//   REQUEST_TIMEOUT=30s, ADVANCE_DELAY=1500ms
//   DAILY_SALT

package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
)

const devSecret = "dev_secret_change_me"

type Config struct {
	Port         string `env:"PORT" envDefault:"5175"`
	LogLevel     string `env:"LOG_LEVEL" envDefault:"info"`
	AppEnv       string `env:"APP_ENV" envDefault:"development"`
	ClientOrigin string `env:"CLIENT_ORIGIN" envDefault:"http://localhost:5173"`

	DatabasePath   string `env:"DATABASE_PATH" envDefault:"./data/funfair.db"`
	JWTSecret      string `env:"JWT_SECRET" envDefault:"dev_secret_change_me"`
	JWTExpiresDays int    `env:"JWT_EXPIRES_DAYS" envDefault:"14"`

	APIKey      string `env:"API_KEY"`
	GeminiModel string `env:"GEMINI_MODEL" envDefault:"gemini-3-flash-preview"`

	RedisAddr     string        `env:"REDIS_ADDR"`
	RedisPassword string        `env:"REDIS_PASSWORD"`
	RedisDB       int           `env:"REDIS_DB" envDefault:"0"`
	SessionTTL    time.Duration `env:"SESSION_TTL" envDefault:"24h"`

	CurriculumFile string        `env:"CURRICULUM_FILE"`
	RequestTimeout time.Duration `env:"REQUEST_TIMEOUT" envDefault:"30s"`
	AdvanceDelay   time.Duration `env:"ADVANCE_DELAY" envDefault:"1500ms"`
	DailySalt      string        `env:"DAILY_SALT" envDefault:"local_dev_salt"`
}

// Load reads .env (if any) and parses the environment.
func Load() (Config, error) {
	_ = godotenv.Load()
	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Production() bool { return c.AppEnv == "production" }

// Validate rejects settings the server cannot run with.
func (c Config) Validate() error {
	var errs []error
	if _, err := zerolog.ParseLevel(c.LogLevel); err != nil {
		errs = append(errs, fmt.Errorf("LOG_LEVEL: %w", err))
	}
	if c.JWTExpiresDays <= 0 {
		errs = append(errs, errors.New("JWT_EXPIRES_DAYS must be positive"))
	}
	if c.Production() && (c.JWTSecret == "" || c.JWTSecret == devSecret) {
		errs = append(errs, errors.New("JWT_SECRET must be set in production"))
	}
	if c.RequestTimeout <= 0 {
		errs = append(errs, errors.New("REQUEST_TIMEOUT must be positive"))
	}
	if c.AdvanceDelay < 0 {
		errs = append(errs, errors.New("ADVANCE_DELAY must not be negative"))
	}
	if c.SessionTTL < 0 {
		errs = append(errs, errors.New("SESSION_TTL must not be negative"))
	}
	return errors.Join(errs...)
}

// SetupLogging applies LOG_LEVEL to the global zerolog logger.
func (c Config) SetupLogging() {
	if lvl, err := zerolog.ParseLevel(c.LogLevel); err == nil {
		zerolog.SetGlobalLevel(lvl)
	}
}
