package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// -----------------------------------------------------------------------------
// Environment variable configuration guidelines:
// - required: Values that differ between environments (state location, security)
// - default: Values common across all environments (port, timeout, etc.)
// -----------------------------------------------------------------------------

type Config struct {
	Server ServerConfig
	State  StateConfig
	CORS   CORSConfig
	Log    LogConfig
	Auth   AuthConfig
}

type ServerConfig struct {
	Port string `envconfig:"PORT" default:"3000"`
}

// StateConfig selects where engine snapshots are persisted. The file driver is
// the default; the postgres driver keeps the same snapshot document in a
// single-row table so the engine can sit in front of a transactional store.
type StateConfig struct {
	Driver      string `envconfig:"STATE_DRIVER" default:"file"`
	File        string `envconfig:"STATE_FILE" default:"data/runtime-state.json"`
	PostgresDSN string `envconfig:"STATE_POSTGRES_DSN"`
}

type CORSConfig struct {
	AllowOrigins     []string      `envconfig:"CORS_ALLOW_ORIGINS" default:"http://localhost:3000,http://localhost:8080"`
	AllowMethods     []string      `envconfig:"CORS_ALLOW_METHODS" default:"GET,POST,PATCH,OPTIONS"`
	AllowHeaders     []string      `envconfig:"CORS_ALLOW_HEADERS" default:"Origin,Content-Type,Accept,Authorization,Idempotency-Key,X-Tenant-ID,X-User-ID,X-User-Role,X-Request-ID"`
	ExposeHeaders    []string      `envconfig:"CORS_EXPOSE_HEADERS" default:"Content-Length"`
	AllowCredentials bool          `envconfig:"CORS_ALLOW_CREDENTIALS" default:"true"`
	MaxAge           time.Duration `envconfig:"CORS_MAX_AGE" default:"12h"`
}

type LogConfig struct {
	Level      string `envconfig:"LOG_LEVEL" default:"info"`
	TimeFormat string `envconfig:"LOG_TIME_FORMAT" default:"2006-01-02 15:04:05.000"`
}

// AuthConfig is optional: with an empty JWTSecret only the X-* context headers
// are honored, matching a deployment behind a trusted gateway.
type AuthConfig struct {
	JWTSecret string `envconfig:"JWT_SECRET"`
}

func (s StateConfig) IsPostgres() bool {
	return s.Driver == "postgres"
}

func LoadConfig() (Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to process env config: %w", err)
	}
	if cfg.State.IsPostgres() && cfg.State.PostgresDSN == "" {
		return Config{}, fmt.Errorf("STATE_POSTGRES_DSN is required when STATE_DRIVER=postgres")
	}
	return cfg, nil
}

func NewTestConfig() Config {
	return Config{
		Server: ServerConfig{
			Port: "8889", // Test port
		},
		State: StateConfig{
			Driver: "file",
			File:   "runtime-state-test.json",
		},
		CORS: CORSConfig{
			AllowOrigins:     []string{"http://localhost:3000"},
			AllowMethods:     []string{"GET", "POST", "PATCH", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		},
		Log: LogConfig{
			Level:      "error", // Error level only for tests
			TimeFormat: "2006-01-02 15:04:05.000",
		},
		Auth: AuthConfig{
			JWTSecret: "test-secret",
		},
	}
}
