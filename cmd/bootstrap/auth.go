package bootstrap

import (
	"time"

	"booking-hold-service/internal/pkg/authtoken"
	"booking-hold-service/internal/pkg/config"

	"go.uber.org/fx"
)

var AuthModule = fx.Module("auth",
	fx.Provide(
		NewTokenService,
	),
)

// NewTokenService returns nil when no secret is configured; the auth
// middleware then accepts only the X-* context headers.
func NewTokenService(cfg config.Config) *authtoken.Service {
	if cfg.Auth.JWTSecret == "" {
		return nil
	}
	return authtoken.NewService(cfg.Auth.JWTSecret, 24*time.Hour)
}
