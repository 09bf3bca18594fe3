package bootstrap

import (
	"booking-hold-service/cmd/bootstrap/components"

	"go.uber.org/fx"
)

var Module = fx.Options(
	ConfigModule,
	StateModule,
	AuthModule,
	components.UseCaseModule,
	components.HandlerModule,
)
