package components

import (
	"booking-hold-service/internal/pkg/clock"
	"booking-hold-service/internal/usecase"

	"go.uber.org/fx"
)

var UseCaseModule = fx.Module("usecase",
	fx.Provide(
		clock.NewRealClock,
		usecase.NewCommands,
		usecase.NewQueries,
	),
)
