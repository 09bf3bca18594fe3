package bootstrap

import (
	"context"
	"log/slog"

	"booking-hold-service/internal/engine"
	"booking-hold-service/internal/infra/statestore"
	"booking-hold-service/internal/pkg/clock"
	"booking-hold-service/internal/pkg/config"
	"booking-hold-service/internal/pkg/errs"
	"booking-hold-service/internal/usecase"

	"go.uber.org/fx"
)

var StateModule = fx.Module("state",
	fx.Provide(
		NewStore,
		NewEngine,
		NewGate,
	),
)

func NewStore(lc fx.Lifecycle, cfg config.Config) (usecase.Store, error) {
	if cfg.State.IsPostgres() {
		store, err := statestore.NewPostgresStore(context.Background(), cfg.State.PostgresDSN)
		if err != nil {
			return nil, err
		}
		lc.Append(fx.Hook{
			OnStop: func(_ context.Context) error {
				store.Close()
				return nil
			},
		})
		return store, nil
	}
	return statestore.NewFileStore(cfg.State.File), nil
}

// NewEngine loads the last snapshot so a restart resumes exactly where the
// previous process stopped, id counters included. A first boot writes an empty
// snapshot immediately, so the state location exists before any mutation.
func NewEngine(store usecase.Store, c clock.Clock, logger *slog.Logger) (*engine.Engine, error) {
	ctx := context.Background()
	snapshot, err := store.Load(ctx)
	if err != nil {
		return nil, err
	}
	e, err := engine.NewFromSnapshot(snapshot, c)
	if err != nil {
		return nil, err
	}
	if snapshot == nil {
		if err := store.Save(ctx, e.ToSnapshot()); err != nil {
			return nil, errs.Wrap(err, "failed to write initial snapshot")
		}
		logger.Info("initial snapshot written")
		return e, nil
	}
	logger.Info("engine state restored from snapshot",
		"holds", len(snapshot.Holds), "bookings", len(snapshot.Bookings))
	return e, nil
}

func NewGate(lc fx.Lifecycle, e *engine.Engine, store usecase.Store, logger *slog.Logger) *usecase.Gate {
	gate := usecase.NewGate(e, store, logger)
	lc.Append(fx.Hook{
		OnStart: func(_ context.Context) error {
			gate.Start()
			return nil
		},
		OnStop: func(_ context.Context) error {
			gate.Stop()
			return nil
		},
	})
	return gate
}
