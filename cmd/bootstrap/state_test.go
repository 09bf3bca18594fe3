//go:build unit

package bootstrap_test

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"booking-hold-service/cmd/bootstrap"
	"booking-hold-service/internal/engine"
	"booking-hold-service/internal/pkg/clock"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var bootT0 = time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)

type seedStore struct {
	snapshot *engine.Snapshot
	saves    []*engine.Snapshot
}

func (s *seedStore) Load(context.Context) (*engine.Snapshot, error) { return s.snapshot, nil }
func (s *seedStore) Save(_ context.Context, snap *engine.Snapshot) error {
	s.saves = append(s.saves, snap)
	return nil
}

func TestNewEngineWritesInitialSnapshot(t *testing.T) {
	store := &seedStore{}

	e, err := bootstrap.NewEngine(store, clock.NewMockClock(bootT0), slog.Default())
	require.NoError(t, err)
	require.NotNil(t, e)

	// a first boot persists the empty state before any mutation runs
	require.Len(t, store.saves, 1)
	assert.Equal(t, engine.SnapshotSchemaVersion, store.saves[0].SchemaVersion)
	assert.Empty(t, store.saves[0].Holds)
}

func TestNewEngineRestoresExistingSnapshot(t *testing.T) {
	seed := engine.New(clock.NewMockClock(bootT0))
	_, err := seed.CreateResource(engine.CreateResourceInput{TenantID: "t1", Name: "Studio"})
	require.NoError(t, err)

	store := &seedStore{snapshot: seed.ToSnapshot()}
	e, err := bootstrap.NewEngine(store, clock.NewMockClock(bootT0), slog.Default())
	require.NoError(t, err)

	// an existing snapshot is restored as-is, never rewritten at boot
	assert.Empty(t, store.saves)
	resources := e.ListResources(engine.ResourceFilter{TenantID: "t1"})
	require.Len(t, resources, 1)
	assert.Equal(t, "Studio", resources[0].Name)
}
