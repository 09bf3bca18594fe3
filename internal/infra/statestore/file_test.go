//go:build unit

package statestore_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"booking-hold-service/internal/engine"
	"booking-hold-service/internal/infra/statestore"
	"booking-hold-service/internal/pkg/clock"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileStoreMissingFileMeansEmpty(t *testing.T) {
	store := statestore.NewFileStore(filepath.Join(t.TempDir(), "absent.json"))

	snapshot, err := store.Load(context.Background())
	require.NoError(t, err)
	assert.Nil(t, snapshot)
}

func TestFileStoreRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "state.json")
	store := statestore.NewFileStore(path)

	mc := clock.NewMockClock(time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC))
	e := engine.New(mc)
	_, err := e.CreateResource(engine.CreateResourceInput{TenantID: "t1", Name: "Studio"})
	require.NoError(t, err)
	snapshot := e.ToSnapshot()

	ctx := context.Background()
	require.NoError(t, store.Save(ctx, snapshot))

	loaded, err := store.Load(ctx)
	require.NoError(t, err)
	if diff := cmp.Diff(snapshot, loaded); diff != "" {
		t.Fatalf("snapshot changed through file store (-want +got):\n%s", diff)
	}
}

func TestFileStoreOverwriteLeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	store := statestore.NewFileStore(filepath.Join(dir, "state.json"))

	mc := clock.NewMockClock(time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC))
	e := engine.New(mc)
	ctx := context.Background()
	require.NoError(t, store.Save(ctx, e.ToSnapshot()))

	_, err := e.CreateResource(engine.CreateResourceInput{TenantID: "t1", Name: "Studio"})
	require.NoError(t, err)
	require.NoError(t, store.Save(ctx, e.ToSnapshot()))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "state.json", entries[0].Name())

	loaded, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Len(t, loaded.Resources, 1)
}

func TestFileStoreRejectsCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	store := statestore.NewFileStore(path)
	_, err := store.Load(context.Background())
	require.Error(t, err)
}
