//go:build unit

package engine_test

import (
	"encoding/json"
	"testing"
	"time"

	"booking-hold-service/internal/engine"
	"booking-hold-service/internal/pkg/clock"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func populatedEngine(t *testing.T) (*engine.Engine, *clock.MockClock) {
	t.Helper()
	mc := clock.NewMockClock(testT0)
	e := engine.New(mc)

	resource, err := e.CreateResource(engine.CreateResourceInput{TenantID: "t1", Name: "Studio"})
	require.NoError(t, err)
	qty := 5
	item, err := e.CreateItem(engine.CreateItemInput{TenantID: "t1", Name: "Beamer", TotalQuantity: &qty})
	require.NoError(t, err)

	start := testT0.Add(time.Hour)
	end := start.Add(time.Hour)
	two := 2
	hold, err := e.CreateHold(engine.CreateHoldInput{
		TenantID: "t1", CreatedByUserID: "u1", ExpiresInSeconds: 600,
		IdempotencyKey: "snap-key",
		Lines: []engine.HoldLineInput{
			{Kind: string(engine.LineKindResourceSlot), ResourceID: resource.ID, StartAt: &start, EndAt: &end},
			{Kind: string(engine.LineKindInventoryQty), ItemID: item.ID, Quantity: &two},
		},
	})
	require.NoError(t, err)
	_, err = e.ConfirmHold(hold.ID, engine.Actor{UserID: "u1", TenantID: "t1"})
	require.NoError(t, err)

	return e, mc
}

func TestSnapshotRoundTripIsLossless(t *testing.T) {
	e, mc := populatedEngine(t)

	snapshot := e.ToSnapshot()
	assert.Equal(t, engine.SnapshotSchemaVersion, snapshot.SchemaVersion)

	// through the wire format, as the file store would
	raw, err := json.Marshal(snapshot)
	require.NoError(t, err)
	var decoded engine.Snapshot
	require.NoError(t, json.Unmarshal(raw, &decoded))

	restored, err := engine.NewFromSnapshot(&decoded, mc)
	require.NoError(t, err)

	again := restored.ToSnapshot()
	ignoreGeneratedAt := cmp.FilterPath(func(p cmp.Path) bool {
		return p.String() == "GeneratedAt"
	}, cmp.Ignore())
	if diff := cmp.Diff(snapshot, again, ignoreGeneratedAt); diff != "" {
		t.Fatalf("snapshot mismatch after round trip (-want +got):\n%s", diff)
	}
}

func TestHydratedEngineDoesNotReuseIDs(t *testing.T) {
	e, mc := populatedEngine(t)

	restored, err := engine.NewFromSnapshot(e.ToSnapshot(), mc)
	require.NoError(t, err)

	before := restored.ToSnapshot()
	resource, err := restored.CreateResource(engine.CreateResourceInput{TenantID: "t1", Name: "Annex"})
	require.NoError(t, err)

	for _, existing := range before.Resources {
		assert.NotEqual(t, existing.ID, resource.ID)
	}
	assert.Equal(t, "R2", resource.ID)
}

func TestHydratedEngineKeepsIdempotencyIndex(t *testing.T) {
	e, mc := populatedEngine(t)

	restored, err := engine.NewFromSnapshot(e.ToSnapshot(), mc)
	require.NoError(t, err)

	one := 1
	hold, err := restored.CreateHold(engine.CreateHoldInput{
		TenantID: "t1", CreatedByUserID: "u1", ExpiresInSeconds: 600,
		IdempotencyKey: "snap-key",
		Lines: []engine.HoldLineInput{{
			Kind: string(engine.LineKindInventoryQty), ItemID: "I1", Quantity: &one,
		}},
	})
	require.NoError(t, err)
	// replay of the pre-restart key, not a new hold
	assert.Equal(t, "H1", hold.ID)
	assert.Equal(t, engine.HoldStatusConfirmed, hold.Status)
}

func TestHydrateRejectsUnknownSchema(t *testing.T) {
	e, _ := newTestEngine(t)
	err := e.Hydrate(&engine.Snapshot{SchemaVersion: 99})
	require.Error(t, err)
}

func TestHydrateNilSnapshotStartsEmpty(t *testing.T) {
	e, _ := newTestEngine(t)
	require.NoError(t, e.Hydrate(nil))
	assert.Empty(t, e.ListResources(engine.ResourceFilter{TenantID: "t1"}))
}
