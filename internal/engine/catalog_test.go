//go:build unit

package engine_test

import (
	"testing"
	"time"

	"booking-hold-service/internal/engine"
	"booking-hold-service/internal/pkg/clock"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestEngine(t *testing.T) (*engine.Engine, *clock.MockClock) {
	t.Helper()
	mc := clock.NewMockClock(testT0)
	return engine.New(mc), mc
}

func TestCreateResourceDefaults(t *testing.T) {
	e, _ := newTestEngine(t)

	resource, err := e.CreateResource(engine.CreateResourceInput{TenantID: "t1", Name: "Studio"})
	require.NoError(t, err)

	assert.Equal(t, "UTC", resource.Timezone)
	assert.Equal(t, 15, resource.SlotGranularityMinutes)
	assert.Equal(t, 15, resource.MinDurationMinutes)
	assert.Equal(t, 240, resource.MaxDurationMinutes)
	assert.Equal(t, engine.CatalogStatusActive, resource.Status)
	assert.Equal(t, "R1", resource.ID)
}

func TestCreateResourceValidation(t *testing.T) {
	e, _ := newTestEngine(t)

	_, err := e.CreateResource(engine.CreateResourceInput{TenantID: "t1"})
	requireCode(t, err, engine.CodeInvalidResource, 400)

	bad := -5
	_, err = e.CreateResource(engine.CreateResourceInput{
		TenantID: "t1", Name: "x", SlotGranularityMinutes: &bad,
	})
	requireCode(t, err, engine.CodeInvalidResource, 400)

	minD, maxD := 120, 60
	_, err = e.CreateResource(engine.CreateResourceInput{
		TenantID: "t1", Name: "x", MinDurationMinutes: &minD, MaxDurationMinutes: &maxD,
	})
	requireCode(t, err, engine.CodeInvalidResource, 400)
}

func TestPatchResourceDoesNotRevalidateActiveHolds(t *testing.T) {
	e, _ := newTestEngine(t)

	resource, err := e.CreateResource(engine.CreateResourceInput{TenantID: "t1", Name: "Studio"})
	require.NoError(t, err)

	start := testT0.Add(time.Hour)
	end := start.Add(2 * time.Hour)
	hold, err := e.CreateHold(engine.CreateHoldInput{
		TenantID: "t1", CreatedByUserID: "u1", ExpiresInSeconds: 600,
		Lines: []engine.HoldLineInput{{
			Kind: string(engine.LineKindResourceSlot), ResourceID: resource.ID,
			StartAt: &start, EndAt: &end,
		}},
	})
	require.NoError(t, err)

	// shrink the allowed duration below the already-held 120 minutes
	newMax := 60
	admin := engine.Actor{UserID: "admin", TenantID: "t1", IsAdmin: true}
	_, err = e.UpdateResource(resource.ID, engine.UpdateResourcePatch{MaxDurationMinutes: &newMax}, admin)
	require.NoError(t, err)

	// the existing hold is grandfathered: it still confirms
	result, err := e.ConfirmHold(hold.ID, admin)
	require.NoError(t, err)
	assert.Len(t, result.Bookings, 1)

	// new holds are bound by the tightened rule
	_, err = e.CreateHold(engine.CreateHoldInput{
		TenantID: "t1", CreatedByUserID: "u1", ExpiresInSeconds: 600,
		Lines: []engine.HoldLineInput{{
			Kind: string(engine.LineKindResourceSlot), ResourceID: resource.ID,
			StartAt: &end, EndAt: ptrTime(end.Add(2 * time.Hour)),
		}},
	})
	requireCode(t, err, engine.CodeInvalidResourceSlotDuration, 400)
}

func TestPatchResourceInvalidMergeCode(t *testing.T) {
	e, _ := newTestEngine(t)
	resource, err := e.CreateResource(engine.CreateResourceInput{TenantID: "t1", Name: "Studio"})
	require.NoError(t, err)

	// merged state min>max must fail with the patch code, not the create code
	newMin := 500
	admin := engine.Actor{UserID: "admin", TenantID: "t1", IsAdmin: true}
	_, err = e.UpdateResource(resource.ID, engine.UpdateResourcePatch{MinDurationMinutes: &newMin}, admin)
	requireCode(t, err, engine.CodeInvalidResourcePatch, 400)
}

func TestItemQuantityShrinkConflict(t *testing.T) {
	e, _ := newTestEngine(t)

	qty := 10
	item, err := e.CreateItem(engine.CreateItemInput{TenantID: "t1", Name: "Beamer", TotalQuantity: &qty})
	require.NoError(t, err)

	held := 6
	_, err = e.CreateHold(engine.CreateHoldInput{
		TenantID: "t1", CreatedByUserID: "u1", ExpiresInSeconds: 600,
		Lines: []engine.HoldLineInput{{
			Kind: string(engine.LineKindInventoryQty), ItemID: item.ID, Quantity: &held,
		}},
	})
	require.NoError(t, err)

	admin := engine.Actor{UserID: "admin", TenantID: "t1", IsAdmin: true}

	shrink := 5
	_, err = e.UpdateItem(item.ID, engine.UpdateItemPatch{TotalQuantity: &shrink}, admin)
	requireCode(t, err, engine.CodeItemQuantityConflict, 409)

	okShrink := 6
	updated, err := e.UpdateItem(item.ID, engine.UpdateItemPatch{TotalQuantity: &okShrink}, admin)
	require.NoError(t, err)
	assert.Equal(t, 6, updated.TotalQuantity)

	availability, err := e.GetItemAvailability(item.ID, "")
	require.NoError(t, err)
	assert.Equal(t, 0, availability.AvailableQuantity)
}

func TestNegativeItemQuantityCode(t *testing.T) {
	e, _ := newTestEngine(t)
	bad := -1
	_, err := e.CreateItem(engine.CreateItemInput{TenantID: "t1", Name: "x", TotalQuantity: &bad})
	requireCode(t, err, engine.CodeInvalidItemQuantity, 400)
}

func TestInactiveEntitiesReadAsNotFound(t *testing.T) {
	e, _ := newTestEngine(t)

	resource, err := e.CreateResource(engine.CreateResourceInput{TenantID: "t1", Name: "Studio"})
	require.NoError(t, err)

	inactive := engine.CatalogStatusInactive
	admin := engine.Actor{UserID: "admin", TenantID: "t1", IsAdmin: true}
	_, err = e.UpdateResource(resource.ID, engine.UpdateResourcePatch{Status: &inactive}, admin)
	require.NoError(t, err)

	start := testT0.Add(time.Hour)
	_, err = e.CreateHold(engine.CreateHoldInput{
		TenantID: "t1", CreatedByUserID: "u1", ExpiresInSeconds: 600,
		Lines: []engine.HoldLineInput{{
			Kind: string(engine.LineKindResourceSlot), ResourceID: resource.ID,
			StartAt: &start, EndAt: ptrTime(start.Add(time.Hour)),
		}},
	})
	requireCode(t, err, engine.CodeResourceNotFound, 404)
}

func TestAvailabilityPartition(t *testing.T) {
	e, _ := newTestEngine(t)

	resource, err := e.CreateResource(engine.CreateResourceInput{TenantID: "t1", Name: "Studio"})
	require.NoError(t, err)

	heldStart := testT0.Add(time.Hour)
	heldEnd := heldStart.Add(30 * time.Minute)
	_, err = e.CreateHold(engine.CreateHoldInput{
		TenantID: "t1", CreatedByUserID: "u1", ExpiresInSeconds: 600,
		Lines: []engine.HoldLineInput{{
			Kind: string(engine.LineKindResourceSlot), ResourceID: resource.ID,
			StartAt: &heldStart, EndAt: &heldEnd,
		}},
	})
	require.NoError(t, err)

	gran := 30
	availability, err := e.GetResourceAvailability(resource.ID, engine.AvailabilityQuery{
		StartAt:            testT0.Add(time.Hour),
		EndAt:              testT0.Add(2*time.Hour + 15*time.Minute),
		GranularityMinutes: &gran,
	})
	require.NoError(t, err)

	require.Len(t, availability.Slots, 3)
	assert.False(t, availability.Slots[0].Available)
	assert.Equal(t, engine.ReasonHeld, availability.Slots[0].Reason)
	assert.True(t, availability.Slots[1].Available)
	// final slot clipped to the range end
	assert.Equal(t, testT0.Add(2*time.Hour+15*time.Minute), availability.Slots[2].EndAt)

	_, err = e.GetResourceAvailability(resource.ID, engine.AvailabilityQuery{
		StartAt: testT0.Add(time.Hour), EndAt: testT0.Add(time.Hour),
	})
	requireCode(t, err, engine.CodeInvalidRange, 400)

	zero := 0
	_, err = e.GetResourceAvailability(resource.ID, engine.AvailabilityQuery{
		StartAt: testT0, EndAt: testT0.Add(time.Hour), GranularityMinutes: &zero,
	})
	requireCode(t, err, engine.CodeInvalidGranularity, 400)
}

func TestAuditTrailFiltersAndLimit(t *testing.T) {
	e, mc := newTestEngine(t)

	qty := 10
	item, err := e.CreateItem(engine.CreateItemInput{TenantID: "t1", Name: "Beamer", TotalQuantity: &qty})
	require.NoError(t, err)

	one := 1
	for i := 0; i < 3; i++ {
		mc.Advance(time.Minute)
		_, err = e.CreateHold(engine.CreateHoldInput{
			TenantID: "t1", CreatedByUserID: "u1", ExpiresInSeconds: 600, RequestID: "rq-loop",
			Lines: []engine.HoldLineInput{{
				Kind: string(engine.LineKindInventoryQty), ItemID: item.ID, Quantity: &one,
			}},
		})
		require.NoError(t, err)
	}

	entries, err := e.ListAuditLogs(engine.AuditFilter{TenantID: "t1", Action: engine.AuditHoldCreate})
	require.NoError(t, err)
	require.Len(t, entries, 3)
	// newest first
	assert.True(t, entries[0].CreatedAt.After(entries[2].CreatedAt))
	assert.Equal(t, "rq-loop", entries[0].RequestID)
	assert.Equal(t, float64(1), entries[0].Payload["line_count"])

	limited, err := e.ListAuditLogs(engine.AuditFilter{TenantID: "t1", Limit: 2})
	require.NoError(t, err)
	assert.Len(t, limited, 2)

	_, err = e.ListAuditLogs(engine.AuditFilter{TenantID: "t1", Limit: -1})
	requireCode(t, err, engine.CodeInvalidQuery, 400)

	none, err := e.ListAuditLogs(engine.AuditFilter{TenantID: "t2"})
	require.NoError(t, err)
	assert.Empty(t, none)
}

func ptrTime(t time.Time) *time.Time { return &t }
