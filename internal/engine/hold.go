package engine

import (
	"fmt"
	"time"
)

const (
	minExpiresInSeconds = 60
	maxExpiresInSeconds = 3600
	minHoldLines        = 1
	maxHoldLines        = 10
	maxLineQuantity     = 100
)

type HoldLineInput struct {
	Kind       string
	ResourceID string
	StartAt    *time.Time
	EndAt      *time.Time
	ItemID     string
	Quantity   *int
}

type CreateHoldInput struct {
	TenantID         string
	CreatedByUserID  string
	ExpiresInSeconds int
	Lines            []HoldLineInput
	IdempotencyKey   string
	Note             string
	RequestID        string
}

type HoldFilter struct {
	TenantID        string
	CreatedByUserID string
	Status          *HoldStatus
}

// ConfirmResult reports the artifacts belonging to a confirmed hold. Repeating
// the confirm returns the same set, never a second one.
type ConfirmResult struct {
	HoldID       string         `json:"hold_id"`
	Status       HoldStatus     `json:"status"`
	Bookings     []*Booking     `json:"bookings"`
	Reservations []*Reservation `json:"reservations"`
}

func idempotencyIndexKey(tenantID, userID, key string) string {
	return fmt.Sprintf("%s:%s:%s", tenantID, userID, key)
}

// CreateHold validates and claims every line or nothing. Conflicts are checked
// against committed state AND against lines accepted earlier in this same
// request (provisional running totals), so a request cannot race itself.
func (e *Engine) CreateHold(in CreateHoldInput) (*Hold, error) {
	now := e.now()

	if in.TenantID == "" || in.CreatedByUserID == "" {
		return nil, validationError(CodeInvalidHoldRequest, "tenant_id and created_by_user_id are required", nil)
	}
	if in.ExpiresInSeconds < minExpiresInSeconds || in.ExpiresInSeconds > maxExpiresInSeconds {
		return nil, validationError(CodeInvalidExpiresIn,
			fmt.Sprintf("expires_in_seconds must be in [%d, %d]", minExpiresInSeconds, maxExpiresInSeconds),
			map[string]any{"expires_in_seconds": in.ExpiresInSeconds})
	}
	if len(in.Lines) < minHoldLines || len(in.Lines) > maxHoldLines {
		return nil, validationError(CodeInvalidHoldLines,
			fmt.Sprintf("lines must be in [%d, %d]", minHoldLines, maxHoldLines),
			map[string]any{"line_count": len(in.Lines)})
	}

	if in.IdempotencyKey != "" {
		key := idempotencyIndexKey(in.TenantID, in.CreatedByUserID, in.IdempotencyKey)
		if existingID, ok := e.idempotency[key]; ok {
			// replay: the original hold is returned unchanged, no re-validation
			return e.GetHold(existingID, "")
		}
	}

	type provisionalSlot struct {
		resourceID string
		startAt    time.Time
		endAt      time.Time
	}
	var provisionalSlots []provisionalSlot
	provisionalQty := map[string]int{}
	lines := make([]HoldLine, 0, len(in.Lines))

	for _, raw := range in.Lines {
		switch LineKind(raw.Kind) {
		case LineKindResourceSlot:
			resource, ok := e.resources.get(raw.ResourceID)
			if !ok || resource.TenantID != in.TenantID || resource.Status != CatalogStatusActive {
				return nil, notFoundError(CodeResourceNotFound, "resource not found", map[string]any{"resource_id": raw.ResourceID})
			}
			if raw.StartAt == nil || raw.EndAt == nil {
				return nil, validationError(CodeInvalidResourceSlot, "start_at and end_at are required", nil)
			}
			startAt := raw.StartAt.UTC()
			endAt := raw.EndAt.UTC()
			if !startAt.Before(endAt) {
				return nil, validationError(CodeInvalidResourceSlot, "start_at must be before end_at", map[string]any{
					"start_at": startAt, "end_at": endAt,
				})
			}
			granMs := int64(resource.SlotGranularityMinutes) * 60_000
			if startAt.UnixMilli()%granMs != 0 || endAt.UnixMilli()%granMs != 0 {
				return nil, validationError(CodeInvalidResourceSlotAlignment,
					"start_at and end_at must align to slot granularity", map[string]any{
						"resource_id":              raw.ResourceID,
						"slot_granularity_minutes": resource.SlotGranularityMinutes,
					})
			}
			durationMin := int(endAt.Sub(startAt) / time.Minute)
			if durationMin < resource.MinDurationMinutes || durationMin > resource.MaxDurationMinutes {
				return nil, validationError(CodeInvalidResourceSlotDuration,
					"duration must be within resource min/max bounds", map[string]any{
						"resource_id":          raw.ResourceID,
						"duration_minutes":     durationMin,
						"min_duration_minutes": resource.MinDurationMinutes,
						"max_duration_minutes": resource.MaxDurationMinutes,
					})
			}

			check, err := e.CheckResourceAvailability(raw.ResourceID, startAt, endAt, "")
			if err != nil {
				return nil, err
			}
			if !check.Available {
				return nil, conflictError(CodeResourceConflict, "resource slot is not available", map[string]any{
					"resource_id": raw.ResourceID,
					"reason":      check.Reason,
				})
			}
			for _, p := range provisionalSlots {
				if p.resourceID == raw.ResourceID && overlaps(startAt, endAt, p.startAt, p.endAt) {
					return nil, conflictError(CodeResourceConflict, "resource slot overlaps within request", map[string]any{
						"resource_id": raw.ResourceID,
					})
				}
			}
			provisionalSlots = append(provisionalSlots, provisionalSlot{raw.ResourceID, startAt, endAt})
			lines = append(lines, HoldLine{
				ID:         e.nextID("HL", &e.sequence.Line),
				Kind:       LineKindResourceSlot,
				ResourceID: raw.ResourceID,
				StartAt:    &startAt,
				EndAt:      &endAt,
				Status:     LineStatusActive,
			})

		case LineKindInventoryQty:
			if raw.Quantity == nil || *raw.Quantity < 1 || *raw.Quantity > maxLineQuantity {
				return nil, validationError(CodeInvalidQuantity,
					fmt.Sprintf("quantity must be integer in [1, %d]", maxLineQuantity),
					map[string]any{"item_id": raw.ItemID})
			}
			item, ok := e.items.get(raw.ItemID)
			if !ok || item.TenantID != in.TenantID || item.Status != CatalogStatusActive {
				return nil, notFoundError(CodeItemNotFound, "item not found", map[string]any{"item_id": raw.ItemID})
			}
			availability, err := e.GetItemAvailability(raw.ItemID, "")
			if err != nil {
				return nil, err
			}
			alreadyRequested := provisionalQty[raw.ItemID]
			if availability.AvailableQuantity-alreadyRequested < *raw.Quantity {
				return nil, conflictError(CodeInsufficientInventory, "insufficient inventory", map[string]any{
					"item_id":   raw.ItemID,
					"requested": *raw.Quantity,
					"available": availability.AvailableQuantity - alreadyRequested,
				})
			}
			provisionalQty[raw.ItemID] = alreadyRequested + *raw.Quantity
			lines = append(lines, HoldLine{
				ID:       e.nextID("HL", &e.sequence.Line),
				Kind:     LineKindInventoryQty,
				ItemID:   raw.ItemID,
				Quantity: *raw.Quantity,
				Status:   LineStatusActive,
			})

		default:
			return nil, validationError(CodeInvalidHoldLineKind, "line kind must be RESOURCE_SLOT or INVENTORY_QTY", map[string]any{
				"kind": raw.Kind,
			})
		}
	}

	hold := &Hold{
		ID:              e.nextID("H", &e.sequence.Hold),
		TenantID:        in.TenantID,
		CreatedByUserID: in.CreatedByUserID,
		Status:          HoldStatusActive,
		ExpiresAt:       now.Add(time.Duration(in.ExpiresInSeconds) * time.Second),
		CreatedAt:       now,
		UpdatedAt:       now,
		IdempotencyKey:  in.IdempotencyKey,
		Note:            in.Note,
		Lines:           lines,
	}
	e.holds.put(hold.ID, hold)
	if in.IdempotencyKey != "" {
		e.idempotency[idempotencyIndexKey(in.TenantID, in.CreatedByUserID, in.IdempotencyKey)] = hold.ID
	}
	e.addAudit(auditInput{
		TenantID:    in.TenantID,
		ActorUserID: in.CreatedByUserID,
		Action:      AuditHoldCreate,
		TargetType:  "HOLD",
		TargetID:    hold.ID,
		RequestID:   in.RequestID,
		Payload:     map[string]any{"line_count": len(in.Lines)},
		Now:         now,
	})
	return deepCopy(hold), nil
}

func (e *Engine) GetHold(holdID string, tenantID string) (*Hold, error) {
	hold, ok := e.holds.get(holdID)
	if !ok || (tenantID != "" && hold.TenantID != tenantID) {
		return nil, notFoundError(CodeHoldNotFound, "hold not found", map[string]any{"hold_id": holdID})
	}
	return deepCopy(hold), nil
}

// GetHoldForActor is the caller-facing read: a hold is visible to its creator
// and to admins only. The tenant check runs first so foreign holds stay 404.
func (e *Engine) GetHoldForActor(holdID string, actor Actor) (*Hold, error) {
	hold, ok := e.holds.get(holdID)
	if !ok || (actor.TenantID != "" && hold.TenantID != actor.TenantID) {
		return nil, notFoundError(CodeHoldNotFound, "hold not found", map[string]any{"hold_id": holdID})
	}
	if !actor.IsAdmin && hold.CreatedByUserID != actor.UserID {
		return nil, forbiddenError("hold is visible only to owner or admin", map[string]any{"hold_id": holdID})
	}
	return deepCopy(hold), nil
}

func (e *Engine) ListHolds(f HoldFilter) []*Hold {
	out := make([]*Hold, 0, e.holds.len())
	for _, hold := range e.holds.values() {
		if f.TenantID != "" && hold.TenantID != f.TenantID {
			continue
		}
		if f.CreatedByUserID != "" && hold.CreatedByUserID != f.CreatedByUserID {
			continue
		}
		if f.Status != nil && hold.Status != *f.Status {
			continue
		}
		out = append(out, deepCopy(hold))
	}
	return out
}

// ConfirmHold is idempotent on an already-CONFIRMED hold: it rebuilds the same
// result instead of erroring. An ACTIVE hold past its expiry is transitioned
// to EXPIRED as a durable side effect even though the call itself fails.
func (e *Engine) ConfirmHold(holdID string, actor Actor) (*ConfirmResult, error) {
	now := e.now()
	hold, ok := e.holds.get(holdID)
	if !ok || (actor.TenantID != "" && hold.TenantID != actor.TenantID) {
		return nil, notFoundError(CodeHoldNotFound, "hold not found", map[string]any{"hold_id": holdID})
	}
	if !actor.IsAdmin && hold.CreatedByUserID != actor.UserID {
		return nil, forbiddenError("confirm is allowed only for owner or admin", map[string]any{"hold_id": holdID})
	}
	if hold.Status == HoldStatusConfirmed {
		return e.buildConfirmResult(hold), nil
	}
	if hold.Status != HoldStatusActive {
		return nil, conflictError(CodeInvalidHoldStatus, "only ACTIVE hold can be confirmed", map[string]any{
			"hold_id": holdID, "status": hold.Status,
		})
	}
	if !now.Before(hold.ExpiresAt) {
		e.expireHoldLocked(hold, now)
		return nil, conflictError(CodeHoldExpired, "hold is expired", map[string]any{"hold_id": holdID})
	}

	// Provisional checks from creation time are not trusted here: other holds
	// may have appeared or expired since. Every line is re-checked against
	// current state, excluding this hold's own claim on capacity.
	for i := range hold.Lines {
		line := &hold.Lines[i]
		switch line.Kind {
		case LineKindResourceSlot:
			check, err := e.CheckResourceAvailability(line.ResourceID, *line.StartAt, *line.EndAt, hold.ID)
			if err != nil {
				return nil, err
			}
			if !check.Available {
				return nil, conflictError(CodeResourceConflict, "resource conflict at confirm", map[string]any{
					"hold_id": holdID, "resource_id": line.ResourceID, "reason": check.Reason,
				})
			}
		case LineKindInventoryQty:
			availability, err := e.GetItemAvailability(line.ItemID, hold.ID)
			if err != nil {
				return nil, err
			}
			if availability.AvailableQuantity < line.Quantity {
				return nil, conflictError(CodeInsufficientInventory, "insufficient inventory at confirm", map[string]any{
					"hold_id": holdID, "item_id": line.ItemID,
				})
			}
		}
	}

	// Every line cleared: materialize artifacts, release lines and confirm the
	// hold in one uninterrupted step.
	for i := range hold.Lines {
		line := &hold.Lines[i]
		switch line.Kind {
		case LineKindResourceSlot:
			booking := &Booking{
				ID:              e.nextID("B", &e.sequence.Booking),
				TenantID:        hold.TenantID,
				ResourceID:      line.ResourceID,
				StartAt:         *line.StartAt,
				EndAt:           *line.EndAt,
				CreatedByUserID: hold.CreatedByUserID,
				Status:          ArtifactStatusConfirmed,
				SourceHoldID:    hold.ID,
				CreatedAt:       now,
				UpdatedAt:       now,
			}
			e.bookings.put(booking.ID, booking)
		case LineKindInventoryQty:
			reservation := &Reservation{
				ID:              e.nextID("S", &e.sequence.Reservation),
				TenantID:        hold.TenantID,
				ItemID:          line.ItemID,
				Quantity:        line.Quantity,
				CreatedByUserID: hold.CreatedByUserID,
				Status:          ArtifactStatusConfirmed,
				SourceHoldID:    hold.ID,
				CreatedAt:       now,
				UpdatedAt:       now,
			}
			e.reservations.put(reservation.ID, reservation)
		}
		line.Status = LineStatusReleased
	}

	hold.Status = HoldStatusConfirmed
	hold.ConfirmedAt = &now
	hold.UpdatedAt = now
	e.addAudit(auditInput{
		TenantID:    hold.TenantID,
		ActorUserID: hold.CreatedByUserID,
		Action:      AuditHoldConfirm,
		TargetType:  "HOLD",
		TargetID:    hold.ID,
		RequestID:   actor.RequestID,
		Now:         now,
	})
	return e.buildConfirmResult(hold), nil
}

func (e *Engine) CancelHold(holdID string, actor Actor) (*Hold, error) {
	now := e.now()
	hold, ok := e.holds.get(holdID)
	if !ok || (actor.TenantID != "" && hold.TenantID != actor.TenantID) {
		return nil, notFoundError(CodeHoldNotFound, "hold not found", map[string]any{"hold_id": holdID})
	}
	if hold.Status != HoldStatusActive {
		return nil, conflictError(CodeInvalidHoldStatus, "only ACTIVE hold can be cancelled", map[string]any{
			"hold_id": holdID, "status": hold.Status,
		})
	}
	if !actor.IsAdmin && hold.CreatedByUserID != actor.UserID {
		return nil, forbiddenError("cancel is allowed only for owner or admin", map[string]any{"hold_id": holdID})
	}

	hold.Status = HoldStatusCancelled
	hold.CancelledAt = &now
	hold.UpdatedAt = now
	releaseLines(hold)
	e.addAudit(auditInput{
		TenantID:    hold.TenantID,
		ActorUserID: actor.UserID,
		Action:      AuditHoldCancel,
		TargetType:  "HOLD",
		TargetID:    hold.ID,
		RequestID:   actor.RequestID,
		Now:         now,
	})
	return deepCopy(hold), nil
}

// ExpireHolds expires every ACTIVE hold whose expires_at has passed and
// returns the count. The engine has no timers of its own; an external
// scheduler calls this periodically, and confirm performs the same transition
// lazily on first touch.
func (e *Engine) ExpireHolds(now *time.Time) int {
	at := e.now()
	if now != nil {
		at = now.UTC()
	}
	expired := 0
	for _, hold := range e.holds.values() {
		if hold.Status != HoldStatusActive {
			continue
		}
		if !hold.ExpiresAt.After(at) {
			e.expireHoldLocked(hold, at)
			expired++
		}
	}
	return expired
}

func (e *Engine) expireHoldLocked(hold *Hold, now time.Time) {
	hold.Status = HoldStatusExpired
	hold.ExpiredAt = &now
	hold.UpdatedAt = now
	releaseLines(hold)
	e.addAudit(auditInput{
		TenantID:   hold.TenantID,
		Action:     AuditHoldExpire,
		TargetType: "HOLD",
		TargetID:   hold.ID,
		Now:        now,
	})
}

// line status mirrors the parent: leaving ACTIVE releases every line,
// whichever terminal state the hold reached
func releaseLines(hold *Hold) {
	for i := range hold.Lines {
		hold.Lines[i].Status = LineStatusReleased
	}
}

func (e *Engine) buildConfirmResult(hold *Hold) *ConfirmResult {
	result := &ConfirmResult{
		HoldID:       hold.ID,
		Status:       hold.Status,
		Bookings:     []*Booking{},
		Reservations: []*Reservation{},
	}
	for _, booking := range e.bookings.values() {
		if booking.SourceHoldID == hold.ID {
			result.Bookings = append(result.Bookings, deepCopy(booking))
		}
	}
	for _, reservation := range e.reservations.values() {
		if reservation.SourceHoldID == hold.ID {
			result.Reservations = append(result.Reservations, deepCopy(reservation))
		}
	}
	return result
}
