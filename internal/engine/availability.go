package engine

import (
	"time"
)

// Availability is never stored; every answer here is derived from confirmed
// artifacts plus the current ACTIVE hold lines at call time.

const (
	ReasonBooked = "BOOKED"
	ReasonHeld   = "HELD"
)

type SlotCheck struct {
	Available bool   `json:"available"`
	Reason    string `json:"reason,omitempty"`
}

type ItemAvailability struct {
	ItemID            string `json:"item_id"`
	TotalQuantity     int    `json:"total_quantity"`
	ReservedConfirmed int    `json:"reserved_confirmed"`
	ReservedHolds     int    `json:"reserved_holds"`
	AvailableQuantity int    `json:"available_quantity"`
}

type AvailabilityQuery struct {
	StartAt            time.Time
	EndAt              time.Time
	GranularityMinutes *int
	ExcludeHoldID      string
}

type AvailabilitySlot struct {
	StartAt   time.Time `json:"start_at"`
	EndAt     time.Time `json:"end_at"`
	Available bool      `json:"available"`
	Reason    string    `json:"reason,omitempty"`
}

type ResourceAvailability struct {
	ResourceID         string             `json:"resource_id"`
	StartAt            time.Time          `json:"start_at"`
	EndAt              time.Time          `json:"end_at"`
	GranularityMinutes int                `json:"granularity_minutes"`
	Slots              []AvailabilitySlot `json:"slots"`
}

// overlaps tests two half-open intervals [aStart,aEnd) and [bStart,bEnd).
func overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	return aStart.Before(bEnd) && bStart.Before(aEnd)
}

// CheckResourceAvailability answers for one exact range. Confirmed bookings
// take precedence over holds in the reported reason. excludeHoldID skips the
// named hold's own lines, which is how a confirm re-check avoids seeing the
// hold's own claim as a conflict.
func (e *Engine) CheckResourceAvailability(resourceID string, startAt, endAt time.Time, excludeHoldID string) (*SlotCheck, error) {
	resource, ok := e.resources.get(resourceID)
	if !ok || resource.Status != CatalogStatusActive {
		return nil, notFoundError(CodeResourceNotFound, "resource not found", map[string]any{"resource_id": resourceID})
	}
	for _, booking := range e.bookings.values() {
		if booking.ResourceID != resourceID || booking.Status != ArtifactStatusConfirmed {
			continue
		}
		if overlaps(startAt, endAt, booking.StartAt, booking.EndAt) {
			return &SlotCheck{Available: false, Reason: ReasonBooked}, nil
		}
	}
	for _, hold := range e.holds.values() {
		if hold.Status != HoldStatusActive {
			continue
		}
		if excludeHoldID != "" && hold.ID == excludeHoldID {
			continue
		}
		for i := range hold.Lines {
			line := &hold.Lines[i]
			if line.Kind != LineKindResourceSlot || line.Status != LineStatusActive || line.ResourceID != resourceID {
				continue
			}
			if overlaps(startAt, endAt, *line.StartAt, *line.EndAt) {
				return &SlotCheck{Available: false, Reason: ReasonHeld}, nil
			}
		}
	}
	return &SlotCheck{Available: true}, nil
}

func (e *Engine) GetItemAvailability(itemID string, excludeHoldID string) (*ItemAvailability, error) {
	item, ok := e.items.get(itemID)
	if !ok || item.Status != CatalogStatusActive {
		return nil, notFoundError(CodeItemNotFound, "item not found", map[string]any{"item_id": itemID})
	}
	confirmed := e.confirmedQuantity(itemID)
	held := e.heldQuantity(itemID, excludeHoldID)
	return &ItemAvailability{
		ItemID:            itemID,
		TotalQuantity:     item.TotalQuantity,
		ReservedConfirmed: confirmed,
		ReservedHolds:     held,
		AvailableQuantity: item.TotalQuantity - confirmed - held,
	}, nil
}

// GetResourceAvailability partitions [start,end) into granularity-sized slots
// (the final slot clipped to end) and runs the single-range check per slot.
func (e *Engine) GetResourceAvailability(resourceID string, q AvailabilityQuery) (*ResourceAvailability, error) {
	resource, ok := e.resources.get(resourceID)
	if !ok || resource.Status != CatalogStatusActive {
		return nil, notFoundError(CodeResourceNotFound, "resource not found", map[string]any{"resource_id": resourceID})
	}
	if !q.StartAt.Before(q.EndAt) {
		return nil, validationError(CodeInvalidRange, "start_at must be before end_at", map[string]any{
			"start_at": q.StartAt, "end_at": q.EndAt,
		})
	}
	granularity := resource.SlotGranularityMinutes
	if q.GranularityMinutes != nil {
		granularity = *q.GranularityMinutes
	}
	if granularity <= 0 {
		return nil, validationError(CodeInvalidGranularity, "granularity_minutes must be positive integer", map[string]any{
			"granularity_minutes": granularity,
		})
	}

	step := time.Duration(granularity) * time.Minute
	slots := []AvailabilitySlot{}
	for cursor := q.StartAt; cursor.Before(q.EndAt); cursor = cursor.Add(step) {
		slotEnd := cursor.Add(step)
		if slotEnd.After(q.EndAt) {
			slotEnd = q.EndAt
		}
		check, err := e.CheckResourceAvailability(resourceID, cursor, slotEnd, q.ExcludeHoldID)
		if err != nil {
			return nil, err
		}
		slots = append(slots, AvailabilitySlot{
			StartAt:   cursor,
			EndAt:     slotEnd,
			Available: check.Available,
			Reason:    check.Reason,
		})
	}
	return &ResourceAvailability{
		ResourceID:         resourceID,
		StartAt:            q.StartAt,
		EndAt:              q.EndAt,
		GranularityMinutes: granularity,
		Slots:              slots,
	}, nil
}

func (e *Engine) confirmedQuantity(itemID string) int {
	total := 0
	for _, reservation := range e.reservations.values() {
		if reservation.ItemID == itemID && reservation.Status == ArtifactStatusConfirmed {
			total += reservation.Quantity
		}
	}
	return total
}

func (e *Engine) heldQuantity(itemID string, excludeHoldID string) int {
	total := 0
	for _, hold := range e.holds.values() {
		if hold.Status != HoldStatusActive {
			continue
		}
		if excludeHoldID != "" && hold.ID == excludeHoldID {
			continue
		}
		for i := range hold.Lines {
			line := &hold.Lines[i]
			if line.Kind == LineKindInventoryQty && line.Status == LineStatusActive && line.ItemID == itemID {
				total += line.Quantity
			}
		}
	}
	return total
}

// reservedQuantity is what an item's total may not be lowered below.
func (e *Engine) reservedQuantity(itemID string, excludeHoldID string) int {
	return e.confirmedQuantity(itemID) + e.heldQuantity(itemID, excludeHoldID)
}
