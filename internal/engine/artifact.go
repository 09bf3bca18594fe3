package engine

import "time"

// Bookings and reservations are materialized only by a hold confirm; there is
// no direct create path. Cancelling one frees capacity immediately but never
// touches the hold it came from.

type BookingFilter struct {
	TenantID   string
	ResourceID string
	Status     *ArtifactStatus
	StartAt    *time.Time
	EndAt      *time.Time
}

type ReservationFilter struct {
	TenantID string
	ItemID   string
	Status   *ArtifactStatus
}

func (e *Engine) GetBooking(bookingID string, tenantID string) (*Booking, error) {
	booking, ok := e.bookings.get(bookingID)
	if !ok || (tenantID != "" && booking.TenantID != tenantID) {
		return nil, notFoundError(CodeBookingNotFound, "booking not found", map[string]any{"booking_id": bookingID})
	}
	return deepCopy(booking), nil
}

// ListBookings filters by tenant, resource, status and an optional time
// window. The window matches any booking overlapping it, half-open.
func (e *Engine) ListBookings(f BookingFilter) []*Booking {
	out := make([]*Booking, 0, e.bookings.len())
	for _, booking := range e.bookings.values() {
		if f.TenantID != "" && booking.TenantID != f.TenantID {
			continue
		}
		if f.ResourceID != "" && booking.ResourceID != f.ResourceID {
			continue
		}
		if f.Status != nil && booking.Status != *f.Status {
			continue
		}
		if f.StartAt != nil && !booking.EndAt.After(*f.StartAt) {
			continue
		}
		if f.EndAt != nil && !booking.StartAt.Before(*f.EndAt) {
			continue
		}
		out = append(out, deepCopy(booking))
	}
	return out
}

func (e *Engine) CancelBooking(bookingID string, actor Actor) (*Booking, error) {
	now := e.now()
	booking, ok := e.bookings.get(bookingID)
	if !ok || (actor.TenantID != "" && booking.TenantID != actor.TenantID) {
		return nil, notFoundError(CodeBookingNotFound, "booking not found", map[string]any{"booking_id": bookingID})
	}
	if booking.Status != ArtifactStatusConfirmed {
		return nil, conflictError(CodeInvalidBookingStatus, "only CONFIRMED booking can be cancelled", map[string]any{
			"booking_id": bookingID, "status": booking.Status,
		})
	}
	if !actor.IsAdmin && booking.CreatedByUserID != actor.UserID {
		return nil, forbiddenError("cancel is allowed only for owner or admin", map[string]any{"booking_id": bookingID})
	}

	booking.Status = ArtifactStatusCancelled
	booking.CancelledAt = &now
	booking.UpdatedAt = now
	e.addAudit(auditInput{
		TenantID:    booking.TenantID,
		ActorUserID: actor.UserID,
		Action:      AuditBookingCancel,
		TargetType:  "BOOKING",
		TargetID:    booking.ID,
		RequestID:   actor.RequestID,
		Now:         now,
	})
	return deepCopy(booking), nil
}

func (e *Engine) GetReservation(reservationID string, tenantID string) (*Reservation, error) {
	reservation, ok := e.reservations.get(reservationID)
	if !ok || (tenantID != "" && reservation.TenantID != tenantID) {
		return nil, notFoundError(CodeReservationNotFound, "reservation not found", map[string]any{"reservation_id": reservationID})
	}
	return deepCopy(reservation), nil
}

func (e *Engine) ListReservations(f ReservationFilter) []*Reservation {
	out := make([]*Reservation, 0, e.reservations.len())
	for _, reservation := range e.reservations.values() {
		if f.TenantID != "" && reservation.TenantID != f.TenantID {
			continue
		}
		if f.ItemID != "" && reservation.ItemID != f.ItemID {
			continue
		}
		if f.Status != nil && reservation.Status != *f.Status {
			continue
		}
		out = append(out, deepCopy(reservation))
	}
	return out
}

func (e *Engine) CancelReservation(reservationID string, actor Actor) (*Reservation, error) {
	now := e.now()
	reservation, ok := e.reservations.get(reservationID)
	if !ok || (actor.TenantID != "" && reservation.TenantID != actor.TenantID) {
		return nil, notFoundError(CodeReservationNotFound, "reservation not found", map[string]any{"reservation_id": reservationID})
	}
	if reservation.Status != ArtifactStatusConfirmed {
		return nil, conflictError(CodeInvalidReservationStatus, "only CONFIRMED reservation can be cancelled", map[string]any{
			"reservation_id": reservationID, "status": reservation.Status,
		})
	}
	if !actor.IsAdmin && reservation.CreatedByUserID != actor.UserID {
		return nil, forbiddenError("cancel is allowed only for owner or admin", map[string]any{"reservation_id": reservationID})
	}

	reservation.Status = ArtifactStatusCancelled
	reservation.CancelledAt = &now
	reservation.UpdatedAt = now
	e.addAudit(auditInput{
		TenantID:    reservation.TenantID,
		ActorUserID: actor.UserID,
		Action:      AuditReservationCancel,
		TargetType:  "RESERVATION",
		TargetID:    reservation.ID,
		RequestID:   actor.RequestID,
		Now:         now,
	})
	return deepCopy(reservation), nil
}
