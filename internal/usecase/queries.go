package usecase

import (
	"context"

	"booking-hold-service/internal/engine"
)

type Queries interface {
	GetResource(ctx context.Context, resourceID, tenantID string) (*engine.Resource, error)
	ListResources(ctx context.Context, f engine.ResourceFilter) ([]*engine.Resource, error)
	GetResourceAvailability(ctx context.Context, resourceID, tenantID string, q engine.AvailabilityQuery) (*engine.ResourceAvailability, error)
	GetItem(ctx context.Context, itemID, tenantID string) (*engine.Item, error)
	ListItems(ctx context.Context, f engine.ItemFilter) ([]*engine.Item, error)
	GetItemAvailability(ctx context.Context, itemID, tenantID string) (*engine.ItemAvailability, error)
	GetHold(ctx context.Context, holdID string, actor engine.Actor) (*engine.Hold, error)
	ListHolds(ctx context.Context, f engine.HoldFilter) ([]*engine.Hold, error)
	GetBooking(ctx context.Context, bookingID, tenantID string) (*engine.Booking, error)
	ListBookings(ctx context.Context, f engine.BookingFilter) ([]*engine.Booking, error)
	GetReservation(ctx context.Context, reservationID, tenantID string) (*engine.Reservation, error)
	ListReservations(ctx context.Context, f engine.ReservationFilter) ([]*engine.Reservation, error)
	ListAuditLogs(ctx context.Context, f engine.AuditFilter) ([]*engine.AuditEntry, error)
}

type queriesImpl struct {
	gate   *Gate
	engine *engine.Engine
}

func NewQueries(gate *Gate, e *engine.Engine) Queries {
	return &queriesImpl{gate: gate, engine: e}
}

// read wraps an engine read in the gate's shared lock. The engine returns
// deep copies, so nothing escapes the lock by reference.
func read[T any](g *Gate, fn func() (T, error)) (T, error) {
	var out T
	var err error
	g.Read(func() { out, err = fn() })
	return out, err
}

func (q *queriesImpl) GetResource(_ context.Context, resourceID, tenantID string) (*engine.Resource, error) {
	return read(q.gate, func() (*engine.Resource, error) {
		return q.engine.GetResource(resourceID, tenantID)
	})
}

func (q *queriesImpl) ListResources(_ context.Context, f engine.ResourceFilter) ([]*engine.Resource, error) {
	return read(q.gate, func() ([]*engine.Resource, error) {
		return q.engine.ListResources(f), nil
	})
}

func (q *queriesImpl) GetResourceAvailability(_ context.Context, resourceID, tenantID string, query engine.AvailabilityQuery) (*engine.ResourceAvailability, error) {
	return read(q.gate, func() (*engine.ResourceAvailability, error) {
		// tenant check first so availability of foreign resources reads as absent
		if _, err := q.engine.GetResource(resourceID, tenantID); err != nil {
			return nil, err
		}
		return q.engine.GetResourceAvailability(resourceID, query)
	})
}

func (q *queriesImpl) GetItem(_ context.Context, itemID, tenantID string) (*engine.Item, error) {
	return read(q.gate, func() (*engine.Item, error) {
		return q.engine.GetItem(itemID, tenantID)
	})
}

func (q *queriesImpl) ListItems(_ context.Context, f engine.ItemFilter) ([]*engine.Item, error) {
	return read(q.gate, func() ([]*engine.Item, error) {
		return q.engine.ListItems(f), nil
	})
}

func (q *queriesImpl) GetItemAvailability(_ context.Context, itemID, tenantID string) (*engine.ItemAvailability, error) {
	return read(q.gate, func() (*engine.ItemAvailability, error) {
		// tenant check first so availability of foreign items reads as absent
		if _, err := q.engine.GetItem(itemID, tenantID); err != nil {
			return nil, err
		}
		return q.engine.GetItemAvailability(itemID, "")
	})
}

func (q *queriesImpl) GetHold(_ context.Context, holdID string, actor engine.Actor) (*engine.Hold, error) {
	return read(q.gate, func() (*engine.Hold, error) {
		return q.engine.GetHoldForActor(holdID, actor)
	})
}

func (q *queriesImpl) ListHolds(_ context.Context, f engine.HoldFilter) ([]*engine.Hold, error) {
	return read(q.gate, func() ([]*engine.Hold, error) {
		return q.engine.ListHolds(f), nil
	})
}

func (q *queriesImpl) GetBooking(_ context.Context, bookingID, tenantID string) (*engine.Booking, error) {
	return read(q.gate, func() (*engine.Booking, error) {
		return q.engine.GetBooking(bookingID, tenantID)
	})
}

func (q *queriesImpl) ListBookings(_ context.Context, f engine.BookingFilter) ([]*engine.Booking, error) {
	return read(q.gate, func() ([]*engine.Booking, error) {
		return q.engine.ListBookings(f), nil
	})
}

func (q *queriesImpl) GetReservation(_ context.Context, reservationID, tenantID string) (*engine.Reservation, error) {
	return read(q.gate, func() (*engine.Reservation, error) {
		return q.engine.GetReservation(reservationID, tenantID)
	})
}

func (q *queriesImpl) ListReservations(_ context.Context, f engine.ReservationFilter) ([]*engine.Reservation, error) {
	return read(q.gate, func() ([]*engine.Reservation, error) {
		return q.engine.ListReservations(f), nil
	})
}

func (q *queriesImpl) ListAuditLogs(_ context.Context, f engine.AuditFilter) ([]*engine.AuditEntry, error) {
	return read(q.gate, func() ([]*engine.AuditEntry, error) {
		return q.engine.ListAuditLogs(f)
	})
}
