package usecase

import (
	"context"
	"time"

	"booking-hold-service/internal/engine"
)

type Commands interface {
	CreateResource(ctx context.Context, in engine.CreateResourceInput) (*engine.Resource, error)
	UpdateResource(ctx context.Context, resourceID string, p engine.UpdateResourcePatch, actor engine.Actor) (*engine.Resource, error)
	CreateItem(ctx context.Context, in engine.CreateItemInput) (*engine.Item, error)
	UpdateItem(ctx context.Context, itemID string, p engine.UpdateItemPatch, actor engine.Actor) (*engine.Item, error)
	CreateHold(ctx context.Context, in engine.CreateHoldInput) (*engine.Hold, error)
	ConfirmHold(ctx context.Context, holdID string, actor engine.Actor) (*engine.ConfirmResult, error)
	CancelHold(ctx context.Context, holdID string, actor engine.Actor) (*engine.Hold, error)
	CancelBooking(ctx context.Context, bookingID string, actor engine.Actor) (*engine.Booking, error)
	CancelReservation(ctx context.Context, reservationID string, actor engine.Actor) (*engine.Reservation, error)
	ExpireHolds(ctx context.Context, now *time.Time) (int, error)
}

type commandsImpl struct {
	gate   *Gate
	engine *engine.Engine
}

func NewCommands(gate *Gate, e *engine.Engine) Commands {
	return &commandsImpl{gate: gate, engine: e}
}

// mutate funnels a returning engine call through the gate. The result travels
// through a buffered channel rather than a shared variable: a caller whose
// context is cancelled mid-flight abandons the call while the worker may still
// be executing the closure, and the two must never touch the same memory.
func mutate[T any](ctx context.Context, g *Gate, fn func() (T, error)) (T, error) {
	results := make(chan T, 1)
	err := g.Mutate(ctx, func() error {
		v, innerErr := fn()
		if innerErr != nil {
			return innerErr
		}
		results <- v
		return nil
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return <-results, nil
}

func (c *commandsImpl) CreateResource(ctx context.Context, in engine.CreateResourceInput) (*engine.Resource, error) {
	return mutate(ctx, c.gate, func() (*engine.Resource, error) {
		return c.engine.CreateResource(in)
	})
}

func (c *commandsImpl) UpdateResource(ctx context.Context, resourceID string, p engine.UpdateResourcePatch, actor engine.Actor) (*engine.Resource, error) {
	return mutate(ctx, c.gate, func() (*engine.Resource, error) {
		return c.engine.UpdateResource(resourceID, p, actor)
	})
}

func (c *commandsImpl) CreateItem(ctx context.Context, in engine.CreateItemInput) (*engine.Item, error) {
	return mutate(ctx, c.gate, func() (*engine.Item, error) {
		return c.engine.CreateItem(in)
	})
}

func (c *commandsImpl) UpdateItem(ctx context.Context, itemID string, p engine.UpdateItemPatch, actor engine.Actor) (*engine.Item, error) {
	return mutate(ctx, c.gate, func() (*engine.Item, error) {
		return c.engine.UpdateItem(itemID, p, actor)
	})
}

func (c *commandsImpl) CreateHold(ctx context.Context, in engine.CreateHoldInput) (*engine.Hold, error) {
	return mutate(ctx, c.gate, func() (*engine.Hold, error) {
		return c.engine.CreateHold(in)
	})
}

func (c *commandsImpl) ConfirmHold(ctx context.Context, holdID string, actor engine.Actor) (*engine.ConfirmResult, error) {
	return mutate(ctx, c.gate, func() (*engine.ConfirmResult, error) {
		return c.engine.ConfirmHold(holdID, actor)
	})
}

func (c *commandsImpl) CancelHold(ctx context.Context, holdID string, actor engine.Actor) (*engine.Hold, error) {
	return mutate(ctx, c.gate, func() (*engine.Hold, error) {
		return c.engine.CancelHold(holdID, actor)
	})
}

func (c *commandsImpl) CancelBooking(ctx context.Context, bookingID string, actor engine.Actor) (*engine.Booking, error) {
	return mutate(ctx, c.gate, func() (*engine.Booking, error) {
		return c.engine.CancelBooking(bookingID, actor)
	})
}

func (c *commandsImpl) CancelReservation(ctx context.Context, reservationID string, actor engine.Actor) (*engine.Reservation, error) {
	return mutate(ctx, c.gate, func() (*engine.Reservation, error) {
		return c.engine.CancelReservation(reservationID, actor)
	})
}

func (c *commandsImpl) ExpireHolds(ctx context.Context, now *time.Time) (int, error) {
	return mutate(ctx, c.gate, func() (int, error) {
		return c.engine.ExpireHolds(now), nil
	})
}
