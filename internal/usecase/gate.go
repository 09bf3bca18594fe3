package usecase

import (
	"context"
	"log/slog"
	"sync"

	"booking-hold-service/internal/engine"
	"booking-hold-service/internal/pkg/errs"
)

// Store persists engine snapshots. Load returning (nil, nil) means no
// snapshot exists yet and the engine starts empty.
type Store interface {
	Load(ctx context.Context) (*engine.Snapshot, error)
	Save(ctx context.Context, s *engine.Snapshot) error
}

type job struct {
	ctx  context.Context
	fn   func() error
	done chan error
}

// Gate serializes all mutations through a single worker goroutine, FIFO, and
// flushes a snapshot to the Store after each applied mutation before the
// caller is released. Reads bypass the queue and run under a shared lock, so
// they see fully applied states only, never a mutation in progress.
type Gate struct {
	engine *engine.Engine
	store  Store
	logger *slog.Logger

	mu   sync.RWMutex
	jobs chan job

	stopOnce sync.Once
	stopped  chan struct{}
}

func NewGate(e *engine.Engine, store Store, logger *slog.Logger) *Gate {
	return &Gate{
		engine:  e,
		store:   store,
		logger:  logger,
		jobs:    make(chan job, 64),
		stopped: make(chan struct{}),
	}
}

// Start launches the worker loop. Call once; after Stop, jobs still queued
// are failed rather than applied so no caller blocks forever.
func (g *Gate) Start() {
	go g.run()
}

func (g *Gate) Stop() {
	g.stopOnce.Do(func() { close(g.stopped) })
}

func (g *Gate) run() {
	for {
		select {
		case <-g.stopped:
			// drain what already queued so no caller hangs
			for {
				select {
				case j := <-g.jobs:
					j.done <- errs.New("gate is stopped")
				default:
					return
				}
			}
		case j := <-g.jobs:
			j.done <- g.apply(j)
		}
	}
}

func (g *Gate) apply(j job) error {
	if err := j.ctx.Err(); err != nil {
		return errs.Wrap(err, "mutation abandoned before execution")
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	if err := j.fn(); err != nil {
		return err
	}

	// Mutation applied; persistence failure still surfaces to the caller so
	// it knows durability was not achieved, but the in-memory state keeps the
	// change (matching the snapshot that will be written on the next success).
	snapshot := g.engine.ToSnapshot()
	if err := g.store.Save(j.ctx, snapshot); err != nil {
		g.logger.Error("snapshot save failed after mutation", "error", err)
		return errs.Wrap(err, "failed to persist snapshot")
	}
	return nil
}

// Mutate submits fn to the worker and blocks until it has been applied and
// persisted, or the context is cancelled while still queued.
func (g *Gate) Mutate(ctx context.Context, fn func() error) error {
	j := job{ctx: ctx, fn: fn, done: make(chan error, 1)}
	select {
	case g.jobs <- j:
	case <-ctx.Done():
		return errs.Wrap(ctx.Err(), "mutation not accepted")
	case <-g.stopped:
		return errs.New("gate is stopped")
	}
	select {
	case err := <-j.done:
		return err
	case <-ctx.Done():
		// the job may still run; the result is discarded but state stays
		// consistent because the worker applies it atomically
		return errs.Wrap(ctx.Err(), "mutation result abandoned")
	case <-g.stopped:
		// the worker may have exited between accepting the job and here
		select {
		case err := <-j.done:
			return err
		default:
			return errs.New("gate is stopped")
		}
	}
}

// Read runs fn under the shared lock.
func (g *Gate) Read(fn func()) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	fn()
}
