package statestore

import (
	"context"
	"encoding/json"
	"errors"

	"booking-hold-service/internal/engine"
	"booking-hold-service/internal/pkg/errs"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const snapshotTableDDL = `
CREATE TABLE IF NOT EXISTS engine_snapshot (
    id         smallint PRIMARY KEY DEFAULT 1 CHECK (id = 1),
    body       jsonb NOT NULL,
    updated_at timestamptz NOT NULL DEFAULT now()
)`

// PostgresStore keeps the whole snapshot as one jsonb row. A single-writer
// engine has no use for per-entity rows; the row swap is atomic and the
// upsert keeps exactly one generation live.
type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(ctx context.Context, dsn string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, errs.Wrap(err, "failed to create pgx pool")
	}
	if _, err := pool.Exec(ctx, snapshotTableDDL); err != nil {
		pool.Close()
		return nil, errs.Wrap(err, "failed to ensure snapshot table")
	}
	return &PostgresStore{pool: pool}, nil
}

func (s *PostgresStore) Load(ctx context.Context) (*engine.Snapshot, error) {
	var raw []byte
	err := s.pool.QueryRow(ctx, `SELECT body FROM engine_snapshot WHERE id = 1`).Scan(&raw)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, errs.Wrap(err, "failed to load snapshot row")
	}
	var snapshot engine.Snapshot
	if err := json.Unmarshal(raw, &snapshot); err != nil {
		return nil, errs.Wrap(err, "failed to decode snapshot row")
	}
	return &snapshot, nil
}

func (s *PostgresStore) Save(ctx context.Context, snapshot *engine.Snapshot) error {
	raw, err := json.Marshal(snapshot)
	if err != nil {
		return errs.Wrap(err, "failed to encode snapshot")
	}
	_, err = s.pool.Exec(ctx, `
		INSERT INTO engine_snapshot (id, body, updated_at) VALUES (1, $1, now())
		ON CONFLICT (id) DO UPDATE SET body = EXCLUDED.body, updated_at = now()`, raw)
	if err != nil {
		return errs.Wrap(err, "failed to upsert snapshot row")
	}
	return nil
}

func (s *PostgresStore) Close() {
	s.pool.Close()
}
