// Package sqlstore persists the world snapshot blob and per-tick fence
// values to PostgreSQL. Grounded on original_source's executor/mp_executor
// sqlx-based world-state persistence (confirmed by error.rs's
// MpExcError::SqlxError variant), reworked against
// github.com/jmoiron/sqlx and github.com/lib/pq.
package sqlstore

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/klauspost/compress/zstd"
	_ "github.com/lib/pq"
)

// Store wraps a PostgreSQL connection holding the serialized world blob
// table and the fence-value table used by pkg/distributed for
// WORLD_TIME_FENCE/UPDATE_FENCE bookkeeping.
type Store struct {
	db *sqlx.DB
}

// Open connects to url (SPEC_FULL.md's SIM_POSTGRES_URL) and ensures the
// store's tables exist.
func Open(ctx context.Context, url string) (*Store, error) {
	db, err := sqlx.ConnectContext(ctx, "postgres", url)
	if err != nil {
		return nil, fmt.Errorf("sqlstore: connect: %w", err)
	}
	s := &Store{db: db}
	if err := s.migrate(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `
CREATE TABLE IF NOT EXISTS world_snapshots (
	id SERIAL PRIMARY KEY,
	world_time BIGINT NOT NULL,
	blob BYTEA NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE TABLE IF NOT EXISTS tick_fences (
	name TEXT PRIMARY KEY,
	value BIGINT NOT NULL
);
`)
	if err != nil {
		return fmt.Errorf("sqlstore: migrate: %w", err)
	}
	return nil
}

// Close closes the underlying connection pool.
func (s *Store) Close() error { return s.db.Close() }

// SaveSnapshot persists a serialized world blob at worldTime, zstd-compressed
// (github.com/klauspost/compress) since a full-world msgpack snapshot
// compresses well and these rows are write-once/read-rarely (only on
// drone/queen failover), making compression time a good trade for storage
// and network cost.
func (s *Store) SaveSnapshot(ctx context.Context, worldTime uint64, blob []byte) error {
	compressed, err := compressBlob(blob)
	if err != nil {
		return fmt.Errorf("sqlstore: compress snapshot: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO world_snapshots (world_time, blob) VALUES ($1, $2)`,
		worldTime, compressed)
	if err != nil {
		return fmt.Errorf("sqlstore: save snapshot: %w", err)
	}
	return nil
}

// LatestSnapshot returns the most recently saved blob, decompressed, and its
// world time.
func (s *Store) LatestSnapshot(ctx context.Context) (worldTime uint64, blob []byte, err error) {
	row := struct {
		WorldTime uint64 `db:"world_time"`
		Blob      []byte `db:"blob"`
	}{}
	err = s.db.GetContext(ctx, &row,
		`SELECT world_time, blob FROM world_snapshots ORDER BY id DESC LIMIT 1`)
	if err != nil {
		return 0, nil, fmt.Errorf("sqlstore: latest snapshot: %w", err)
	}
	decompressed, err := decompressBlob(row.Blob)
	if err != nil {
		return 0, nil, fmt.Errorf("sqlstore: decompress snapshot: %w", err)
	}
	return row.WorldTime, decompressed, nil
}

func compressBlob(blob []byte) ([]byte, error) {
	enc, err := zstd.NewWriter(nil)
	if err != nil {
		return nil, err
	}
	defer enc.Close()
	return enc.EncodeAll(blob, make([]byte, 0, len(blob))), nil
}

func decompressBlob(blob []byte) ([]byte, error) {
	dec, err := zstd.NewReader(nil)
	if err != nil {
		return nil, err
	}
	defer dec.Close()
	return dec.DecodeAll(blob, nil)
}

// SetFence upserts a named fence value (WORLD_TIME_FENCE, UPDATE_FENCE).
func (s *Store) SetFence(ctx context.Context, name string, value uint64) error {
	_, err := s.db.ExecContext(ctx, `
INSERT INTO tick_fences (name, value) VALUES ($1, $2)
ON CONFLICT (name) DO UPDATE SET value = EXCLUDED.value`, name, value)
	if err != nil {
		return fmt.Errorf("sqlstore: set fence %s: %w", name, err)
	}
	return nil
}

// Fence reads a named fence value, returning 0 if it has never been set.
func (s *Store) Fence(ctx context.Context, name string) (uint64, error) {
	var value uint64
	err := s.db.GetContext(ctx, &value, `SELECT value FROM tick_fences WHERE name = $1`, name)
	if err != nil {
		if err.Error() == "sql: no rows in result set" {
			return 0, nil
		}
		return 0, fmt.Errorf("sqlstore: fence %s: %w", name, err)
	}
	return value, nil
}
