// Package pgstore is a PostgreSQL-backed quota.Store for deployments where
// several server processes share one ledger.
package pgstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spigell/recruitai/internal/quota"
)

const schema = `CREATE TABLE IF NOT EXISTS kv_store (
	key        TEXT PRIMARY KEY,
	value      BYTEA NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
)`

type querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// Store keeps quota state in the kv_store table.
type Store struct {
	db   querier
	pool *pgxpool.Pool
}

// Connect opens a pool, verifies it and makes sure the table exists.
func Connect(ctx context.Context, databaseURL string) (*Store, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if _, err := pool.Exec(ctx, schema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to create kv_store table: %w", err)
	}

	return &Store{db: pool, pool: pool}, nil
}

func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	var value []byte
	err := s.db.QueryRow(ctx, `SELECT value FROM kv_store WHERE key = $1`, key).Scan(&value)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, quota.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read key %q: %w", key, err)
	}
	return value, nil
}

// CompareAndSwap relies on row-level atomicity of a single statement.
func (s *Store) CompareAndSwap(ctx context.Context, key string, old, next []byte) (bool, error) {
	var (
		tag pgconn.CommandTag
		err error
	)

	if old == nil {
		tag, err = s.db.Exec(ctx,
			`INSERT INTO kv_store (key, value) VALUES ($1, $2)
			 ON CONFLICT (key) DO NOTHING`,
			key, next,
		)
	} else {
		tag, err = s.db.Exec(ctx,
			`UPDATE kv_store SET value = $3, updated_at = NOW()
			 WHERE key = $1 AND value = $2`,
			key, old, next,
		)
	}
	if err != nil {
		return false, fmt.Errorf("failed to write key %q: %w", key, err)
	}

	return tag.RowsAffected() == 1, nil
}
