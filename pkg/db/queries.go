package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
)

// Values are stored as text, not jsonb, so the bytes read back are the bytes written.
const createKVTable = `CREATE TABLE IF NOT EXISTS kv_store (
	key        TEXT PRIMARY KEY,
	value      TEXT NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`

// EnsureSchema creates the key/value table if it is missing.
func (db *DB) EnsureSchema(ctx context.Context) error {
	if _, err := db.Pool.Exec(ctx, createKVTable); err != nil {
		return fmt.Errorf("failed to create kv_store: %w", err)
	}
	return nil
}

// GetValue returns the value stored under key, or nil if there is none.
func (db *DB) GetValue(ctx context.Context, key string) ([]byte, error) {
	var value string
	err := db.Pool.QueryRow(ctx,
		`SELECT value FROM kv_store WHERE key = $1`,
		key,
	).Scan(&value)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get value: %w", err)
	}
	return []byte(value), nil
}

// PutValue stores value under key, replacing any previous value.
func (db *DB) PutValue(ctx context.Context, key string, value []byte) error {
	_, err := db.Pool.Exec(ctx,
		`INSERT INTO kv_store (key, value, updated_at)
		 VALUES ($1, $2, now())
		 ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = now()`,
		key, string(value),
	)
	if err != nil {
		return fmt.Errorf("failed to put value: %w", err)
	}
	return nil
}

// HistoryBackend persists the history log as one row of kv_store.
type HistoryBackend struct {
	db  *DB
	key string
}

// NewHistoryBackend stores the log under key.
func NewHistoryBackend(db *DB, key string) *HistoryBackend {
	return &HistoryBackend{db: db, key: key}
}

func (b *HistoryBackend) Read(ctx context.Context) ([]byte, error) {
	return b.db.GetValue(ctx, b.key)
}

func (b *HistoryBackend) Write(ctx context.Context, data []byte) error {
	return b.db.PutValue(ctx, b.key, data)
}
