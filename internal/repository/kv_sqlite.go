package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// KVSQLite persists key/value pairs in the kv_store table.
type KVSQLite struct {
	db *sql.DB
}

func NewKVSQLite(db *sql.DB) *KVSQLite {
	return &KVSQLite{db: db}
}

// Ensure implementation of the KV interface at compile time.
var _ KV = (*KVSQLite)(nil)

const (
	upsertKVSQL = `
		INSERT INTO kv_store (key, value, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET
			value=excluded.value,
			updated_at=excluded.updated_at
	`
	selectKVSQL = `SELECT value FROM kv_store WHERE key = ?`
	deleteKVSQL = `DELETE FROM kv_store WHERE key = ?`
)

// Get fetches a value by key. Returns ok=false when the key is absent.
func (r *KVSQLite) Get(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := r.db.QueryRowContext(ctx, selectKVSQL, key).Scan(&value)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("select key %q: %w", key, err)
	}
	return value, true, nil
}

// Set inserts or replaces the value for key.
func (r *KVSQLite) Set(ctx context.Context, key, value string) error {
	if _, err := r.db.ExecContext(ctx, upsertKVSQL, key, value, time.Now().UTC()); err != nil {
		return fmt.Errorf("upsert key %q: %w", key, err)
	}
	return nil
}

// Remove deletes the key. Removing an absent key is not an error.
func (r *KVSQLite) Remove(ctx context.Context, key string) error {
	if _, err := r.db.ExecContext(ctx, deleteKVSQL, key); err != nil {
		return fmt.Errorf("delete key %q: %w", key, err)
	}
	return nil
}
