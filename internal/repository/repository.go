package repository

import (
	"context"
	"database/sql"
)

// Persisted keys. Callers own JSON (de)serialization of the values and fall
// back to defaults when a stored blob fails to parse.
const (
	KeySheetURL = "googleSheetUrl"
	KeyUsers    = "appUsers"
	KeySession  = "userSession"
)

// KV is the persisted store adapter: string values by key, durable across
// restarts, removed only explicitly.
type KV interface {
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string) error
	Remove(ctx context.Context, key string) error
}

type Repository struct {
	KV KV
}

// NewRepository wires the SQLite-backed store.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{KV: NewKVSQLite(db)}
}

// NewRedisRepository wires the Redis-backed store.
func NewRedisRepository(kv *KVRedis) *Repository {
	return &Repository{KV: kv}
}
