package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// keyPrefix namespaces our keys in a possibly shared Redis instance.
const keyPrefix = "bidtracker:"

// KVRedis is the Redis-backed store driver, selected with store.driver=redis.
type KVRedis struct {
	rdb *redis.Client
}

// NewKVRedis connects to Redis and pings it to fail fast on a bad address.
func NewKVRedis(ctx context.Context, addr, password string, db int) (*KVRedis, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("ping redis at %q: %w", addr, err)
	}
	return &KVRedis{rdb: rdb}, nil
}

var _ KV = (*KVRedis)(nil)

func (r *KVRedis) Get(ctx context.Context, key string) (string, bool, error) {
	value, err := r.rdb.Get(ctx, keyPrefix+key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("get key %q: %w", key, err)
	}
	return value, true, nil
}

func (r *KVRedis) Set(ctx context.Context, key, value string) error {
	// No expiry: the store survives until explicit removal.
	if err := r.rdb.Set(ctx, keyPrefix+key, value, 0).Err(); err != nil {
		return fmt.Errorf("set key %q: %w", key, err)
	}
	return nil
}

func (r *KVRedis) Remove(ctx context.Context, key string) error {
	if err := r.rdb.Del(ctx, keyPrefix+key).Err(); err != nil {
		return fmt.Errorf("del key %q: %w", key, err)
	}
	return nil
}

// Close releases the underlying client.
func (r *KVRedis) Close() error {
	return r.rdb.Close()
}
