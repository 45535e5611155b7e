// Package cache holds rendered page bodies for a short time so repeated
// requests for the same URL skip the store.
package cache

import (
	"context"
	"time"
)

// DefaultTTL is how long a cached page stays fresh.
const DefaultTTL = 20 * time.Second

// Store is a key/value store for rendered pages. Implementations expire
// entries on their own; Clear drops everything at once.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte) error
	Clear(ctx context.Context) error
}

// RedisPrefix namespaces the blog's keys in a shared Redis.
const RedisPrefix = "blog:"

// Open returns a RedisStore when redisURL is set and a MemoryStore otherwise.
func Open(ctx context.Context, redisURL string, size int, ttl time.Duration) (Store, error) {
	if redisURL == "" {
		return NewMemoryStore(size, ttl), nil
	}
	store, err := NewRedisStoreFromURL(ctx, redisURL, RedisPrefix, ttl)
	if err != nil {
		return nil, err
	}
	return store, nil
}
