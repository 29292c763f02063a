package repositories

import (
	"context"
	"time"
)

// CacheStore is a namespaced key/value cache with per-entry TTL. Get returns
// errors.ErrCacheMiss for absent or expired keys; any other error is a backend
// failure.
type CacheStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}
