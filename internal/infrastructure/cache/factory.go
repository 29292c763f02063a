package cache

import (
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
	"talka.backend/internal/config"
	"talka.backend/internal/domain/repositories"
)

var errRedisClientRequired = errors.New("redis backend selected but no redis client configured")

// NewStore builds the backend chosen once at startup. client may be nil for the
// memory backend.
func NewStore(cfg config.Config, client redis.Cmdable) (repositories.CacheStore, error) {
	switch backend := cfg.ResolveBackend(); backend {
	case config.CacheBackendRedis:
		if client == nil {
			return nil, errRedisClientRequired
		}
		return NewRedisCache(client), nil
	case config.CacheBackendMemory:
		return NewLRUCache(cfg.Cache.LRUCapacity), nil
	default:
		return nil, fmt.Errorf("unknown cache backend %q", backend)
	}
}
