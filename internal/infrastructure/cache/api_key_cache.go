package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"talka.backend/internal/domain/entities"
	domainerrors "talka.backend/internal/domain/errors"
	"talka.backend/internal/domain/repositories"
	"talka.backend/internal/infrastructure/metrics"
)

const apiKeyPrefix = "apikey:"

// ApiKeyCacheKey is the cache key of the record with the given token hash.
func ApiKeyCacheKey(tokenHash string) string {
	return apiKeyPrefix + tokenHash
}

// ApiKeyCache stores ApiKey records keyed by token hash.
type ApiKeyCache struct {
	store   repositories.CacheStore
	ttl     time.Duration
	metrics *metrics.Registry
}

func NewApiKeyCache(store repositories.CacheStore, ttl time.Duration, m *metrics.Registry) *ApiKeyCache {
	return &ApiKeyCache{store: store, ttl: ttl, metrics: m}
}

// Get returns nil, nil on a miss. Backend and decode failures are returned as errors.
func (c *ApiKeyCache) Get(ctx context.Context, tokenHash string) (*entities.ApiKey, error) {
	raw, err := c.store.Get(ctx, ApiKeyCacheKey(tokenHash))
	if err != nil {
		if errors.Is(err, domainerrors.ErrCacheMiss) {
			c.metrics.CacheLookup("apikey", metrics.ResultMiss)
			return nil, nil
		}
		c.metrics.CacheLookup("apikey", metrics.ResultError)
		return nil, err
	}

	var key entities.ApiKey
	if err := json.Unmarshal(raw, &key); err != nil {
		c.metrics.CacheLookup("apikey", metrics.ResultError)
		return nil, fmt.Errorf("decode cached api key: %w", err)
	}
	c.metrics.CacheLookup("apikey", metrics.ResultHit)
	return &key, nil
}

func (c *ApiKeyCache) Set(ctx context.Context, key *entities.ApiKey) error {
	raw, err := json.Marshal(key)
	if err != nil {
		return fmt.Errorf("encode api key: %w", err)
	}
	return c.store.Set(ctx, ApiKeyCacheKey(key.TokenHash), raw, c.ttl)
}

func (c *ApiKeyCache) Delete(ctx context.Context, tokenHash string) error {
	return c.store.Delete(ctx, ApiKeyCacheKey(tokenHash))
}
