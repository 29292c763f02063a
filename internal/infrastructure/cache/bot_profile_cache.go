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

const botProfilePrefix = "bot_profile:"

// ErrIncompleteProfile is returned by Set for a profile missing any part.
var ErrIncompleteProfile = errors.New("bot profile is incomplete")

func BotProfileCacheKey(botID string) string {
	return botProfilePrefix + botID
}

// BotProfileCache stores assembled bot profiles. It never reads the database.
type BotProfileCache struct {
	store   repositories.CacheStore
	ttl     time.Duration
	metrics *metrics.Registry
}

func NewBotProfileCache(store repositories.CacheStore, ttl time.Duration, m *metrics.Registry) *BotProfileCache {
	return &BotProfileCache{store: store, ttl: ttl, metrics: m}
}

// Get returns nil, nil on a miss.
func (c *BotProfileCache) Get(ctx context.Context, botID string) (*entities.BotProfile, error) {
	raw, err := c.store.Get(ctx, BotProfileCacheKey(botID))
	if err != nil {
		if errors.Is(err, domainerrors.ErrCacheMiss) {
			c.metrics.CacheLookup("bot_profile", metrics.ResultMiss)
			return nil, nil
		}
		c.metrics.CacheLookup("bot_profile", metrics.ResultError)
		return nil, err
	}

	var profile entities.BotProfile
	if err := json.Unmarshal(raw, &profile); err != nil {
		c.metrics.CacheLookup("bot_profile", metrics.ResultError)
		return nil, fmt.Errorf("decode cached bot profile: %w", err)
	}
	if !profile.Complete() {
		c.metrics.CacheLookup("bot_profile", metrics.ResultError)
		return nil, ErrIncompleteProfile
	}
	c.metrics.CacheLookup("bot_profile", metrics.ResultHit)
	return &profile, nil
}

func (c *BotProfileCache) Set(ctx context.Context, botID string, profile *entities.BotProfile) error {
	if !profile.Complete() {
		return ErrIncompleteProfile
	}
	raw, err := json.Marshal(profile)
	if err != nil {
		return fmt.Errorf("encode bot profile: %w", err)
	}
	return c.store.Set(ctx, BotProfileCacheKey(botID), raw, c.ttl)
}

func (c *BotProfileCache) Delete(ctx context.Context, botID string) error {
	return c.store.Delete(ctx, BotProfileCacheKey(botID))
}
