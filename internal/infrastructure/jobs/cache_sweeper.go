package jobs

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
	"talka.backend/pkg/logger"
)

// ExpiringCache is a cache that can drop its expired entries in bulk.
type ExpiringCache interface {
	PurgeExpired() int
}

// CacheSweeperJob periodically purges expired entries from the in-process cache.
type CacheSweeperJob struct {
	cache    ExpiringCache
	interval time.Duration
	stop     chan struct{}
	stopOnce sync.Once
}

func NewCacheSweeperJob(cache ExpiringCache, interval time.Duration) *CacheSweeperJob {
	if interval <= 0 {
		interval = time.Minute
	}
	return &CacheSweeperJob{
		cache:    cache,
		interval: interval,
		stop:     make(chan struct{}),
	}
}

func (j *CacheSweeperJob) Start(ctx context.Context) {
	logger.Info(ctx, "Starting cache sweeper job", zap.Duration("interval", j.interval))

	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info(ctx, "Cache sweeper job stopped (context cancelled)")
			return
		case <-j.stop:
			logger.Info(ctx, "Cache sweeper job stopped")
			return
		case <-ticker.C:
			j.sweep(ctx)
		}
	}
}

// Stop is safe to call more than once.
func (j *CacheSweeperJob) Stop() {
	j.stopOnce.Do(func() { close(j.stop) })
}

func (j *CacheSweeperJob) sweep(ctx context.Context) int {
	removed := j.cache.PurgeExpired()
	if removed > 0 {
		logger.Debug(ctx, "Purged expired cache entries", zap.Int("removed", removed))
	}
	return removed
}
