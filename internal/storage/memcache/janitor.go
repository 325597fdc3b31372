package memcache

import (
	"context"
	"time"

	"github.com/sandevgo/tuskmem/pkg/log"
)

const DefaultSweepInterval = time.Minute

// Janitor periodically removes expired entries so idle users don't pin
// memory until their key is read again.
type Janitor struct {
	cache    *Cache
	interval time.Duration
}

func NewJanitor(cache *Cache, interval time.Duration) *Janitor {
	if interval <= 0 {
		interval = DefaultSweepInterval
	}
	return &Janitor{
		cache:    cache,
		interval: interval,
	}
}

func (j *Janitor) Start(ctx context.Context) error {
	ctx = log.WithComponent(ctx, "cache_janitor")
	logger := log.FromCtx(ctx)
	logger.Info().Dur("interval", j.interval).Msg("starting process cache janitor")

	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info().Msg("shutting down process cache janitor")
			return nil
		case <-ticker.C:
			if removed := j.cache.Sweep(); removed > 0 {
				logger.Debug().
					Int("removed", removed).
					Int("remaining", j.cache.Len()).
					Msg("swept expired records")
			}
		}
	}
}

func (j *Janitor) Shutdown(ctx context.Context) error {
	return nil
}
