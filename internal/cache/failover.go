package cache

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
)

// FailoverCache serves from redis and falls back to the in-process cache when
// redis misbehaves, retrying the primary after a minute.
type FailoverCache struct {
	primary   Cache
	fallback  Cache
	logger    *zerolog.Logger
	isDown    atomic.Bool
	lastCheck atomic.Int64 // unix nanos
}

func NewFailoverCache(primary, fallback Cache, logger *zerolog.Logger) *FailoverCache {
	return &FailoverCache{
		primary:  primary,
		fallback: fallback,
		logger:   logger,
	}
}

func (c *FailoverCache) markDown(err error) {
	c.logger.Error().Err(err).Msg("Primary cache failed, falling back to memory")
	c.isDown.Store(true)
	c.lastCheck.Store(time.Now().UnixNano())
}

func (c *FailoverCache) shouldRetryPrimary() bool {
	return time.Since(time.Unix(0, c.lastCheck.Load())) > time.Minute
}

func (c *FailoverCache) Get(ctx context.Context, key string) ([]byte, error) {
	if !c.isDown.Load() {
		payload, err := c.primary.Get(ctx, key)
		if err == nil {
			return payload, nil
		}
		c.markDown(err)
	}

	if c.isDown.Load() && c.shouldRetryPrimary() {
		payload, err := c.primary.Get(ctx, key)
		if err == nil {
			c.isDown.Store(false)
			return payload, nil
		}
		c.lastCheck.Store(time.Now().UnixNano())
	}

	return c.fallback.Get(ctx, key)
}

func (c *FailoverCache) Set(ctx context.Context, key string, payload []byte, ttl time.Duration) error {
	if !c.isDown.Load() {
		err := c.primary.Set(ctx, key, payload, ttl)
		if err == nil {
			return nil
		}
		c.markDown(err)
	}
	return c.fallback.Set(ctx, key, payload, ttl)
}

func (c *FailoverCache) Invalidate(ctx context.Context, prefix string) error {
	// Invalidation must reach both tiers: a stale fallback entry could
	// otherwise resurface after recovery.
	var primaryErr error
	if !c.isDown.Load() {
		primaryErr = c.primary.Invalidate(ctx, prefix)
		if primaryErr != nil {
			c.markDown(primaryErr)
		}
	}
	return c.fallback.Invalidate(ctx, prefix)
}
