package cache

import (
	"context"
	"encoding/json"
	"strings"

	"dormgate/internal/config"
	"dormgate/internal/metrics"
)

// ResponseCache layers JSON codec and per-resource TTLs on top of a byte
// Cache. The resource is the key prefix up to the first ':'.
type ResponseCache struct {
	backend Cache
	cfg     config.CacheConfig
}

func NewResponseCache(backend Cache, cfg config.CacheConfig) *ResponseCache {
	return &ResponseCache{backend: backend, cfg: cfg}
}

func (c *ResponseCache) Get(ctx context.Context, key string, dest interface{}) (bool, error) {
	payload, err := c.backend.Get(ctx, key)
	if err != nil {
		return false, err
	}
	if payload == nil {
		metrics.IncCacheMiss()
		return false, nil
	}
	if err := json.Unmarshal(payload, dest); err != nil {
		return false, err
	}
	metrics.IncCacheHit()
	return true, nil
}

func (c *ResponseCache) Set(ctx context.Context, key string, value interface{}) error {
	payload, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return c.backend.Set(ctx, key, payload, c.cfg.TTLFor(resourceOf(key)))
}

func (c *ResponseCache) Invalidate(ctx context.Context, prefix string) error {
	return c.backend.Invalidate(ctx, prefix)
}

func resourceOf(key string) string {
	if idx := strings.IndexByte(key, ':'); idx > 0 {
		return key[:idx]
	}
	return key
}
