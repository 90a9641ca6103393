package cache

import (
	"context"
	"strings"
	"sync"
	"time"
)

type memoryEntry struct {
	payload   []byte
	expiresAt time.Time
}

// MemoryCache is the in-process fallback cache. Expired entries are dropped on
// read and swept lazily on writes, which keeps the map bounded without a
// background goroutine.
type MemoryCache struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry

	// sweep at most once per sweepEvery to avoid rescanning on every Set
	sweepEvery time.Duration
	lastSweep  time.Time
}

func NewMemoryCache() *MemoryCache {
	return &MemoryCache{
		entries:    make(map[string]memoryEntry),
		sweepEvery: time.Minute,
	}
}

func (c *MemoryCache) Get(ctx context.Context, key string) ([]byte, error) {
	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok {
		return nil, nil
	}
	if time.Now().After(entry.expiresAt) {
		c.mu.Lock()
		delete(c.entries, key)
		c.mu.Unlock()
		return nil, nil
	}
	return entry.payload, nil
}

func (c *MemoryCache) Set(ctx context.Context, key string, payload []byte, ttl time.Duration) error {
	now := time.Now()

	c.mu.Lock()
	defer c.mu.Unlock()

	if now.Sub(c.lastSweep) > c.sweepEvery {
		for k, e := range c.entries {
			if now.After(e.expiresAt) {
				delete(c.entries, k)
			}
		}
		c.lastSweep = now
	}

	c.entries[key] = memoryEntry{payload: payload, expiresAt: now.Add(ttl)}
	return nil
}

func (c *MemoryCache) Invalidate(ctx context.Context, prefix string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for k := range c.entries {
		if strings.HasPrefix(k, prefix) {
			delete(c.entries, k)
		}
	}
	return nil
}
