// Package cache holds short-lived copies of successful backend GET responses.
// Entries are keyed by resource plus a canonical parameter string and expire
// after a per-resource TTL; write operations invalidate their resource prefix.
package cache

import (
	"context"
	"sort"
	"strings"
	"time"
)

type Cache interface {
	// Get returns the cached payload for key, or nil when absent or expired.
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, payload []byte, ttl time.Duration) error
	// Invalidate drops every entry whose key starts with prefix.
	Invalidate(ctx context.Context, prefix string) error
}

// Key builds a cache key from a resource name and its request parameters.
// Parameters are sorted so equivalent requests share an entry:
// Key("bookings", map[string]string{"page": "1"}) -> "bookings:page=1".
func Key(resource string, params map[string]string) string {
	if len(params) == 0 {
		return resource
	}

	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteString(resource)
	for _, k := range keys {
		b.WriteByte(':')
		b.WriteString(k)
		b.WriteByte('=')
		b.WriteString(params[k])
	}
	return b.String()
}
