// Package cache holds short-lived copies of upstream provider responses.
package cache

import (
	"context"
	"time"
)

// DefaultTTL is how long provider responses stay fresh.
const DefaultTTL = 10 * time.Minute

// Cache is a TTL key/value store. Entries past their TTL read as misses.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte) error
	// Clear drops every entry owned by this cache.
	Clear(ctx context.Context) error
	Close() error
}
