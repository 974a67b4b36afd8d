package cache

import (
	"context"
	"time"
)

// Cache stores generated descriptions by key.
type Cache interface {
	// Get returns the stored value and whether a live entry was found.
	Get(ctx context.Context, key string) (string, bool, error)
	// Put stores value for the duration chosen by the cache's TTLPolicy.
	Put(ctx context.Context, key, value string) error
	Clear(ctx context.Context) error
}

// Pinger is implemented by caches backed by a remote service.
type Pinger interface {
	Ping(ctx context.Context) error
}

// TTLPolicy returns how long value should live. Zero means do not store.
type TTLPolicy func(value string) time.Duration

// FixedTTL stores every value, including empty ones, for d.
func FixedTTL(d time.Duration) TTLPolicy {
	return func(string) time.Duration { return d }
}

// SuccessOnlyTTL stores non-empty values for d and drops empty ones.
func SuccessOnlyTTL(d time.Duration) TTLPolicy {
	return func(value string) time.Duration {
		if value == "" {
			return 0
		}
		return d
	}
}
