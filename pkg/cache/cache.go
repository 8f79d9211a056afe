// Package cache provides byte-level caching with pluggable backends.
//
// # Backends
//
//   - [FileCache]: one JSON file per entry under a directory (CLI default)
//   - [RedisCache]: a shared Redis instance (used by the HTTP server)
//   - [NullCache]: never stores anything (tests, --no-cache)
//
// # Keys
//
// Callers build keys through a [Keyer] so that every cached artifact has a
// well-known namespace:
//
//	keyer := cache.NewDefaultKeyer()
//	key := keyer.SheetKey(url)            // raw CSV bytes
//	key = keyer.DataKey(cache.Hash(csv))  // parsed family data
//	key = keyer.ShareKey(id)              // shared view state
package cache

import (
	"context"
	"time"
)

// Cache stores opaque byte slices under string keys with an optional TTL.
// A TTL of zero means the entry does not expire.
type Cache interface {
	// Get returns the cached bytes and true on a hit. A miss is reported
	// as (nil, false, nil); errors are reserved for backend failures.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}
