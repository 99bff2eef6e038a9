// Package cache provides byte-level caching for the load, layout and render
// stages of the chart pipeline.
//
// Three backends implement [Cache]:
//
//   - [FileCache] stores entries as JSON files under a directory, for CLI use.
//   - [RedisCache] stores entries in Redis, for the HTTP server.
//   - [Disabled] returns a cache that stores nothing, for --no-cache runs.
//
// Keys are produced by a [Keyer] so that every stage names its entries the
// same way regardless of the backend:
//
//	keyer := cache.NewDefaultKeyer()
//	key := keyer.HierarchyKey("42", "business")
//	if data, hit, err := c.Get(ctx, key); err == nil && hit {
//	    // use data
//	}
package cache

import (
	"context"
	"time"
)

// Default time-to-live values per entry kind. Hierarchies change over the
// course of a day; layouts and artifacts are keyed by content hash and so
// never go stale.
const (
	TTLHierarchy = 15 * time.Minute
	TTLLayout    = 7 * 24 * time.Hour
	TTLArtifact  = 7 * 24 * time.Hour
)

// Cache stores opaque byte values under string keys.
//
// Get reports a miss as (nil, false, nil); errors are reserved for backend
// failures. A ttl of zero stores the entry without expiry.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// Disabled returns a Cache that misses on every lookup and discards writes.
func Disabled() Cache { return disabled{} }

type disabled struct{}

func (disabled) Get(context.Context, string) ([]byte, bool, error)        { return nil, false, nil }
func (disabled) Set(context.Context, string, []byte, time.Duration) error { return nil }
func (disabled) Delete(context.Context, string) error                     { return nil }
func (disabled) Close() error                                             { return nil }
