// Package cache provides pluggable storage backends for API response caching.
//
// All backends implement the [Cache] interface and store opaque byte slices
// under string keys with an optional time-to-live. The satellite service
// layers its read-through behavior on top of this interface; backends only
// answer "is this key present and fresh".
//
// Available backends:
//   - memory: In-process map, session lifetime. The default.
//   - file: Directory of JSON entries, shared across runs (CLI usage).
//   - redis: Redis-backed, for long-lived or shared deployments.
//   - null: Stores nothing, every read misses. Disables caching.
package cache

import (
	"context"
	"time"
)

// Cache is the contract all storage backends implement.
//
// Get reports (data, true, nil) for a fresh entry, (nil, false, nil) for a
// miss or an expired entry, and a non-nil error only for backend failures.
// A ttl of 0 passed to Set means the entry never expires.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}
