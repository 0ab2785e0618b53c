// Package cache stores pipeline products keyed by content.
//
// # Overview
//
// The pipeline caches three things: decoded documents, computed frames and
// rendered artifacts. Keys come from a [Keyer] and always embed the content
// hash of their input, so a changed document never hits a stale entry.
//
// # Implementations
//
//   - [FileCache]: one JSON file per entry, used by the CLI
//   - [RedisCache]: shared cache for servers
//   - [NullCache]: disables caching
//
// Cache errors are never fatal to the pipeline; a failed Get is a miss and
// a failed Set is logged.
package cache

import (
	"context"
	"time"
)

// Cache is a byte-oriented key/value store with expiration.
type Cache interface {
	// Get returns the value for key. A missing or expired entry is reported
	// with ok == false and a nil error.
	Get(ctx context.Context, key string) (data []byte, ok bool, err error)

	// Set stores data under key. A zero ttl means no expiration.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	Close() error
}

// Entry lifetimes.
const (
	TTLDocument = 7 * 24 * time.Hour
	TTLLayout   = 24 * time.Hour
	TTLArtifact = 24 * time.Hour
)
