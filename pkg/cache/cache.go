// Package cache stores pipeline intermediates and rendered artifacts.
//
// Three backends implement [Cache]: [FileCache] for the CLI, [RedisCache] for
// the server and [NullCache] when caching is disabled. Keys are produced by a
// [Keyer] so that the CLI and the server agree on them.
package cache

import (
	"context"
	"time"
)

// Cache is a byte-oriented key/value store with per-entry expiry.
// Implementations must be safe for concurrent use.
type Cache interface {
	// Get returns the value for key. A miss is reported as (nil, false, nil).
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A ttl of zero means no expiry.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}

// Default time-to-live per entry kind. Lineage changes whenever a workflow is
// published, so graphs expire quickly; options and artifacts are keyed by the
// graph hash and can live longer.
const (
	TTLGraph    = 5 * time.Minute
	TTLOption   = 24 * time.Hour
	TTLArtifact = 24 * time.Hour
)
