// Package cache provides the byte-oriented cache used for embeddings,
// upstream API responses, and rendered summaries. Three backends exist:
// file (CLI usage), redis (server usage), and null (disabled).
package cache

import (
	"context"
	"time"
)

// Cache is a byte-oriented key/value store with TTL support.
type Cache interface {
	// Get retrieves a value. hit is false on a miss; a miss is not an error.
	Get(ctx context.Context, key string) (data []byte, hit bool, err error)

	// Set stores a value. A ttl of 0 means no expiration.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes a value. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}
