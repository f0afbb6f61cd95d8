// Package cache memoizes rendered structure images.
//
// Producing DOT text for a molecule is cheap, but turning it into SVG or
// PNG runs an embedded Graphviz build and costs orders of magnitude more.
// The CLI render command and the HTTP render endpoint therefore key
// finished images by a hash of the DOT source and reuse them on later
// requests. Identical molecule states produce identical DOT, so a hit is
// always safe to serve; any change to atoms, bonds, charges, or in-flight
// transition progress changes the key.
package cache

import (
	"context"
	"time"
)

// Cache stores rendered images keyed by content hash.
type Cache interface {
	// Get retrieves a value. The second return reports whether the key
	// was present and unexpired.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores a value. A ttl of zero or less means the entry never
	// expires.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes a value. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases any resources held by the cache.
	Close() error
}
