package cache

import (
	"crypto/sha256"
	"encoding/hex"
)

// Hash returns the SHA-256 of data as a 64-character hex string. Render
// callers hash the DOT source so that any visible change to the drawing
// produces a new cache key.
func Hash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
