// Package store provides snapshot persistence for mechanism sessions.
//
// This package defines the storage interface for captured snapshots, with
// implementations for different backends:
//   - memory: In-memory storage for development/testing
//   - file: File-based storage for CLI usage
//   - redis: Redis-backed storage for multi-instance deployments
//   - mongo: MongoDB-backed storage when snapshots need querying at rest
//
// # Usage
//
// Create a store:
//
//	// Development
//	st := store.NewMemory()
//
//	// CLI
//	st, err := store.NewFileStore("")  // Uses ~/.config/curlyarrow/snapshots/
//
//	// Production
//	st, err := store.NewRedisStore(ctx, store.RedisConfig{
//	    Addr: "localhost:6379",
//	})
//
// Persist and recover sessions:
//
//	sn := snapshot.Capture("before the shift", source, m, sess)
//	if err := st.Save(ctx, sn); err != nil {
//	    return err
//	}
//
//	sn, err := st.Load(ctx, id)
//	if err != nil {
//	    return err  // errors.Is(err, store.ErrNotFound) for unknown IDs
//	}
//	m, sess, err := snapshot.Restore(sn)
package store

import (
	"context"
	"errors"
	"slices"
	"strings"

	"github.com/curlyarrow/curlyarrow/pkg/snapshot"
)

// Sentinel errors for storage operations.
var (
	// ErrNotFound is returned when a requested snapshot does not exist.
	ErrNotFound = errors.New("not found")

	// ErrMissingID is returned by Save when the snapshot has no ID.
	ErrMissingID = errors.New("snapshot has no ID")
)

// Store is the interface for snapshot storage backends.
type Store interface {
	// Save stores a snapshot, replacing any snapshot with the same ID.
	Save(ctx context.Context, sn snapshot.Snapshot) error

	// Load retrieves a snapshot by ID.
	// Returns ErrNotFound if no snapshot has that ID.
	Load(ctx context.Context, id string) (snapshot.Snapshot, error)

	// List returns all snapshots ordered by creation time, then ID.
	List(ctx context.Context) ([]snapshot.Snapshot, error)

	// Delete removes a snapshot.
	// Returns ErrNotFound if no snapshot has that ID.
	Delete(ctx context.Context, id string) error

	// Close releases backend resources (no-op for memory and file).
	Close() error
}

// sortSnapshots orders snapshots by creation time, then ID, so every
// backend lists in the same order.
func sortSnapshots(sns []snapshot.Snapshot) {
	slices.SortFunc(sns, func(a, b snapshot.Snapshot) int {
		if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
			return c
		}
		return strings.Compare(a.ID, b.ID)
	})
}
