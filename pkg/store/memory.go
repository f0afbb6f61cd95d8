package store

import (
	"context"
	"fmt"
	"sync"

	"github.com/curlyarrow/curlyarrow/pkg/snapshot"
)

// Memory is an in-memory snapshot store.
// Useful for tests and for single-process servers that do not need
// snapshots to survive a restart.
type Memory struct {
	mu    sync.RWMutex
	items map[string]snapshot.Snapshot
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{items: make(map[string]snapshot.Snapshot)}
}

// Save stores a snapshot, replacing any existing snapshot with the same ID.
func (s *Memory) Save(ctx context.Context, sn snapshot.Snapshot) error {
	if sn.ID == "" {
		return ErrMissingID
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[sn.ID] = sn
	return nil
}

// Load retrieves a snapshot by ID.
func (s *Memory) Load(ctx context.Context, id string) (snapshot.Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sn, ok := s.items[id]
	if !ok {
		return snapshot.Snapshot{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return sn, nil
}

// List returns all snapshots ordered by creation time, then ID.
func (s *Memory) List(ctx context.Context) ([]snapshot.Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sns := make([]snapshot.Snapshot, 0, len(s.items))
	for _, sn := range s.items {
		sns = append(sns, sn)
	}
	sortSnapshots(sns)
	return sns, nil
}

// Delete removes a snapshot.
func (s *Memory) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.items[id]; !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	delete(s.items, id)
	return nil
}

// Close does nothing for the memory store.
func (s *Memory) Close() error { return nil }

// Ensure Memory implements Store.
var _ Store = (*Memory)(nil)
