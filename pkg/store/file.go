package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/curlyarrow/curlyarrow/pkg/snapshot"
)

// FileStore is a file-based snapshot store for CLI usage.
// Snapshots are stored as JSON files in a config directory, one file per
// snapshot, named after its ID.
type FileStore struct {
	mu      sync.RWMutex
	baseDir string
}

// NewFileStore creates a new file-based snapshot store.
// If baseDir is empty, defaults to ~/.config/curlyarrow/snapshots/
func NewFileStore(baseDir string) (*FileStore, error) {
	if baseDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("get home dir: %w", err)
		}
		baseDir = filepath.Join(home, ".config", "curlyarrow", "snapshots")
	}
	if err := os.MkdirAll(baseDir, 0755); err != nil {
		return nil, fmt.Errorf("create snapshot dir: %w", err)
	}
	return &FileStore{baseDir: baseDir}, nil
}

func (s *FileStore) snapshotPath(id string) string {
	return filepath.Join(s.baseDir, id+".json")
}

// Save writes a snapshot to disk, replacing any file with the same ID.
func (s *FileStore) Save(ctx context.Context, sn snapshot.Snapshot) error {
	if sn.ID == "" {
		return ErrMissingID
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := snapshot.Marshal(sn)
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}
	if err := os.WriteFile(s.snapshotPath(sn.ID), data, 0644); err != nil {
		return fmt.Errorf("write snapshot file: %w", err)
	}
	return nil
}

// Load reads a snapshot from disk by ID.
func (s *FileStore) Load(ctx context.Context, id string) (snapshot.Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, err := os.ReadFile(s.snapshotPath(id))
	if os.IsNotExist(err) {
		return snapshot.Snapshot{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return snapshot.Snapshot{}, fmt.Errorf("read snapshot file: %w", err)
	}
	sn, err := snapshot.Unmarshal(data)
	if err != nil {
		return snapshot.Snapshot{}, fmt.Errorf("parse snapshot: %w", err)
	}
	return sn, nil
}

// List reads every snapshot in the directory, ordered by creation time,
// then ID. Files that do not parse as snapshots are skipped.
func (s *FileStore) List(ctx context.Context) ([]snapshot.Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		return nil, fmt.Errorf("read snapshot dir: %w", err)
	}
	var sns []snapshot.Snapshot
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".json" {
			continue
		}
		data, err := os.ReadFile(filepath.Join(s.baseDir, entry.Name()))
		if err != nil {
			continue
		}
		sn, err := snapshot.Unmarshal(data)
		if err != nil {
			continue
		}
		sns = append(sns, sn)
	}
	sortSnapshots(sns)
	return sns, nil
}

// Delete removes a snapshot file.
func (s *FileStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := os.Remove(s.snapshotPath(id))
	if os.IsNotExist(err) {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return fmt.Errorf("remove snapshot file: %w", err)
	}
	return nil
}

// Close does nothing for the file store.
func (s *FileStore) Close() error { return nil }

// Path returns the base directory for snapshot files.
func (s *FileStore) Path() string {
	return s.baseDir
}

var _ Store = (*FileStore)(nil)
