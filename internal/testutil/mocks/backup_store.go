package mocks

import (
	"context"
	"sync"
	"time"

	"github.com/casaops/taskwright/internal/domain/backup"
)

// BackupStore is an in-memory test double for backup.Store.
type BackupStore struct {
	mu        sync.RWMutex
	snapshots map[string]backup.Snapshot
	contents  map[string][]byte
	saveErr   error
}

// NewBackupStore creates an empty in-memory backup store.
func NewBackupStore() *BackupStore {
	return &BackupStore{
		snapshots: make(map[string]backup.Snapshot),
		contents:  make(map[string][]byte),
	}
}

// FailSave makes subsequent Save calls fail with err.
func (m *BackupStore) FailSave(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saveErr = err
}

// Save stores content under a generated snapshot.
func (m *BackupStore) Save(_ context.Context, source string, content []byte) (*backup.Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.saveErr != nil {
		return nil, m.saveErr
	}

	snap := backup.NewSnapshot(source, "", int64(len(content)), time.Now().UTC())
	m.snapshots[snap.ID] = snap
	m.contents[snap.ID] = append([]byte(nil), content...)
	return &snap, nil
}

// Get retrieves snapshot content by ID.
func (m *BackupStore) Get(_ context.Context, id string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	content, ok := m.contents[id]
	if !ok {
		return nil, backup.ErrSnapshotNotFound
	}
	return append([]byte(nil), content...), nil
}

// List returns all snapshots taken of the given source path.
func (m *BackupStore) List(_ context.Context, source string) ([]backup.Snapshot, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]backup.Snapshot, 0)
	for _, snap := range m.snapshots {
		if snap.Source == source {
			out = append(out, snap)
		}
	}
	return out, nil
}

// Prune removes snapshots older than maxAge.
func (m *BackupStore) Prune(_ context.Context, maxAge time.Duration) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	count := 0
	for id, snap := range m.snapshots {
		if snap.IsExpired(maxAge) {
			delete(m.snapshots, id)
			delete(m.contents, id)
			count++
		}
	}
	return count, nil
}

// Len returns the number of stored snapshots.
func (m *BackupStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.snapshots)
}

// Ensure BackupStore implements backup.Store.
var _ backup.Store = (*BackupStore)(nil)
