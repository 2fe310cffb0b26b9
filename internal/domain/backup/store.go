package backup

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// ErrSnapshotNotFound is returned when a snapshot id is unknown.
var ErrSnapshotNotFound = errors.New("snapshot not found")

// Store provides snapshot persistence operations.
type Store interface {
	Save(ctx context.Context, source string, content []byte) (*Snapshot, error)
	Get(ctx context.Context, id string) ([]byte, error)
	List(ctx context.Context, source string) ([]Snapshot, error)
	Prune(ctx context.Context, maxAge time.Duration) (int, error)
}

type storeIndex struct {
	Snapshots map[string]indexEntry `json:"snapshots"`
}

type indexEntry struct {
	ID        string    `json:"id"`
	Source    string    `json:"source"`
	Hash      string    `json:"hash"`
	Size      int64     `json:"size"`
	CreatedAt time.Time `json:"created_at"`
	Filename  string    `json:"filename"`
}

// FileStore implements Store on the local filesystem. Snapshot content
// lives in timestamped files under basePath, with metadata in index.json.
type FileStore struct {
	basePath string
	mu       sync.RWMutex
}

// NewFileStore creates a FileStore rooted at basePath.
func NewFileStore(basePath string) *FileStore {
	return &FileStore{basePath: basePath}
}

// Save stores file content and returns the snapshot describing it.
func (s *FileStore) Save(_ context.Context, source string, content []byte) (*Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(s.basePath, 0o755); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	snap := NewSnapshot(source, hashContent(content), int64(len(content)), now)
	filename := fmt.Sprintf("%s-%s.snap", now.Format("20060102T150405"), snap.ID)

	if err := os.WriteFile(filepath.Join(s.basePath, filename), content, 0o644); err != nil {
		return nil, err
	}

	index, err := s.loadIndex()
	if err != nil {
		return nil, err
	}

	index.Snapshots[snap.ID] = indexEntry{
		ID:        snap.ID,
		Source:    snap.Source,
		Hash:      snap.Hash,
		Size:      snap.Size,
		CreatedAt: snap.CreatedAt,
		Filename:  filename,
	}

	if err := s.saveIndex(index); err != nil {
		_ = os.Remove(filepath.Join(s.basePath, filename))
		return nil, err
	}

	return &snap, nil
}

// Get retrieves snapshot content by ID.
func (s *FileStore) Get(_ context.Context, id string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	index, err := s.loadIndex()
	if err != nil {
		return nil, err
	}

	entry, ok := index.Snapshots[id]
	if !ok {
		return nil, ErrSnapshotNotFound
	}

	return os.ReadFile(filepath.Join(s.basePath, entry.Filename))
}

// List returns all snapshots taken of the given source path.
func (s *FileStore) List(_ context.Context, source string) ([]Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	index, err := s.loadIndex()
	if err != nil {
		return nil, err
	}

	result := make([]Snapshot, 0)
	for _, entry := range index.Snapshots {
		if entry.Source == source {
			result = append(result, Snapshot{
				ID:        entry.ID,
				Source:    entry.Source,
				Hash:      entry.Hash,
				Size:      entry.Size,
				CreatedAt: entry.CreatedAt,
			})
		}
	}

	return result, nil
}

// Prune removes snapshots older than maxAge and returns how many were
// removed.
func (s *FileStore) Prune(_ context.Context, maxAge time.Duration) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	index, err := s.loadIndex()
	if err != nil {
		return 0, err
	}

	now := time.Now()
	toDelete := make([]string, 0)

	for id, entry := range index.Snapshots {
		if now.Sub(entry.CreatedAt) > maxAge {
			_ = os.Remove(filepath.Join(s.basePath, entry.Filename))
			toDelete = append(toDelete, id)
		}
	}

	for _, id := range toDelete {
		delete(index.Snapshots, id)
	}

	if len(toDelete) > 0 {
		if err := s.saveIndex(index); err != nil {
			return len(toDelete), err
		}
	}

	return len(toDelete), nil
}

func (s *FileStore) loadIndex() (*storeIndex, error) {
	data, err := os.ReadFile(filepath.Join(s.basePath, "index.json"))
	if os.IsNotExist(err) {
		return &storeIndex{Snapshots: make(map[string]indexEntry)}, nil
	}
	if err != nil {
		return nil, err
	}

	var index storeIndex
	if err := json.Unmarshal(data, &index); err != nil {
		return nil, err
	}
	if index.Snapshots == nil {
		index.Snapshots = make(map[string]indexEntry)
	}
	return &index, nil
}

func (s *FileStore) saveIndex(index *storeIndex) error {
	data, err := json.MarshalIndent(index, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(s.basePath, "index.json"), data, 0o644)
}

func hashContent(content []byte) string {
	sum := sha256.Sum256(content)
	return hex.EncodeToString(sum[:])
}

// Ensure FileStore implements Store.
var _ Store = (*FileStore)(nil)
