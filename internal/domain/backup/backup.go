// Package backup stores point-in-time copies of files touched by
// maintenance steps, so an execution can be rolled back on request.
package backup

import (
	"time"

	"github.com/google/uuid"
)

// Snapshot represents a backup of one file at a point in time.
type Snapshot struct {
	ID        string    `json:"id"`
	Source    string    `json:"source"`
	Hash      string    `json:"hash"`
	Size      int64     `json:"size"`
	CreatedAt time.Time `json:"created_at"`
}

// NewSnapshot creates a Snapshot with a generated ID.
func NewSnapshot(source, hash string, size int64, createdAt time.Time) Snapshot {
	return Snapshot{
		ID:        uuid.New().String(),
		Source:    source,
		Hash:      hash,
		Size:      size,
		CreatedAt: createdAt,
	}
}

// IsExpired checks if the snapshot is older than the given duration.
func (s Snapshot) IsExpired(maxAge time.Duration) bool {
	return time.Since(s.CreatedAt) > maxAge
}
