// Package filesystem provides the OS-backed FileSystem adapter.
package filesystem

import (
	"os"

	"github.com/casaops/taskwright/internal/ports"
)

// Real implements ports.FileSystem against the local OS.
type Real struct{}

// NewReal creates a new Real filesystem adapter.
func NewReal() *Real {
	return &Real{}
}

// ReadFile reads the named file.
func (f *Real) ReadFile(path string) ([]byte, error) {
	return os.ReadFile(path)
}

// WriteFile writes data to the named file, creating it if necessary.
func (f *Real) WriteFile(path string, data []byte, perm os.FileMode) error {
	return os.WriteFile(path, data, perm)
}

// Exists reports whether the path exists.
func (f *Real) Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// MkdirAll creates the directory and any missing parents.
func (f *Real) MkdirAll(path string, perm os.FileMode) error {
	return os.MkdirAll(path, perm)
}

// Remove removes the named file or empty directory.
func (f *Real) Remove(path string) error {
	return os.Remove(path)
}

// IsDir reports whether the path is a directory.
func (f *Real) IsDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

// GetFileInfo returns metadata for the path.
func (f *Real) GetFileInfo(path string) (ports.FileInfo, error) {
	info, err := os.Stat(path)
	if err != nil {
		return ports.FileInfo{}, err
	}
	return ports.FileInfo{
		Size:    info.Size(),
		Mode:    info.Mode(),
		ModTime: info.ModTime(),
		IsDir:   info.IsDir(),
	}, nil
}

// Ensure Real implements ports.FileSystem.
var _ ports.FileSystem = (*Real)(nil)
