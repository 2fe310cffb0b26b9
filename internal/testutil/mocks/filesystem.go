package mocks

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/casaops/taskwright/internal/ports"
)

// FileSystem is an in-memory test double for ports.FileSystem.
type FileSystem struct {
	mu        sync.RWMutex
	files     map[string][]byte
	dirs      map[string]bool
	failWrite map[string]error
	failRead  map[string]error
}

// NewFileSystem creates an empty in-memory filesystem.
func NewFileSystem() *FileSystem {
	return &FileSystem{
		files:     make(map[string][]byte),
		dirs:      make(map[string]bool),
		failWrite: make(map[string]error),
		failRead:  make(map[string]error),
	}
}

// AddFile seeds a file.
func (m *FileSystem) AddFile(path string, content []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.files[path] = append([]byte(nil), content...)
}

// FailWrite makes writes to path fail with err.
func (m *FileSystem) FailWrite(path string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failWrite[path] = err
}

// FailRead makes reads of path fail with err.
func (m *FileSystem) FailRead(path string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failRead[path] = err
}

// ReadFile reads the named file.
func (m *FileSystem) ReadFile(path string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if err, ok := m.failRead[path]; ok {
		return nil, err
	}
	data, ok := m.files[path]
	if !ok {
		return nil, &os.PathError{Op: "open", Path: path, Err: os.ErrNotExist}
	}
	return append([]byte(nil), data...), nil
}

// WriteFile writes data to the named file.
func (m *FileSystem) WriteFile(path string, data []byte, _ os.FileMode) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err, ok := m.failWrite[path]; ok {
		return err
	}
	m.files[path] = append([]byte(nil), data...)
	return nil
}

// Exists reports whether the path exists.
func (m *FileSystem) Exists(path string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if _, ok := m.files[path]; ok {
		return true
	}
	return m.dirs[path]
}

// MkdirAll records the directory and its parents.
func (m *FileSystem) MkdirAll(path string, _ os.FileMode) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for p := path; p != "/" && p != "." && p != ""; p = filepath.Dir(p) {
		m.dirs[p] = true
	}
	return nil
}

// Remove removes the named file or directory.
func (m *FileSystem) Remove(path string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.files[path]; ok {
		delete(m.files, path)
		return nil
	}
	if m.dirs[path] {
		delete(m.dirs, path)
		return nil
	}
	return &os.PathError{Op: "remove", Path: path, Err: os.ErrNotExist}
}

// IsDir reports whether the path is a directory.
func (m *FileSystem) IsDir(path string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.dirs[path]
}

// GetFileInfo returns metadata for the path.
func (m *FileSystem) GetFileInfo(path string) (ports.FileInfo, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if data, ok := m.files[path]; ok {
		return ports.FileInfo{Size: int64(len(data)), Mode: 0o644, ModTime: time.Now()}, nil
	}
	if m.dirs[path] {
		return ports.FileInfo{Mode: os.ModeDir | 0o755, ModTime: time.Now(), IsDir: true}, nil
	}
	return ports.FileInfo{}, &os.PathError{Op: "stat", Path: path, Err: os.ErrNotExist}
}

// Files returns a sorted-ish listing of file paths, useful in assertions.
func (m *FileSystem) Files() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]string, 0, len(m.files))
	for path := range m.files {
		out = append(out, path)
	}
	return out
}

// String renders the filesystem contents for debugging.
func (m *FileSystem) String() string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var b strings.Builder
	for path, data := range m.files {
		fmt.Fprintf(&b, "%s (%d bytes)\n", path, len(data))
	}
	return b.String()
}

// Ensure FileSystem implements ports.FileSystem.
var _ ports.FileSystem = (*FileSystem)(nil)
