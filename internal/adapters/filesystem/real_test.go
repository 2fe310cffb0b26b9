package filesystem

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReal_ReadWriteRoundTrip(t *testing.T) {
	t.Parallel()

	fs := NewReal()
	path := filepath.Join(t.TempDir(), "out.txt")

	require.NoError(t, fs.WriteFile(path, []byte("OK"), 0o644))

	data, err := fs.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "OK", string(data))
	assert.True(t, fs.Exists(path))
	assert.False(t, fs.IsDir(path))
}

func TestReal_ReadMissing(t *testing.T) {
	t.Parallel()

	fs := NewReal()

	_, err := fs.ReadFile(filepath.Join(t.TempDir(), "absent.txt"))
	assert.Error(t, err)
}

func TestReal_MkdirAllAndRemove(t *testing.T) {
	t.Parallel()

	fs := NewReal()
	dir := filepath.Join(t.TempDir(), "a", "b", "c")

	require.NoError(t, fs.MkdirAll(dir, 0o755))
	assert.True(t, fs.IsDir(dir))

	require.NoError(t, fs.Remove(dir))
	assert.False(t, fs.Exists(dir))
}

func TestReal_GetFileInfo(t *testing.T) {
	t.Parallel()

	fs := NewReal()
	path := filepath.Join(t.TempDir(), "sized.txt")
	require.NoError(t, fs.WriteFile(path, []byte("12345"), 0o644))

	info, err := fs.GetFileInfo(path)
	require.NoError(t, err)
	assert.Equal(t, int64(5), info.Size)
	assert.False(t, info.IsDir)

	_, err = fs.GetFileInfo(filepath.Join(t.TempDir(), "absent"))
	assert.Error(t, err)
}
