package fsutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOSFileSystem_WriteFileAtomic(t *testing.T) {
	t.Parallel()
	fs := OSFileSystem{}
	dir := t.TempDir()
	path := filepath.Join(dir, "out.csv")

	require.NoError(t, fs.WriteFileAtomic(path, []byte("first"), 0o644))
	data, err := fs.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "first", string(data))

	// Overwrite replaces the content in one step.
	require.NoError(t, fs.WriteFileAtomic(path, []byte("second"), 0o644))
	data, err = fs.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "second", string(data))

	// No temp files left behind.
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "out.csv", entries[0].Name())

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o644), info.Mode().Perm())
}

func TestOSFileSystem_WriteFileAtomic_MissingDir(t *testing.T) {
	t.Parallel()
	fs := OSFileSystem{}
	err := fs.WriteFileAtomic(filepath.Join(t.TempDir(), "nope", "out.csv"), []byte("x"), 0o644)
	assert.Error(t, err)
}

func TestOSFileSystem_MkdirAllAndExists(t *testing.T) {
	t.Parallel()
	fs := OSFileSystem{}
	dir := filepath.Join(t.TempDir(), "a", "b", "c")

	assert.False(t, fs.Exists(dir))
	require.NoError(t, fs.MkdirAll(dir, 0o755))
	assert.True(t, fs.Exists(dir))
}

func TestMemoryFileSystem(t *testing.T) {
	t.Parallel()
	fs := NewMemoryFileSystem()

	_, err := fs.ReadFile("missing.txt")
	assert.Error(t, err)

	require.NoError(t, fs.WriteFileAtomic("out/data.csv", []byte("abc"), 0o644))
	data, err := fs.ReadFile("out/data.csv")
	require.NoError(t, err)
	assert.Equal(t, "abc", string(data))

	// Stored bytes are copies, not aliases.
	data[0] = 'z'
	again, err := fs.ReadFile("out/data.csv")
	require.NoError(t, err)
	assert.Equal(t, "abc", string(again))

	require.NoError(t, fs.MkdirAll("x/y/z", 0o755))
	assert.True(t, fs.Exists("x/y/z"))
	assert.True(t, fs.Exists("x/y"))
	assert.False(t, fs.Exists("x/other"))
}
