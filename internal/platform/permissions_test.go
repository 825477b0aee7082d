package platform

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSecureDirCreates(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "a", "Trash")

	require.NoError(t, SecureDir(dir))
	assert.DirExists(t, dir)

	if runtime.GOOS != "windows" {
		info, err := os.Stat(dir)
		require.NoError(t, err)
		assert.Equal(t, PrivateDirMode, info.Mode().Perm())
	}
}

func TestSecureDirTightensExisting(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("no Unix permission bits on windows")
	}
	dir := filepath.Join(t.TempDir(), "Trash")
	require.NoError(t, os.MkdirAll(dir, 0755))

	require.NoError(t, SecureDir(dir))

	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.Equal(t, PrivateDirMode, info.Mode().Perm())
}

func TestSecureDirOnFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(path, nil, 0644))

	assert.Error(t, SecureDir(path))
}
