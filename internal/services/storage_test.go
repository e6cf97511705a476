package services

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStorage(t *testing.T) StorageService {
	t.Helper()

	base := t.TempDir()
	storage := NewStorageService(filepath.Join(base, "uploads"), filepath.Join(base, "artifacts"))
	require.NoError(t, storage.EnsureDirs())
	return storage
}

func TestStorage_EnsureDirsIdempotent(t *testing.T) {
	storage := newTestStorage(t)

	assert.NoError(t, storage.EnsureDirs())
}

func TestStorage_SaveArtifact(t *testing.T) {
	storage := newTestStorage(t)

	path, err := storage.SaveArtifact("job-123", "certified-diploma.pdf", []byte("%PDF-1.4"))
	require.NoError(t, err)

	assert.Contains(t, filepath.Base(path), "job-123")
	assert.Contains(t, filepath.Base(path), "certified-diploma.pdf")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, []byte("%PDF-1.4"), data)
}

func TestStorage_SaveArtifactStripsDirectoryComponents(t *testing.T) {
	storage := newTestStorage(t)

	// A backend-supplied filename never escapes the artifact directory.
	path, err := storage.SaveArtifact("job-123", "../../etc/passwd", []byte("data"))
	require.NoError(t, err)

	assert.Equal(t, "job-123_passwd", filepath.Base(path))
	assert.NotContains(t, path, "..")
}

func TestStorage_DeleteMissingFile(t *testing.T) {
	storage := newTestStorage(t)

	assert.Error(t, storage.DeleteFile("does-not-exist.pdf"))
}
