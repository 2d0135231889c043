package store

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testBlobStore(t *testing.T, s BlobStore) {
	t.Helper()

	_, found, err := s.Get("tasks")
	require.NoError(t, err)
	assert.False(t, found, "unwritten key reads as absent")

	require.NoError(t, s.Put("tasks", []byte(`[{"id":"task_1"}]`)))
	b, found, err := s.Get("tasks")
	require.NoError(t, err)
	require.True(t, found)
	assert.JSONEq(t, `[{"id":"task_1"}]`, string(b))

	require.NoError(t, s.Put("tasks", []byte(`[]`)))
	b, found, err = s.Get("tasks")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, `[]`, string(b), "last write wins")
}

func TestFileBlobStore(t *testing.T) {
	s, err := NewFileBlobStore(filepath.Join(t.TempDir(), "blobs"))
	require.NoError(t, err)
	defer s.Close()

	testBlobStore(t, s)
}

func TestSQLiteBlobStore(t *testing.T) {
	s, err := NewSQLiteBlobStore(filepath.Join(t.TempDir(), "taskden.db"))
	require.NoError(t, err)
	defer s.Close()

	testBlobStore(t, s)
}

func TestMemoryBlobStore(t *testing.T) {
	s := NewMemoryBlobStore()
	defer s.Close()

	testBlobStore(t, s)
}
