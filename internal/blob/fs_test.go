package blob

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFSStoreSave(t *testing.T) {
	store, err := NewFSStore(t.TempDir(), "/media/")
	require.NoError(t, err)

	url, err := store.Save(context.Background(), "doc-001.mp3", []byte("audio"))
	require.NoError(t, err)
	require.Equal(t, "/media/doc-001.mp3", url)

	data, err := os.ReadFile(filepath.Join(store.Dir(), "doc-001.mp3"))
	require.NoError(t, err)
	require.Equal(t, []byte("audio"), data)
}

func TestFSStoreSanitizesNames(t *testing.T) {
	store, err := NewFSStore(t.TempDir(), "/media")
	require.NoError(t, err)

	url, err := store.Save(context.Background(), "my doc/01?.mp3", []byte("x"))
	require.NoError(t, err)
	require.Equal(t, "/media/my_doc-01-.mp3", url)
}

func TestSanitizeFilenameLength(t *testing.T) {
	long := make([]byte, 200)
	for i := range long {
		long[i] = 'a'
	}
	require.Len(t, sanitizeFilename(string(long)), 100)
}
