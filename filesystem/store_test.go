package filesystem_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/sagarc03/relay"
	"github.com/sagarc03/relay/filesystem"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStore(t *testing.T) (*filesystem.Store, string) {
	t.Helper()

	tempDir := t.TempDir()
	root, err := os.OpenRoot(tempDir)
	require.NoError(t, err)
	t.Cleanup(func() { _ = root.Close() })

	return filesystem.NewFileStorage(root), tempDir
}

func TestStore_Create_Success(t *testing.T) {
	store, dir := newStore(t)
	key := relay.StorageKey("abc/test.txt")

	written, err := store.Create(context.Background(), key, bytes.NewReader([]byte("test content")))

	assert.NoError(t, err)
	assert.Equal(t, int64(12), written)

	data, err := os.ReadFile(filepath.Join(dir, key))
	assert.NoError(t, err)
	assert.Equal(t, []byte("test content"), data)
}

func TestStore_Create_ExistingFileIsConflict(t *testing.T) {
	store, dir := newStore(t)
	key := relay.StorageKey("dup.bin")

	err := os.WriteFile(filepath.Join(dir, key), []byte("original"), 0o644)
	require.NoError(t, err)

	written, err := store.Create(context.Background(), key, bytes.NewReader([]byte("replacement")))

	assert.ErrorIs(t, err, relay.ErrConflict)
	assert.Equal(t, int64(0), written)

	data, err := os.ReadFile(filepath.Join(dir, key))
	assert.NoError(t, err)
	assert.Equal(t, []byte("original"), data)
}

func TestStore_Create_SecondCreateIsConflict(t *testing.T) {
	store, _ := newStore(t)
	key := relay.StorageKey("twice.txt")
	ctx := context.Background()

	_, err := store.Create(ctx, key, bytes.NewReader([]byte("one")))
	require.NoError(t, err)

	_, err = store.Create(ctx, key, bytes.NewReader([]byte("two")))
	assert.ErrorIs(t, err, relay.ErrConflict)
}

func TestStore_Create_InvalidKey(t *testing.T) {
	store, _ := newStore(t)

	tests := []string{
		"",
		"test.txt",
		"../" + relay.StorageKey("x"),
		"store-zz",
	}

	for _, key := range tests {
		t.Run(key, func(t *testing.T) {
			_, err := store.Create(context.Background(), key, bytes.NewReader([]byte("x")))
			assert.ErrorIs(t, err, relay.ErrBadRequest)
		})
	}
}

func TestStore_Create_ContextCanceledBefore(t *testing.T) {
	store, dir := newStore(t)
	key := relay.StorageKey("test.txt")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	written, err := store.Create(ctx, key, bytes.NewReader([]byte("test")))

	assert.Error(t, err)
	assert.Equal(t, int64(0), written)
	assert.Equal(t, context.Canceled, err)

	_, statErr := os.Stat(filepath.Join(dir, key))
	assert.True(t, os.IsNotExist(statErr))
}

func TestStore_Create_ContextCanceledDuringCopy(t *testing.T) {
	store, dir := newStore(t)
	key := relay.StorageKey("test.txt")

	ctx, cancel := context.WithCancel(context.Background())

	slowReader := &slowReader{
		data:   []byte("test content"),
		cancel: cancel,
	}

	written, err := store.Create(ctx, key, slowReader)

	assert.Error(t, err)
	assert.Equal(t, int64(12), written)
	assert.ErrorIs(t, err, context.Canceled)

	var copyErr *relay.CopyError
	assert.True(t, errors.As(err, &copyErr))

	// partial file is kept
	_, statErr := os.Stat(filepath.Join(dir, key))
	assert.NoError(t, statErr)
}

func TestStore_Create_ReaderFailureKeepsPartialFile(t *testing.T) {
	store, dir := newStore(t)
	key := relay.StorageKey("broken.bin")

	r := io.MultiReader(bytes.NewReader([]byte("partial")), failingReader{})

	written, err := store.Create(context.Background(), key, r)

	assert.Error(t, err)
	assert.Equal(t, int64(7), written)

	data, readErr := os.ReadFile(filepath.Join(dir, key))
	assert.NoError(t, readErr)
	assert.Equal(t, []byte("partial"), data)
}

type slowReader struct {
	data   []byte
	pos    int
	cancel context.CancelFunc
}

func (r *slowReader) Read(p []byte) (n int, err error) {
	if r.pos >= len(r.data) {
		return 0, io.EOF
	}
	r.cancel()
	n = copy(p, r.data[r.pos:])
	r.pos += n
	return n, nil
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) {
	return 0, errors.New("connection reset")
}

func TestStore_Open_Success(t *testing.T) {
	store, dir := newStore(t)
	key := relay.StorageKey("test.txt")

	content := []byte("test content")
	err := os.WriteFile(filepath.Join(dir, key), content, 0o644)
	require.NoError(t, err)

	info, result, err := store.Open(context.Background(), key)

	require.NoError(t, err)
	assert.Equal(t, key, info.Key)
	assert.Equal(t, int64(len(content)), info.Size)
	assert.False(t, info.ModTime.IsZero())

	readContent, err := io.ReadAll(result)
	assert.NoError(t, err)
	assert.Equal(t, content, readContent)

	assert.NoError(t, result.Close())
}

func TestStore_Open_NotFound(t *testing.T) {
	store, _ := newStore(t)

	_, result, err := store.Open(context.Background(), relay.StorageKey("nonexistent.txt"))

	assert.ErrorIs(t, err, relay.ErrNotFound)
	assert.Nil(t, result)
}

func TestStore_Open_DirectoryIsNotFound(t *testing.T) {
	store, dir := newStore(t)
	key := relay.StorageKey("dir")

	require.NoError(t, os.Mkdir(filepath.Join(dir, key), 0o755))

	_, result, err := store.Open(context.Background(), key)

	assert.ErrorIs(t, err, relay.ErrNotFound)
	assert.Nil(t, result)
}

func TestStore_Open_ContextCanceled(t *testing.T) {
	store, _ := newStore(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, result, err := store.Open(ctx, relay.StorageKey("test.txt"))

	assert.Nil(t, result)
	assert.Equal(t, context.Canceled, err)
}

func TestStore_List_Success(t *testing.T) {
	store, dir := newStore(t)

	key1 := relay.StorageKey("one")
	key2 := relay.StorageKey("two")
	require.NoError(t, os.WriteFile(filepath.Join(dir, key1), []byte("content1"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, key2), []byte("content22"), 0o644))

	// not storage keys
	require.NoError(t, os.WriteFile(filepath.Join(dir, "README"), []byte("x"), 0o644))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "lost+found"), 0o755))

	entries, err := store.List(context.Background())

	require.NoError(t, err)
	require.Len(t, entries, 2)

	byKey := make(map[string]relay.FileInfo)
	for _, entry := range entries {
		byKey[entry.Key] = entry
	}

	assert.Equal(t, int64(8), byKey[key1].Size)
	assert.Equal(t, int64(9), byKey[key2].Size)
	assert.Empty(t, byKey[key1].ContentType)
}

func TestStore_List_EmptyDirectory(t *testing.T) {
	store, _ := newStore(t)

	entries, err := store.List(context.Background())

	assert.NoError(t, err)
	assert.Empty(t, entries)
}

func TestStore_List_ContextCanceled(t *testing.T) {
	store, _ := newStore(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	entries, err := store.List(ctx)

	assert.Nil(t, entries)
	assert.Equal(t, context.Canceled, err)
}

func TestStore_List_ReportsModTime(t *testing.T) {
	store, dir := newStore(t)
	key := relay.StorageKey("old")
	path := filepath.Join(dir, key)

	require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))
	old := time.Date(2020, 1, 2, 3, 4, 5, 0, time.UTC)
	require.NoError(t, os.Chtimes(path, old, old))

	entries, err := store.List(context.Background())

	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.True(t, entries[0].ModTime.Equal(old))
}

func TestStore_Remove_Success(t *testing.T) {
	store, dir := newStore(t)
	key := relay.StorageKey("test.txt")

	require.NoError(t, os.WriteFile(filepath.Join(dir, key), []byte("content"), 0o644))

	err := store.Remove(context.Background(), key)

	assert.NoError(t, err)

	_, err = os.Stat(filepath.Join(dir, key))
	assert.True(t, os.IsNotExist(err))
}

func TestStore_Remove_NotFound(t *testing.T) {
	store, _ := newStore(t)

	err := store.Remove(context.Background(), relay.StorageKey("nonexistent.txt"))

	assert.ErrorIs(t, err, relay.ErrNotFound)
}

func TestStore_Remove_ContextCanceled(t *testing.T) {
	store, _ := newStore(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := store.Remove(ctx, relay.StorageKey("test.txt"))

	assert.Equal(t, context.Canceled, err)
}
