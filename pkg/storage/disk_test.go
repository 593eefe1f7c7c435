package storage

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStore(t *testing.T) (*DiskStore, string) {
	t.Helper()
	dir := t.TempDir()
	store, err := NewDiskStore(dir)
	require.NoError(t, err)
	return store, dir
}

func TestWriteTempAndPromote(t *testing.T) {
	store, dir := newStore(t)

	tempPath, err := store.WriteTemp(context.Background(), strings.NewReader("hello"), 1024)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(tempPath, dir))

	finalPath, err := store.Promote(tempPath, "avatar.png")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "avatar.png"), finalPath)

	content, err := os.ReadFile(finalPath)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(content))

	_, err = os.Stat(tempPath)
	assert.True(t, os.IsNotExist(err))
}

func TestWriteTempExactlyAtLimit(t *testing.T) {
	store, _ := newStore(t)

	data := bytes.Repeat([]byte("a"), 64)
	tempPath, err := store.WriteTemp(context.Background(), bytes.NewReader(data), 64)
	require.NoError(t, err)

	content, err := os.ReadFile(tempPath)
	require.NoError(t, err)
	assert.Len(t, content, 64)

	require.NoError(t, store.RemovePath(tempPath))
}

func TestWriteTempRejectsOverflow(t *testing.T) {
	store, dir := newStore(t)

	data := bytes.Repeat([]byte("a"), 65)
	_, err := store.WriteTemp(context.Background(), bytes.NewReader(data), 64)
	assert.ErrorIs(t, err, ErrSizeExceeded)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestWriteTempCancelledContext(t *testing.T) {
	store, dir := newStore(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := store.WriteTemp(ctx, strings.NewReader("hello"), 1024)
	assert.ErrorIs(t, err, context.Canceled)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestRemoveMissingFile(t *testing.T) {
	store, _ := newStore(t)

	assert.NoError(t, store.Remove("does-not-exist.png"))
}

func TestPathForStripsDirectories(t *testing.T) {
	store, dir := newStore(t)

	assert.Equal(t, filepath.Join(dir, "passwd"), store.PathFor("../../etc/passwd"))
}

func TestCreateAndOpen(t *testing.T) {
	store, _ := newStore(t)

	w, err := store.Create("thumb.png")
	require.NoError(t, err)
	_, err = w.Write([]byte("bytes"))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	r, err := store.Open("thumb.png")
	require.NoError(t, err)
	defer r.Close()

	var buf bytes.Buffer
	_, err = buf.ReadFrom(r)
	require.NoError(t, err)
	assert.Equal(t, "bytes", buf.String())
}
