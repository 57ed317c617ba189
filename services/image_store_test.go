package services

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quizcraft/engine"
)

// PNG signature padded past the 512-byte sniff window
var pngBytes = append([]byte("\x89PNG\r\n\x1a\n"), bytes.Repeat([]byte{0}, 600)...)

func TestDiskImageStoreSavesImages(t *testing.T) {
	dir := t.TempDir()
	store := NewDiskImageStore(dir, "http://cdn.test/")

	url, err := store.UploadImage(context.Background(), bytes.NewReader(pngBytes), "cover.png", 4)
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(url, "http://cdn.test/uploads/4/"), url)
	assert.True(t, strings.HasSuffix(url, ".png"))

	stored, err := os.ReadFile(filepath.Join(dir, "4", filepath.Base(url)))
	require.NoError(t, err)
	assert.Equal(t, pngBytes, stored)
}

func TestDiskImageStoreRejectsNonImages(t *testing.T) {
	dir := t.TempDir()
	store := NewDiskImageStore(dir, "http://cdn.test")

	_, err := store.UploadImage(context.Background(), strings.NewReader("just some text"), "notes.png", 4)
	assert.ErrorIs(t, err, ErrInvalidImage)

	_, err = store.UploadImage(context.Background(), strings.NewReader(""), "empty.png", 4)
	assert.ErrorIs(t, err, ErrInvalidImage)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestDiskImageStoreReportsFailedClose(t *testing.T) {
	dir := t.TempDir()
	store := NewDiskImageStore(dir, "http://cdn.test")
	flushFailed := errors.New("disk full")
	store.closeFile = func(f *os.File) error {
		f.Close()
		return flushFailed
	}

	url, err := store.UploadImage(context.Background(), bytes.NewReader(pngBytes), "cover.png", 4)
	assert.Empty(t, url)
	var persistence *engine.PersistenceError
	require.True(t, errors.As(err, &persistence), "got %v", err)
	assert.ErrorIs(t, err, flushFailed)

	entries, err := os.ReadDir(filepath.Join(dir, "4"))
	require.NoError(t, err)
	assert.Empty(t, entries, "a file that failed to close is removed")
}
