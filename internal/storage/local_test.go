package storage

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLocalStorage(t *testing.T) *LocalStorage {
	t.Helper()
	s := NewLocalStorage(filepath.Join(t.TempDir(), "uploads"))
	clock := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	s.now = func() time.Time {
		clock = clock.Add(time.Second)
		return clock
	}
	return s
}

func TestLocalStorage_SaveAndOpen(t *testing.T) {
	s := newTestLocalStorage(t)
	ctx := context.Background()

	img, err := s.Save(ctx, "avatar.png", "image/png", strings.NewReader("png-bytes"))
	require.NoError(t, err)
	assert.NotEmpty(t, img.ID)
	assert.Equal(t, "avatar.png", img.Filename)
	assert.Equal(t, "image/png", img.ContentType)
	assert.Equal(t, int64(len("png-bytes")), img.Size)

	got, rc, err := s.Open(ctx, img.ID)
	require.NoError(t, err)
	defer rc.Close()
	assert.Equal(t, img.ID, got.ID)
	assert.Equal(t, "image/png", got.ContentType)

	body, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, "png-bytes", string(body))
}

func TestLocalStorage_SaveStripsDirectories(t *testing.T) {
	s := newTestLocalStorage(t)

	img, err := s.Save(context.Background(), "../../etc/passwd.png", "image/png", strings.NewReader("x"))
	require.NoError(t, err)
	assert.Equal(t, "passwd.png", img.Filename)

	_, err = os.Stat(filepath.Join(s.baseDir, img.ID))
	assert.NoError(t, err)
}

func TestLocalStorage_Open_NotFound(t *testing.T) {
	s := newTestLocalStorage(t)
	ctx := context.Background()

	for _, id := range []string{"", "../secret", "not-a-uuid", "0b7d3a52-6a4e-4a43-9d3c-6f1f9d3f0b11"} {
		_, _, err := s.Open(ctx, id)
		assert.True(t, errors.Is(err, ErrNotFound), "id %q: got %v", id, err)
	}
}

func TestLocalStorage_Latest(t *testing.T) {
	s := newTestLocalStorage(t)
	ctx := context.Background()

	_, err := s.Latest(ctx)
	assert.True(t, errors.Is(err, ErrNotFound), "empty store: got %v", err)

	first, err := s.Save(ctx, "a.jpg", "image/jpeg", strings.NewReader("a"))
	require.NoError(t, err)
	second, err := s.Save(ctx, "b.jpg", "image/jpeg", strings.NewReader("b"))
	require.NoError(t, err)
	require.True(t, second.UploadedAt.After(first.UploadedAt))

	latest, err := s.Latest(ctx)
	require.NoError(t, err)
	assert.Equal(t, second.ID, latest.ID)
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errors.New("boom") }

func TestLocalStorage_Save_ReaderErrorLeavesNothing(t *testing.T) {
	s := newTestLocalStorage(t)

	_, err := s.Save(context.Background(), "a.png", "image/png", failingReader{})
	require.Error(t, err)

	entries, err := os.ReadDir(s.baseDir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}
