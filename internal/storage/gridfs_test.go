package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

func TestGridFSStorage(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	url := os.Getenv("TEST_MONGO_URL")
	if url == "" {
		t.Skip("TEST_MONGO_URL not set")
	}

	ctx := context.Background()
	client, err := mongo.Connect(options.Client().ApplyURI(url))
	require.NoError(t, err)
	db := client.Database(fmt.Sprintf("portfolio_gridfs_test_%d", time.Now().UnixNano()))
	t.Cleanup(func() {
		_ = db.Drop(context.Background())
		_ = client.Disconnect(context.Background())
	})

	s := NewGridFSStorage(db)

	_, err = s.Latest(ctx)
	assert.True(t, errors.Is(err, ErrNotFound), "empty bucket: got %v", err)

	first, err := s.Save(ctx, "first.png", "image/png", strings.NewReader("first"))
	require.NoError(t, err)
	assert.Len(t, first.ID, 24)
	assert.Equal(t, int64(5), first.Size)
	assert.Equal(t, "image/png", first.ContentType)

	time.Sleep(10 * time.Millisecond)
	second, err := s.Save(ctx, "second.jpg", "image/jpeg", strings.NewReader("second"))
	require.NoError(t, err)

	latest, err := s.Latest(ctx)
	require.NoError(t, err)
	assert.Equal(t, second.ID, latest.ID)

	img, rc, err := s.Open(ctx, first.ID)
	require.NoError(t, err)
	body, err := io.ReadAll(rc)
	require.NoError(t, err)
	require.NoError(t, rc.Close())
	assert.Equal(t, "first", string(body))
	assert.Equal(t, "first.png", img.Filename)

	_, _, err = s.Open(ctx, "not-hex")
	assert.True(t, errors.Is(err, ErrNotFound))
	_, _, err = s.Open(ctx, "0123456789abcdef01234567")
	assert.True(t, errors.Is(err, ErrNotFound))
}
