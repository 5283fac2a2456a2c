package objectstore

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-wiki/internal/store"
)

func TestMemoryStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	blobs := NewMemoryStore()

	require.NoError(t, blobs.Upload(ctx, "pages/a/v1.md", []byte("hello")))
	assert.Equal(t, 1, blobs.Len())
	assert.True(t, blobs.Has("pages/a/v1.md"))

	data, err := blobs.Download(ctx, "pages/a/v1.md")
	require.NoError(t, err)
	assert.Equal(t, []byte("hello"), data)

	require.NoError(t, blobs.Delete(ctx, "pages/a/v1.md"))
	assert.Equal(t, 0, blobs.Len())
}

func TestMemoryStoreUploadOverwrites(t *testing.T) {
	ctx := context.Background()
	blobs := NewMemoryStore()

	require.NoError(t, blobs.Upload(ctx, "k", []byte("one")))
	require.NoError(t, blobs.Upload(ctx, "k", []byte("two")))

	data, err := blobs.Download(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("two"), data)
	assert.Equal(t, 1, blobs.Len())
}

func TestMemoryStoreDownloadMissing(t *testing.T) {
	blobs := NewMemoryStore()

	_, err := blobs.Download(context.Background(), "absent")
	require.Error(t, err)
	assert.Equal(t, store.KindNotFound, store.KindOf(err))
}

func TestMemoryStoreIsolatesStoredBytes(t *testing.T) {
	ctx := context.Background()
	blobs := NewMemoryStore()

	payload := []byte("immutable")
	require.NoError(t, blobs.Upload(ctx, "k", payload))
	payload[0] = 'X'

	data, err := blobs.Download(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("immutable"), data)

	data[0] = 'Y'
	again, err := blobs.Download(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("immutable"), again)
}

func TestMemoryStoreFailUploads(t *testing.T) {
	ctx := context.Background()
	blobs := NewMemoryStore()
	blobs.FailUploads = true

	err := blobs.Upload(ctx, "k", []byte("data"))
	require.Error(t, err)
	assert.Equal(t, store.KindBackend, store.KindOf(err))
	assert.Equal(t, 0, blobs.Len())

	blobs.FailUploads = false
	require.NoError(t, blobs.Upload(ctx, "k", []byte("data")))
}

func TestMemoryStoreDeleteMissingIsNoop(t *testing.T) {
	blobs := NewMemoryStore()
	require.NoError(t, blobs.Delete(context.Background(), "absent"))
}
