package memory_test

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tendant/simple-cms/pkg/simplecms"
	memorystorage "github.com/tendant/simple-cms/pkg/simplecms/storage/memory"
)

func TestMemoryBackend(t *testing.T) {
	backend := memorystorage.New()
	ctx := context.Background()
	testID := "0b7f1a2e-9f8d-4a55-9a30-3f2f6f3f9d8a"
	testData := "Hello, World! This is test data."

	t.Run("Upload", func(t *testing.T) {
		err := backend.Upload(ctx, testID, strings.NewReader(testData), simplecms.BlobMeta{
			ContentType: "text/plain",
			FileName:    "hello.txt",
		})
		assert.NoError(t, err)
	})

	t.Run("Meta", func(t *testing.T) {
		meta, err := backend.Meta(ctx, testID)
		require.NoError(t, err)
		assert.Equal(t, "text/plain", meta.ContentType)
		assert.Equal(t, "hello.txt", meta.FileName)
		assert.Equal(t, int64(len(testData)), meta.Size)
		assert.False(t, meta.UpdatedAt.IsZero())
	})

	t.Run("Download", func(t *testing.T) {
		reader, err := backend.Download(ctx, testID)
		require.NoError(t, err)
		defer reader.Close()

		downloadedData, err := io.ReadAll(reader)
		require.NoError(t, err)
		assert.Equal(t, testData, string(downloadedData))
	})

	t.Run("DefaultContentType", func(t *testing.T) {
		err := backend.Upload(ctx, "untyped", strings.NewReader("x"), simplecms.BlobMeta{})
		require.NoError(t, err)
		meta, err := backend.Meta(ctx, "untyped")
		require.NoError(t, err)
		assert.Equal(t, "application/octet-stream", meta.ContentType)
	})

	t.Run("Delete", func(t *testing.T) {
		err := backend.Delete(ctx, testID)
		require.NoError(t, err)

		_, err = backend.Download(ctx, testID)
		assert.ErrorIs(t, err, simplecms.ErrBlobNotFound)
		_, err = backend.Meta(ctx, testID)
		assert.ErrorIs(t, err, simplecms.ErrBlobNotFound)
		err = backend.Delete(ctx, testID)
		assert.ErrorIs(t, err, simplecms.ErrBlobNotFound)
	})

	t.Run("NotFound", func(t *testing.T) {
		_, err := backend.Download(ctx, "missing")
		assert.ErrorIs(t, err, simplecms.ErrBlobNotFound)
	})
}
