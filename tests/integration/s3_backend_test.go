package integration

import (
	"context"
	"io"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tendant/simple-cms/pkg/simplecms"
	s3storage "github.com/tendant/simple-cms/pkg/simplecms/storage/s3"
)

// TestS3BackendWithMinIO tests the S3 blob store with a MinIO server
// This test requires a running MinIO server
// You can start one with Docker:
// docker run -p 9000:9000 -p 9001:9001 minio/minio server /data --console-address ":9001"
func TestS3BackendWithMinIO(t *testing.T) {
	// Skip if MINIO_INTEGRATION_TEST environment variable is not set
	if os.Getenv("MINIO_INTEGRATION_TEST") == "" {
		t.Skip("Skipping MinIO integration test. Set MINIO_INTEGRATION_TEST=1 to run.")
	}

	// MinIO configuration
	config := s3storage.Config{
		Region:                 "us-east-1",
		Bucket:                 "test-bucket-" + time.Now().Format("20060102150405"),
		AccessKeyID:            "minioadmin",
		SecretAccessKey:        "minioadmin",
		Endpoint:               "http://localhost:9000",
		UsePathStyle:           true,
		KeyPrefix:              "uploads",
		CreateBucketIfNotExist: true,
	}

	store, err := s3storage.New(config)
	require.NoError(t, err)

	ctx := context.Background()
	id := "integration-test-blob"
	content := "Hello, MinIO! This is an integration test."

	// Test Upload
	err = store.Upload(ctx, id, strings.NewReader(content), simplecms.BlobMeta{
		ContentType: "text/plain",
		FileName:    "integration-test.txt",
		Size:        int64(len(content)),
	})
	require.NoError(t, err)

	// Test Meta
	meta, err := store.Meta(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "text/plain", meta.ContentType)
	assert.Equal(t, "integration-test.txt", meta.FileName)
	assert.Equal(t, int64(len(content)), meta.Size)
	assert.WithinDuration(t, time.Now(), meta.UpdatedAt, time.Minute)

	// Test Download
	reader, err := store.Download(ctx, id)
	require.NoError(t, err)
	data, err := io.ReadAll(reader)
	reader.Close()
	require.NoError(t, err)
	assert.Equal(t, content, string(data))

	// Missing blobs map to the sentinel error
	_, err = store.Download(ctx, "no-such-blob")
	assert.ErrorIs(t, err, simplecms.ErrBlobNotFound)
	_, err = store.Meta(ctx, "no-such-blob")
	assert.ErrorIs(t, err, simplecms.ErrBlobNotFound)

	// Test Delete
	require.NoError(t, store.Delete(ctx, id))
	_, err = store.Download(ctx, id)
	assert.ErrorIs(t, err, simplecms.ErrBlobNotFound)
}
