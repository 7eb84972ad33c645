package s3

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestS3Backend_Configuration(t *testing.T) {
	t.Run("EmptyBucket", func(t *testing.T) {
		_, err := New(Config{Region: "us-east-1"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "bucket name is required")
	})

	t.Run("DefaultRegion", func(t *testing.T) {
		backend, err := New(Config{
			Bucket:          "test-bucket",
			AccessKeyID:     "test-key",
			SecretAccessKey: "test-secret",
		})
		require.NoError(t, err)
		require.NotNil(t, backend)
		b := backend.(*Backend)
		assert.Equal(t, "us-east-1", b.config.Region)
	})

	t.Run("ServerSideEncryption", func(t *testing.T) {
		backend, err := New(Config{
			Bucket:          "test-bucket",
			AccessKeyID:     "test-key",
			SecretAccessKey: "test-secret",
			EnableSSE:       true,
			SSEAlgorithm:    "AES256",
		})
		require.NoError(t, err)
		assert.NotNil(t, backend)
	})
}

func TestS3Backend_KeyPrefix(t *testing.T) {
	tests := []struct {
		name   string
		prefix string
		id     string
		want   string
	}{
		{name: "no prefix", prefix: "", id: "abc", want: "abc"},
		{name: "plain prefix", prefix: "uploads", id: "abc", want: "uploads/abc"},
		{name: "trailing slash", prefix: "uploads/", id: "abc", want: "uploads/abc"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := &Backend{config: Config{KeyPrefix: tt.prefix}}
			assert.Equal(t, tt.want, b.key(tt.id))
		})
	}
}
