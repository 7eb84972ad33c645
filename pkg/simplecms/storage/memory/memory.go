package memory

import (
	"bytes"
	"context"
	"io"
	"sync"
	"time"

	"github.com/tendant/simple-cms/pkg/simplecms"
)

// Backend is an in-memory implementation of the simplecms.BlobStore interface
type Backend struct {
	mu    sync.RWMutex
	blobs map[string][]byte
	metas map[string]simplecms.BlobMeta
}

// New creates a new in-memory storage backend
func New() simplecms.BlobStore {
	return &Backend{
		blobs: make(map[string][]byte),
		metas: make(map[string]simplecms.BlobMeta),
	}
}

// Upload stores the blob bytes and metadata under the given id
func (b *Backend) Upload(ctx context.Context, id string, reader io.Reader, meta simplecms.BlobMeta) error {
	data, err := io.ReadAll(reader)
	if err != nil {
		return err
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	meta.Size = int64(len(data))
	meta.UpdatedAt = time.Now()
	if meta.ContentType == "" {
		meta.ContentType = "application/octet-stream"
	}
	b.blobs[id] = data
	b.metas[id] = meta
	return nil
}

// Download streams the blob back
func (b *Backend) Download(ctx context.Context, id string) (io.ReadCloser, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	data, exists := b.blobs[id]
	if !exists {
		return nil, simplecms.ErrBlobNotFound
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

// Meta retrieves a blob's metadata
func (b *Backend) Meta(ctx context.Context, id string) (simplecms.BlobMeta, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	meta, exists := b.metas[id]
	if !exists {
		return simplecms.BlobMeta{}, simplecms.ErrBlobNotFound
	}
	return meta, nil
}

// Delete removes the blob
func (b *Backend) Delete(ctx context.Context, id string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, exists := b.blobs[id]; !exists {
		return simplecms.ErrBlobNotFound
	}
	delete(b.blobs, id)
	delete(b.metas, id)
	return nil
}
