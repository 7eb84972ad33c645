package fs

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"github.com/tendant/simple-cms/pkg/simplecms"
)

// Backend is a filesystem implementation of the simplecms.BlobStore
// interface. Blobs live as flat files named by id; content types are
// detected from the bytes on read rather than stored alongside.
type Backend struct {
	baseDir string
}

// Config options for the filesystem backend
type Config struct {
	BaseDir string // Base directory for storing blobs
}

// New creates a new filesystem storage backend
func New(config Config) (simplecms.BlobStore, error) {
	if config.BaseDir == "" {
		return nil, errors.New("base directory is required")
	}
	if err := os.MkdirAll(config.BaseDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create base directory: %w", err)
	}
	return &Backend{baseDir: config.BaseDir}, nil
}

// path maps a blob id to its file, refusing ids that would escape baseDir.
func (b *Backend) path(id string) (string, error) {
	if id == "" || id != filepath.Base(id) {
		return "", fmt.Errorf("invalid blob id %q", id)
	}
	return filepath.Join(b.baseDir, id), nil
}

// Upload writes the blob bytes to the filesystem
func (b *Backend) Upload(ctx context.Context, id string, reader io.Reader, meta simplecms.BlobMeta) error {
	filePath, err := b.path(id)
	if err != nil {
		return err
	}

	file, err := os.Create(filePath)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer file.Close()

	if _, err := io.Copy(file, reader); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}
	return nil
}

// Download opens the blob file for reading
func (b *Backend) Download(ctx context.Context, id string) (io.ReadCloser, error) {
	filePath, err := b.path(id)
	if err != nil {
		return nil, err
	}

	file, err := os.Open(filePath)
	if os.IsNotExist(err) {
		return nil, simplecms.ErrBlobNotFound
	} else if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	return file, nil
}

// Meta stats the blob file and detects its content type from the first
// bytes
func (b *Backend) Meta(ctx context.Context, id string) (simplecms.BlobMeta, error) {
	filePath, err := b.path(id)
	if err != nil {
		return simplecms.BlobMeta{}, err
	}

	info, err := os.Stat(filePath)
	if os.IsNotExist(err) {
		return simplecms.BlobMeta{}, simplecms.ErrBlobNotFound
	} else if err != nil {
		return simplecms.BlobMeta{}, fmt.Errorf("failed to get file info: %w", err)
	}

	contentType := "application/octet-stream"
	if file, err := os.Open(filePath); err == nil {
		defer file.Close()
		buffer := make([]byte, 512)
		if n, err := file.Read(buffer); err == nil {
			contentType = http.DetectContentType(buffer[:n])
		}
	}

	return simplecms.BlobMeta{
		ContentType: contentType,
		Size:        info.Size(),
		UpdatedAt:   info.ModTime(),
	}, nil
}

// Delete removes the blob file
func (b *Backend) Delete(ctx context.Context, id string) error {
	filePath, err := b.path(id)
	if err != nil {
		return err
	}

	if _, err := os.Stat(filePath); os.IsNotExist(err) {
		return simplecms.ErrBlobNotFound
	}
	if err := os.Remove(filePath); err != nil {
		return fmt.Errorf("failed to delete file: %w", err)
	}
	return nil
}
