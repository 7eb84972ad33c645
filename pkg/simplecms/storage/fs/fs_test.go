package fs

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/tendant/simple-cms/pkg/simplecms"
)

var pngHeader = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n', 0, 0, 0, 0}

func TestFSBackend_BasicOps(t *testing.T) {
	tmp := t.TempDir()
	backend, err := New(Config{BaseDir: tmp})
	if err != nil {
		t.Fatalf("new fs backend: %v", err)
	}

	ctx := context.Background()
	id := "4f1c29aa-0d4a-4c3e-8f4e-1f9f6f2a7b10"

	// Upload
	if err := backend.Upload(ctx, id, bytes.NewReader(pngHeader), simplecms.BlobMeta{ContentType: "image/png"}); err != nil {
		t.Fatalf("upload: %v", err)
	}

	// Meta sniffs the content type from the stored bytes
	meta, err := backend.Meta(ctx, id)
	if err != nil {
		t.Fatalf("get meta: %v", err)
	}
	if meta.Size != int64(len(pngHeader)) {
		t.Fatalf("expected size %d, got %d", len(pngHeader), meta.Size)
	}
	if meta.ContentType != "image/png" {
		t.Fatalf("expected image/png, got %q", meta.ContentType)
	}

	// Download
	rc, err := backend.Download(ctx, id)
	if err != nil {
		t.Fatalf("download: %v", err)
	}
	got, _ := io.ReadAll(rc)
	_ = rc.Close()
	if !bytes.Equal(got, pngHeader) {
		t.Fatalf("download mismatch: %v", got)
	}

	// Delete
	if err := backend.Delete(ctx, id); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := os.Stat(filepath.Join(tmp, id)); !os.IsNotExist(err) {
		t.Fatalf("expected file removed, stat err=%v", err)
	}
	if _, err := backend.Download(ctx, id); !errors.Is(err, simplecms.ErrBlobNotFound) {
		t.Fatalf("expected ErrBlobNotFound, got %v", err)
	}
}

func TestFSBackend_RejectsPathEscapes(t *testing.T) {
	tmp := t.TempDir()
	backend, err := New(Config{BaseDir: tmp})
	if err != nil {
		t.Fatalf("new fs backend: %v", err)
	}
	ctx := context.Background()

	for _, id := range []string{"", "../escape", "a/b", "./x"} {
		if err := backend.Upload(ctx, id, bytes.NewReader([]byte("x")), simplecms.BlobMeta{}); err == nil {
			t.Fatalf("expected error for id %q", id)
		}
		if _, err := backend.Download(ctx, id); err == nil {
			t.Fatalf("expected error for id %q", id)
		}
	}
}

func TestFSBackend_RequiresBaseDir(t *testing.T) {
	if _, err := New(Config{}); err == nil {
		t.Fatalf("expected error without base dir")
	}
}
