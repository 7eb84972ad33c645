package simplecms

import (
	"context"
	"io"
	"time"
)

// Filter is an exact-match condition on a filterable column.
type Filter struct {
	Field *Field
	Value string
}

// Repository defines the interface for entity persistence. Entity values
// travel as any holding a pointer to the schema's struct type.
type Repository interface {
	// List returns all entities, optionally narrowed by exact-match filters.
	List(ctx context.Context, schema *Schema, filters []Filter) ([]any, error)

	// Get returns the entity with the given id, or ErrNotFound.
	Get(ctx context.Context, schema *Schema, id string) (any, error)

	// Create persists a new entity.
	Create(ctx context.Context, schema *Schema, entity any) error

	// Update replaces the stored entity with the same id, or returns
	// ErrNotFound.
	Update(ctx context.Context, schema *Schema, entity any) error

	// Delete removes the entity and returns its last stored state, or
	// ErrNotFound.
	Delete(ctx context.Context, schema *Schema, id string) (any, error)

	// Migrate prepares storage for the given schemas.
	Migrate(ctx context.Context, schemas []*Schema) error
}

// BlobMeta describes a stored blob.
type BlobMeta struct {
	ContentType string
	FileName    string
	Size        int64
	UpdatedAt   time.Time
}

// BlobStore defines the interface for upload storage backends.
type BlobStore interface {
	// Upload stores the blob under the given id.
	Upload(ctx context.Context, id string, reader io.Reader, meta BlobMeta) error

	// Download streams the blob back.
	Download(ctx context.Context, id string) (io.ReadCloser, error)

	// Meta retrieves a blob's metadata.
	Meta(ctx context.Context, id string) (BlobMeta, error)

	// Delete removes the blob.
	Delete(ctx context.Context, id string) error
}
