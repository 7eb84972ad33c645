package simplecms

import (
	"context"
	"io"
	"net/url"
)

// Service defines the main interface of the simple-cms library. One service
// instance manages any number of registered entity types against a single
// repository.
type Service interface {
	// Register adds entity types to the service's registry.
	Register(entities ...any) error

	// Registry exposes the schema registry to transport layers.
	Registry() *Registry

	// Entity operations
	ListEntities(ctx context.Context, req ListEntitiesRequest) ([]any, error)
	GetEntity(ctx context.Context, req GetEntityRequest) (any, error)
	CreateEntity(ctx context.Context, req CreateEntityRequest) (any, error)
	UpdateEntity(ctx context.Context, req UpdateEntityRequest) (any, error)
	DeleteEntity(ctx context.Context, req DeleteEntityRequest) (any, error)

	// DecodeJSON reads a JSON body into a fresh entity of the schema's
	// type and normalizes it.
	DecodeJSON(schema *Schema, r io.Reader) (any, error)

	// DecodeForm decodes urlencoded form values into a fresh entity of the
	// schema's type and normalizes it.
	DecodeForm(schema *Schema, values url.Values) (any, error)

	// Migrate prepares the repository for all registered schemas.
	Migrate(ctx context.Context) error
}
