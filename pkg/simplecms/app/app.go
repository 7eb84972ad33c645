// Package app assembles the complete CMS HTTP surface from a set of
// registered entities: the JSON API under /api/v1, the uploads endpoint
// under /uploads, the embedded static assets and the admin interface at
// the root, all behind a single mountable handler.
package app

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/tendant/simple-cms/pkg/simplecms"
	"github.com/tendant/simple-cms/pkg/simplecms/admin"
	"github.com/tendant/simple-cms/pkg/simplecms/api"
	"github.com/tendant/simple-cms/pkg/simplecms/uploads"
)

// uploadsPath is the public mount point of the uploads endpoint. Admin
// forms and the markdown editor post to it, and file links on list pages
// point into it.
const uploadsPath = "/uploads"

// App bundles a service with the HTTP surfaces derived from it.
type App struct {
	service        simplecms.Service
	repository     simplecms.Repository
	entities       []any
	hooks          simplecms.Hooks
	store          simplecms.BlobStore
	editor         simplecms.EditorConfig
	apiMiddlewares []func(http.Handler) http.Handler
}

// Option configures an App.
type Option func(*App)

// WithService uses a prebuilt service. Mutually exclusive with
// WithRepository; hooks must then be set on the service itself.
func WithService(service simplecms.Service) Option {
	return func(a *App) { a.service = service }
}

// WithRepository builds the app's own service over the given repository.
func WithRepository(repo simplecms.Repository) Option {
	return func(a *App) { a.repository = repo }
}

// WithEntities registers entity types with the app's service.
func WithEntities(entities ...any) Option {
	return func(a *App) { a.entities = append(a.entities, entities...) }
}

// WithHooks sets lifecycle hooks on the service built by the app.
func WithHooks(hooks simplecms.Hooks) Option {
	return func(a *App) { a.hooks = hooks }
}

// WithBlobStore enables the uploads endpoint backed by the given store.
// Without a store the endpoint is not mounted and editor uploads are
// disabled.
func WithBlobStore(store simplecms.BlobStore) Option {
	return func(a *App) { a.store = store }
}

// WithEditorConfig replaces the default markdown editor configuration.
func WithEditorConfig(editor simplecms.EditorConfig) Option {
	return func(a *App) { a.editor = editor }
}

// WithAPIMiddleware wraps the JSON API routes, leaving the admin interface
// untouched. Used for transport-level guards such as JWT verification.
func WithAPIMiddleware(middlewares ...func(http.Handler) http.Handler) Option {
	return func(a *App) { a.apiMiddlewares = append(a.apiMiddlewares, middlewares...) }
}

// New assembles an app. Either WithService or WithRepository is required.
func New(options ...Option) (*App, error) {
	a := &App{editor: simplecms.DefaultEditorConfig()}
	for _, option := range options {
		option(a)
	}

	switch {
	case a.service == nil && a.repository == nil:
		return nil, errors.New("a service or a repository is required")
	case a.service != nil && a.repository != nil:
		return nil, errors.New("WithService and WithRepository are mutually exclusive")
	}

	if a.service == nil {
		service, err := simplecms.New(
			simplecms.WithRepository(a.repository),
			simplecms.WithEntity(a.entities...),
			simplecms.WithHooks(a.hooks),
		)
		if err != nil {
			return nil, err
		}
		a.service = service
	} else if err := a.service.Register(a.entities...); err != nil {
		return nil, err
	}

	if a.store == nil {
		a.editor.EnableUploads = false
	}
	return a, nil
}

// Service returns the underlying entity service.
func (a *App) Service() simplecms.Service {
	return a.service
}

// Migrate prepares the repository for every registered entity.
func (a *App) Migrate(ctx context.Context) error {
	return a.service.Migrate(ctx)
}

// Handler builds the router for every entity registered at call time.
func (a *App) Handler() chi.Router {
	r := chi.NewRouter()

	r.With(a.apiMiddlewares...).Mount("/api/v1", api.NewEntityHandler(a.service).Routes())

	if a.store != nil {
		r.Mount(uploadsPath, uploads.NewHandler(a.store, a.editor, uploadsPath).Routes())
	}

	assets := admin.StaticHandler()
	r.Handle("/css/*", assets)
	r.Handle("/js/*", assets)
	r.Handle("/favicon.png", assets)

	r.Mount("/", admin.NewHandler(a.service, a.editor, uploadsPath).Routes())
	return r
}
