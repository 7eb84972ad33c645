package simplecms

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"sort"
	"strings"

	"github.com/ajg/form"
)

// maxFormNesting caps how deeply form keys may nest ("a.0.b.c" has depth 4).
const maxFormNesting = 5

// service implements the Service interface
type service struct {
	repository Repository
	registry   *Registry
	hooks      Hooks
	logger     *slog.Logger
	pending    []any
}

// Option represents a functional option for configuring the service
type Option func(*service)

// WithRepository sets the repository for the service
func WithRepository(repo Repository) Option {
	return func(s *service) {
		s.repository = repo
	}
}

// WithEntity registers entity types when the service is created
func WithEntity(entities ...any) Option {
	return func(s *service) {
		s.pending = append(s.pending, entities...)
	}
}

// WithHooks sets the lifecycle hooks for the service
func WithHooks(hooks Hooks) Option {
	return func(s *service) {
		s.hooks = hooks
	}
}

// WithLogger sets the logger used for hook failures and diagnostics
func WithLogger(logger *slog.Logger) Option {
	return func(s *service) {
		s.logger = logger
	}
}

// New creates a new service instance with the given options
func New(options ...Option) (Service, error) {
	s := &service{
		registry: NewRegistry(),
		logger:   slog.Default(),
	}

	for _, option := range options {
		option(s)
	}

	if s.repository == nil {
		return nil, fmt.Errorf("repository is required")
	}
	if err := s.Register(s.pending...); err != nil {
		return nil, err
	}
	s.pending = nil

	return s, nil
}

func (s *service) Register(entities ...any) error {
	for _, e := range entities {
		if _, err := s.registry.Register(e); err != nil {
			return err
		}
	}
	return nil
}

func (s *service) Registry() *Registry {
	return s.registry
}

func (s *service) schema(name, op string) (*Schema, error) {
	sc, ok := s.registry.ByName(name)
	if !ok {
		return nil, &EntityError{Entity: name, Op: op, Err: ErrNotRegistered}
	}
	return sc, nil
}

func (s *service) ListEntities(ctx context.Context, req ListEntitiesRequest) ([]any, error) {
	sc, err := s.schema(req.Name, "list")
	if err != nil {
		return nil, err
	}

	filters, err := buildFilters(sc, req.Filters)
	if err != nil {
		return nil, &EntityError{Entity: req.Name, Op: "list", Err: err}
	}

	entities, err := s.repository.List(ctx, sc, filters)
	if err != nil {
		return nil, &EntityError{Entity: req.Name, Op: "list", Err: err}
	}
	return entities, nil
}

// buildFilters validates query filters against the schema. Only string-typed
// columns may be filtered; anything else is rejected rather than ignored so
// callers notice their mistake.
func buildFilters(sc *Schema, values url.Values) ([]Filter, error) {
	if len(values) == 0 {
		return nil, nil
	}
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	filters := make([]Filter, 0, len(keys))
	for _, k := range keys {
		f, ok := sc.Field(k)
		if !ok || !f.Filterable() {
			return nil, fmt.Errorf("%w: %s", ErrBadFilter, k)
		}
		filters = append(filters, Filter{Field: f, Value: values.Get(k)})
	}
	return filters, nil
}

func (s *service) GetEntity(ctx context.Context, req GetEntityRequest) (any, error) {
	sc, err := s.schema(req.Name, "get")
	if err != nil {
		return nil, err
	}
	id, err := sc.ParseID(req.ID)
	if err != nil {
		return nil, &EntityError{Entity: req.Name, Op: "get", Err: err}
	}

	entity, err := s.repository.Get(ctx, sc, id)
	if err != nil {
		return nil, &EntityError{Entity: req.Name, Op: "get", Err: err}
	}
	return entity, nil
}

func (s *service) CreateEntity(ctx context.Context, req CreateEntityRequest) (any, error) {
	sc, err := s.schema(req.Name, "create")
	if err != nil {
		return nil, err
	}
	if _, err := sc.Struct(req.Entity); err != nil {
		return nil, &EntityError{Entity: req.Name, Op: "create", Err: err}
	}

	if sc.HasZeroID(req.Entity) {
		if err := sc.SetID(req.Entity, sc.NewID()); err != nil {
			return nil, &EntityError{Entity: req.Name, Op: "create", Err: err}
		}
	}
	if err := normalizeEntity(sc, req.Entity); err != nil {
		return nil, &EntityError{Entity: req.Name, Op: "create", Err: err}
	}

	for _, hook := range s.hooks.BeforeCreate {
		if err := hook(ctx, sc, req.Entity); err != nil {
			return nil, &EntityError{Entity: req.Name, Op: "create", Err: &HookError{Err: err}}
		}
	}
	if oc, ok := req.Entity.(OnCreator); ok {
		if err := oc.OnCreate(ctx); err != nil {
			return nil, &EntityError{Entity: req.Name, Op: "create", Err: &HookError{Err: err}}
		}
	}

	if err := s.repository.Create(ctx, sc, req.Entity); err != nil {
		return nil, &EntityError{Entity: req.Name, Op: "create", Err: err}
	}

	for _, hook := range s.hooks.AfterCreate {
		if err := hook(ctx, sc, req.Entity); err != nil {
			s.logger.Error("after-create hook failed", "entity", sc.Name, "err", err)
		}
	}
	return req.Entity, nil
}

func (s *service) UpdateEntity(ctx context.Context, req UpdateEntityRequest) (any, error) {
	sc, err := s.schema(req.Name, "update")
	if err != nil {
		return nil, err
	}
	v, err := sc.Struct(req.Entity)
	if err != nil {
		return nil, &EntityError{Entity: req.Name, Op: "update", Err: err}
	}
	id, err := sc.ParseID(req.ID)
	if err != nil {
		return nil, &EntityError{Entity: req.Name, Op: "update", Err: err}
	}
	// the path id is authoritative
	if err := sc.SetID(req.Entity, id); err != nil {
		return nil, &EntityError{Entity: req.Name, Op: "update", Err: err}
	}

	if req.PreserveSkipped {
		stored, err := s.repository.Get(ctx, sc, id)
		if err != nil {
			return nil, &EntityError{Entity: req.Name, Op: "update", Err: err}
		}
		sv, err := sc.Struct(stored)
		if err != nil {
			return nil, &EntityError{Entity: req.Name, Op: "update", Err: err}
		}
		sc.copySkipped(v, sv)
		if err := sc.SetID(req.Entity, id); err != nil {
			return nil, &EntityError{Entity: req.Name, Op: "update", Err: err}
		}
	}

	if err := normalizeEntity(sc, req.Entity); err != nil {
		return nil, &EntityError{Entity: req.Name, Op: "update", Err: err}
	}

	for _, hook := range s.hooks.BeforeUpdate {
		if err := hook(ctx, sc, req.Entity); err != nil {
			return nil, &EntityError{Entity: req.Name, Op: "update", Err: &HookError{Err: err}}
		}
	}

	if err := s.repository.Update(ctx, sc, req.Entity); err != nil {
		return nil, &EntityError{Entity: req.Name, Op: "update", Err: err}
	}

	for _, hook := range s.hooks.AfterUpdate {
		if err := hook(ctx, sc, req.Entity); err != nil {
			s.logger.Error("after-update hook failed", "entity", sc.Name, "err", err)
		}
	}
	return req.Entity, nil
}

func (s *service) DeleteEntity(ctx context.Context, req DeleteEntityRequest) (any, error) {
	sc, err := s.schema(req.Name, "delete")
	if err != nil {
		return nil, err
	}
	id, err := sc.ParseID(req.ID)
	if err != nil {
		return nil, &EntityError{Entity: req.Name, Op: "delete", Err: err}
	}

	for _, hook := range s.hooks.BeforeDelete {
		if err := hook(ctx, sc, id); err != nil {
			return nil, &EntityError{Entity: req.Name, Op: "delete", Err: &HookError{Err: err}}
		}
	}

	deleted, err := s.repository.Delete(ctx, sc, id)
	if err != nil {
		return nil, &EntityError{Entity: req.Name, Op: "delete", Err: err}
	}

	for _, hook := range s.hooks.AfterDelete {
		if err := hook(ctx, sc, deleted); err != nil {
			s.logger.Error("after-delete hook failed", "entity", sc.Name, "err", err)
		}
	}
	return deleted, nil
}

func (s *service) DecodeJSON(sc *Schema, r io.Reader) (any, error) {
	entity := sc.New()
	if err := json.NewDecoder(r).Decode(entity); err != nil {
		return nil, &EntityError{Entity: sc.Name, Op: "decode", Err: fmt.Errorf("%w: %v", ErrDecode, err)}
	}
	if err := normalizeEntity(sc, entity); err != nil {
		return nil, &EntityError{Entity: sc.Name, Op: "decode", Err: err}
	}
	return entity, nil
}

func (s *service) DecodeForm(sc *Schema, values url.Values) (any, error) {
	normalized, err := normalizeFormValues(sc, values)
	if err != nil {
		return nil, &EntityError{Entity: sc.Name, Op: "decode", Err: err}
	}

	entity := sc.New()
	if err := form.NewDecoder(strings.NewReader(normalized.Encode())).Decode(entity); err != nil {
		return nil, &EntityError{Entity: sc.Name, Op: "decode", Err: fmt.Errorf("%w: %v", ErrDecode, err)}
	}
	if err := normalizeEntity(sc, entity); err != nil {
		return nil, &EntityError{Entity: sc.Name, Op: "decode", Err: err}
	}
	return entity, nil
}

func (s *service) Migrate(ctx context.Context) error {
	return s.repository.Migrate(ctx, s.registry.Schemas())
}
