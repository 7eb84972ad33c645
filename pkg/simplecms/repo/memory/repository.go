package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"reflect"
	"sync"

	"github.com/tendant/simple-cms/pkg/simplecms"
)

// Repository implements simplecms.Repository using in-memory storage.
// Entities are stored as JSON snapshots, so callers never share memory with
// the repository. Listing returns entities in creation order.
type Repository struct {
	mu      sync.RWMutex
	records map[string]map[string][]byte // schema name -> id -> snapshot
	order   map[string][]string          // schema name -> ids in creation order
}

// New creates a new in-memory repository.
func New() simplecms.Repository {
	return &Repository{
		records: make(map[string]map[string][]byte),
		order:   make(map[string][]string),
	}
}

func (r *Repository) List(ctx context.Context, schema *simplecms.Schema, filters []simplecms.Filter) ([]any, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]any, 0, len(r.order[schema.Name]))
	for _, id := range r.order[schema.Name] {
		entity, err := r.decode(schema, r.records[schema.Name][id])
		if err != nil {
			return nil, err
		}
		ok, err := matches(schema, entity, filters)
		if err != nil {
			return nil, err
		}
		if ok {
			result = append(result, entity)
		}
	}
	return result, nil
}

func (r *Repository) Get(ctx context.Context, schema *simplecms.Schema, id string) (any, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	raw, exists := r.records[schema.Name][id]
	if !exists {
		return nil, simplecms.ErrNotFound
	}
	return r.decode(schema, raw)
}

func (r *Repository) Create(ctx context.Context, schema *simplecms.Schema, entity any) error {
	id, err := schema.ID(entity)
	if err != nil {
		return err
	}
	raw, err := json.Marshal(entity)
	if err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.records[schema.Name] == nil {
		r.records[schema.Name] = make(map[string][]byte)
	}
	if _, exists := r.records[schema.Name][id]; exists {
		return simplecms.ErrDuplicateEntity
	}
	r.records[schema.Name][id] = raw
	r.order[schema.Name] = append(r.order[schema.Name], id)
	return nil
}

func (r *Repository) Update(ctx context.Context, schema *simplecms.Schema, entity any) error {
	id, err := schema.ID(entity)
	if err != nil {
		return err
	}
	raw, err := json.Marshal(entity)
	if err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.records[schema.Name][id]; !exists {
		return simplecms.ErrNotFound
	}
	r.records[schema.Name][id] = raw
	return nil
}

func (r *Repository) Delete(ctx context.Context, schema *simplecms.Schema, id string) (any, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	raw, exists := r.records[schema.Name][id]
	if !exists {
		return nil, simplecms.ErrNotFound
	}
	entity, err := r.decode(schema, raw)
	if err != nil {
		return nil, err
	}

	delete(r.records[schema.Name], id)
	ids := r.order[schema.Name]
	for i, v := range ids {
		if v == id {
			r.order[schema.Name] = append(ids[:i], ids[i+1:]...)
			break
		}
	}
	return entity, nil
}

func (r *Repository) Migrate(ctx context.Context, schemas []*simplecms.Schema) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, schema := range schemas {
		if r.records[schema.Name] == nil {
			r.records[schema.Name] = make(map[string][]byte)
		}
	}
	return nil
}

func (r *Repository) decode(schema *simplecms.Schema, raw []byte) (any, error) {
	entity := schema.New()
	if err := json.Unmarshal(raw, entity); err != nil {
		return nil, fmt.Errorf("decode stored %s: %w", schema.Name, err)
	}
	return entity, nil
}

// matches reports whether entity satisfies every filter by exact match on
// the rendered field value.
func matches(schema *simplecms.Schema, entity any, filters []simplecms.Filter) (bool, error) {
	if len(filters) == 0 {
		return true, nil
	}
	v, err := schema.Struct(entity)
	if err != nil {
		return false, err
	}
	for _, f := range filters {
		fv := f.Field.ValueOf(v)
		for fv.Kind() == reflect.Pointer {
			if fv.IsNil() {
				return false, nil
			}
			fv = fv.Elem()
		}
		if fmt.Sprintf("%v", fv.Interface()) != f.Value {
			return false, nil
		}
	}
	return true, nil
}
