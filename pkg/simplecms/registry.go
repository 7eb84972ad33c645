package simplecms

import (
	"fmt"
	"reflect"
	"sort"
	"sync"
)

// Registry holds the schemas of all registered entity types. It is safe for
// concurrent use; registration normally happens once at startup.
type Registry struct {
	mu       sync.RWMutex
	byName   map[string]*Schema
	byGoType map[reflect.Type]*Schema
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		byName:   make(map[string]*Schema),
		byGoType: make(map[reflect.Type]*Schema),
	}
}

// Register parses the entity type and adds its schema. Registering two types
// with the same entity name fails.
func (r *Registry) Register(v any) (*Schema, error) {
	s, err := ParseSchema(v)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byName[s.Name]; ok {
		return nil, fmt.Errorf("%w: %s", ErrDuplicateEntity, s.Name)
	}
	r.byName[s.Name] = s
	r.byGoType[s.Type] = s
	return s, nil
}

// Schemas returns all registered schemas sorted by name. The order drives
// the admin sidebar.
func (r *Registry) Schemas() []*Schema {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Schema, 0, len(r.byName))
	for _, s := range r.byName {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// ByName looks up a schema by its singular snake_case name.
func (r *Registry) ByName(name string) (*Schema, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.byName[name]
	return s, ok
}

// ByPath looks up a schema by the kebab-case singular URL segment.
func (r *Registry) ByPath(path string) (*Schema, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, s := range r.byName {
		if s.Path == path {
			return s, true
		}
	}
	return nil, false
}

// ByPluralPath looks up a schema by the kebab-case plural URL segment.
func (r *Registry) ByPluralPath(path string) (*Schema, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, s := range r.byName {
		if s.PluralPath == path {
			return s, true
		}
	}
	return nil, false
}

// ByGoType looks up a schema by the entity's Go struct type name, as used by
// the ORM naming strategy.
func (r *Registry) ByGoType(goName string) (*Schema, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for t, s := range r.byGoType {
		if t.Name() == goName {
			return s, true
		}
	}
	return nil, false
}
