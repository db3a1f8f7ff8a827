package schema

import (
	"slices"
	"sync"

	"github.com/bitswalk/rowkeep/src/common/errors"
	"github.com/samber/lo"
)

// Registry holds validated table schemas keyed by table name
type Registry struct {
	mu      sync.RWMutex
	schemas map[string]Schema
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{schemas: make(map[string]Schema)}
}

// Register validates s and adds it to the registry
func (r *Registry) Register(s Schema) error {
	if err := s.Validate(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.schemas[s.Table]; exists {
		return errors.ErrTableAlreadyRegistered.WithMessagef("table %s is already registered", s.Table)
	}

	// Copy columns so later mutation of the caller's slice cannot leak in
	s.Columns = slices.Clone(s.Columns)
	r.schemas[s.Table] = s
	return nil
}

// MustRegister is Register that panics on error, for static table definitions
func (r *Registry) MustRegister(schemas ...Schema) {
	for _, s := range schemas {
		if err := r.Register(s); err != nil {
			panic(err)
		}
	}
}

// Get returns the schema registered for table
func (r *Registry) Get(table string) (Schema, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.schemas[table]
	return s, ok
}

// Lookup is Get returning ErrTableNotFound on a miss
func (r *Registry) Lookup(table string) (Schema, error) {
	s, ok := r.Get(table)
	if !ok {
		return Schema{}, errors.ErrTableNotFound.WithMessagef("table %q is not registered", table)
	}
	return s, nil
}

// Tables returns the registered table names in sorted order
func (r *Registry) Tables() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := lo.Keys(r.schemas)
	slices.Sort(names)
	return names
}

// Schemas returns all registered schemas ordered by table name
func (r *Registry) Schemas() []Schema {
	tables := r.Tables()

	r.mu.RLock()
	defer r.mu.RUnlock()

	return lo.Map(tables, func(name string, _ int) Schema { return r.schemas[name] })
}

// Len returns the number of registered tables
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.schemas)
}
