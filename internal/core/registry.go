package core

import (
	"fmt"
	"sort"
	"sync"
)

var (
	registry   = make(map[SchemaID]*Schema)
	registryMu sync.RWMutex
)

// Register adds a schema to the registry.
// Panics if the schema is incomplete or already registered.
func Register(s Schema) {
	registryMu.Lock()
	defer registryMu.Unlock()

	if _, exists := registry[s.Info.ID]; exists {
		panic(fmt.Sprintf("schema already registered: %s", s.Info.ID))
	}
	if s.Build == nil {
		panic(fmt.Sprintf("schema %s has no record builder", s.Info.ID))
	}

	seen := make(map[string]bool, len(s.Fields))
	for _, f := range s.Fields {
		if f.ID == "" || f.ID == SkipTarget || seen[f.ID] {
			panic(fmt.Sprintf("schema %s: invalid or duplicate field id %q", s.Info.ID, f.ID))
		}
		seen[f.ID] = true
	}
	for i, row := range s.Examples {
		if len(row) != len(s.Fields) {
			panic(fmt.Sprintf("schema %s: example row %d has %d values, want %d", s.Info.ID, i, len(row), len(s.Fields)))
		}
	}

	registry[s.Info.ID] = &s
}

// Get returns a schema by identifier.
// Returns false if not found.
func Get(id SchemaID) (*Schema, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()

	s, ok := registry[id]
	return s, ok
}

// Lookup returns a schema by identifier or an error wrapping ErrUnknownSchema.
func Lookup(id SchemaID) (*Schema, error) {
	s, ok := Get(id)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownSchema, id)
	}
	return s, nil
}

// All returns all registered schemas sorted by identifier.
func All() []*Schema {
	registryMu.RLock()
	defer registryMu.RUnlock()

	result := make([]*Schema, 0, len(registry))
	for _, s := range registry {
		result = append(result, s)
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].Info.ID < result[j].Info.ID
	})

	return result
}

// SchemaCount returns the number of registered schemas.
func SchemaCount() int {
	registryMu.RLock()
	defer registryMu.RUnlock()
	return len(registry)
}
