// Package catalog owns the set of parsed component definitions and exposes
// read-only lookup to the rest of the system. It is populated once at startup
// by the symbol adapter or by the declarative loaders and is immutable at
// query time.
package catalog

import (
	"fmt"
	"sync"

	"github.com/circuitsmith/circuitsmith/pkg/circuit"
)

// Catalog is an in-memory registry of component definitions keyed by id.
type Catalog struct {
	mu    sync.RWMutex
	defs  map[string]*circuit.ComponentDefinition
	order []string // registration order, for deterministic listing
}

// New creates an empty catalog.
func New() *Catalog {
	return &Catalog{
		defs: make(map[string]*circuit.ComponentDefinition),
	}
}

// Register adds a definition, replacing any previous definition with the
// same id.
func (c *Catalog) Register(def *circuit.ComponentDefinition) error {
	if def == nil || def.ID == "" {
		return fmt.Errorf("catalog: definition missing id")
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.defs[def.ID]; !exists {
		c.order = append(c.order, def.ID)
	}
	c.defs[def.ID] = def
	return nil
}

// Get returns the definition with the given id.
func (c *Catalog) Get(id string) (*circuit.ComponentDefinition, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	def, ok := c.defs[id]
	return def, ok
}

// All returns every definition in registration order.
func (c *Catalog) All() []*circuit.ComponentDefinition {
	c.mu.RLock()
	defer c.mu.RUnlock()

	result := make([]*circuit.ComponentDefinition, 0, len(c.order))
	for _, id := range c.order {
		result = append(result, c.defs[id])
	}
	return result
}

// ByType returns every definition of the given component type, in
// registration order.
func (c *Catalog) ByType(t circuit.ComponentType) []*circuit.ComponentDefinition {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var result []*circuit.ComponentDefinition
	for _, id := range c.order {
		if def := c.defs[id]; def.Type == t {
			result = append(result, def)
		}
	}
	return result
}

// Len returns the number of registered definitions.
func (c *Catalog) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.defs)
}
