package syncer

import (
	"fmt"
	"sync"

	"github.com/vanshika2720/cartography-sub000/internal/types"
)

// Registry holds the provider modules of a deployment in registration order.
// Registration order is significant: modules whose entities are relationship
// targets of later modules should register first so target matching finds
// already-written nodes.
//
// Registry is safe for concurrent use.
type Registry struct {
	mu      sync.RWMutex
	byName  map[string]Module
	ordered []Module
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		byName: make(map[string]Module),
	}
}

// Register adds a module. Registering two modules under the same name is a
// configuration error.
func (r *Registry) Register(m Module) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	name := m.Name()
	if _, exists := r.byName[name]; exists {
		return types.NewError(types.SYNC_DUPLICATE_MODULE,
			fmt.Sprintf("module %q is already registered", name))
	}
	r.byName[name] = m
	r.ordered = append(r.ordered, m)
	return nil
}

// Get returns the module registered under name, or nil.
func (r *Registry) Get(name string) Module {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.byName[name]
}

// Modules returns the registered modules in registration order.
func (r *Registry) Modules() []Module {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Module, len(r.ordered))
	copy(out, r.ordered)
	return out
}

// Len returns the number of registered modules.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.ordered)
}
