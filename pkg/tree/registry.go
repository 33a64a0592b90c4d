package tree

import (
	"fmt"
	"sort"
	"sync"
)

// Registry stores bridges by backend name, providing discovery and
// duplication safeguards. Callers can embed or wrap this for
// dependency injection.
type Registry struct {
	mu      sync.RWMutex
	bridges map[string]Bridge
}

// NewRegistry creates an empty registry instance.
func NewRegistry() *Registry {
	return &Registry{
		bridges: make(map[string]Bridge),
	}
}

// Register adds a bridge by its Name(). Duplicate names return an error.
func (r *Registry) Register(bridge Bridge) error {
	if bridge == nil {
		return fmt.Errorf("tree: bridge is required")
	}
	name := bridge.Name()
	if name == "" {
		return fmt.Errorf("tree: bridge name is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.bridges[name]; exists {
		return fmt.Errorf("tree: bridge %q already registered", name)
	}

	r.bridges[name] = bridge
	return nil
}

// MustRegister panics on registration failure. Useful for init-time wiring.
func (r *Registry) MustRegister(bridge Bridge) {
	if err := r.Register(bridge); err != nil {
		panic(err)
	}
}

// Get retrieves a bridge by backend name.
func (r *Registry) Get(name string) (Bridge, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	bridge, ok := r.bridges[name]
	if !ok {
		return nil, fmt.Errorf("tree: bridge %q not found", name)
	}
	return bridge, nil
}

// MustGet panics if the bridge is missing.
func (r *Registry) MustGet(name string) Bridge {
	bridge, err := r.Get(name)
	if err != nil {
		panic(err)
	}
	return bridge
}

// List returns a sorted list of backend names.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.bridges))
	for name := range r.bridges {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Has reports whether a backend is registered.
func (r *Registry) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.bridges[name]
	return ok
}
