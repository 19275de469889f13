package provider

import (
	"fmt"
	"sort"
	"sync"
)

// Registry holds named factories and the instances built from them.
// The zero value is not usable; call NewRegistry.
type Registry[T Provider] struct {
	mu        sync.RWMutex
	factories map[string]Factory[T]
	built     map[string]T
}

func NewRegistry[T Provider]() *Registry[T] {
	return &Registry[T]{
		factories: make(map[string]Factory[T]),
		built:     make(map[string]T),
	}
}

// RegisterFactory makes a factory available under name, replacing any
// previous registration.
func (r *Registry[T]) RegisterFactory(name string, factory Factory[T]) {
	r.mu.Lock()
	r.factories[name] = factory
	r.mu.Unlock()
}

// Create builds a provider with the named factory. The instance is also
// cached, so a later Get(name) returns it.
func (r *Registry[T]) Create(name string, cfg map[string]any) (T, error) {
	r.mu.RLock()
	factory, ok := r.factories[name]
	r.mu.RUnlock()
	if !ok {
		var zero T
		return zero, fmt.Errorf("provider factory %q not registered", name)
	}

	inst, err := factory(cfg)
	if err != nil {
		var zero T
		return zero, err
	}
	r.Set(name, inst)
	return inst, nil
}

// Get returns the cached instance built or stored under name.
func (r *Registry[T]) Get(name string) (T, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	inst, ok := r.built[name]
	return inst, ok
}

// Set stores an instance under name, replacing any cached one.
func (r *Registry[T]) Set(name string, instance T) {
	r.mu.Lock()
	r.built[name] = instance
	r.mu.Unlock()
}

// List returns the registered factory names in sorted order.
func (r *Registry[T]) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
