package backend

import (
	"fmt"
	"sort"
	"sync"
)

// Factory creates a backend.
type Factory func() (Backend, error)

// Registry manages backend factories and created instances by kind.
type Registry struct {
	mu        sync.RWMutex
	factories map[Kind]Factory
	instances map[Kind]Backend
}

// NewRegistry creates a new empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		factories: make(map[Kind]Factory),
		instances: make(map[Kind]Backend),
	}
}

// RegisterFactory registers the factory for kind, replacing any previous one.
func (r *Registry) RegisterFactory(kind Kind, factory Factory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[kind] = factory
}

// Create instantiates a backend using the factory for kind.
func (r *Registry) Create(kind Kind) (Backend, error) {
	r.mu.RLock()
	factory, ok := r.factories[kind]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("backend factory %q not registered", kind)
	}
	return factory()
}

// Get returns the cached backend for kind.
func (r *Registry) Get(kind Kind) (Backend, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	b, ok := r.instances[kind]
	return b, ok
}

// Set caches a backend for kind.
func (r *Registry) Set(kind Kind, b Backend) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.instances[kind] = b
}

// GetOrCreate returns the cached backend for kind, creating and caching it
// on first use.
func (r *Registry) GetOrCreate(kind Kind) (Backend, error) {
	if b, ok := r.Get(kind); ok {
		return b, nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if b, ok := r.instances[kind]; ok {
		return b, nil
	}
	factory, ok := r.factories[kind]
	if !ok {
		return nil, fmt.Errorf("backend factory %q not registered", kind)
	}
	b, err := factory()
	if err != nil {
		return nil, err
	}
	r.instances[kind] = b
	return b, nil
}

// List returns the sorted kinds of all registered factories.
func (r *Registry) List() []Kind {
	r.mu.RLock()
	defer r.mu.RUnlock()
	kinds := make([]Kind, 0, len(r.factories))
	for k := range r.factories {
		kinds = append(kinds, k)
	}
	sort.Slice(kinds, func(i, j int) bool { return kinds[i] < kinds[j] })
	return kinds
}
