package store

import (
	"fmt"
	"path/filepath"
	"sync"
)

// Registry caches Store instances per (resolved database path, agent
// label) so repeated acquisitions within one process share a handle.
// Closing a store removes it from the registry that produced it.
type Registry struct {
	mu     sync.Mutex
	stores map[string]*Store
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{stores: make(map[string]*Store)}
}

// Get returns the cached store for (dbPath, agent), constructing and
// caching one on first access. Safe for concurrent first access.
func (r *Registry) Get(dbPath, agent string) (*Store, error) {
	abs, err := filepath.Abs(dbPath)
	if err != nil {
		return nil, fmt.Errorf("resolve path: %w", err)
	}
	key := abs + "::" + agent

	r.mu.Lock()
	defer r.mu.Unlock()
	if s, ok := r.stores[key]; ok {
		return s, nil
	}
	s, err := New(abs, agent)
	if err != nil {
		return nil, err
	}
	s.reg = r
	s.key = key
	r.stores[key] = s
	return s, nil
}

func (r *Registry) remove(key string) {
	r.mu.Lock()
	delete(r.stores, key)
	r.mu.Unlock()
}

// len reports the number of cached stores (used by tests).
func (r *Registry) len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.stores)
}

// defaultRegistry backs the package-level Get.
var defaultRegistry = NewRegistry()

// Get returns a process-wide shared store for (dbPath, agent).
func Get(dbPath, agent string) (*Store, error) {
	return defaultRegistry.Get(dbPath, agent)
}
