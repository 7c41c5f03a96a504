package annlib

import "sync"

// Registry is a thin lookup table from name to Index, letting a
// process hold several independently-built indexes (e.g. one per
// tenant or per collection) without a database layer around them.
type Registry struct {
	mu      sync.RWMutex
	indexes map[string]Index
}

func NewRegistry() *Registry {
	return &Registry{indexes: make(map[string]Index)}
}

// Register adds idx under name. It fails if name is already taken.
func (r *Registry) Register(name string, idx Index) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.indexes[name]; exists {
		return ErrIndexNameTaken
	}
	r.indexes[name] = idx
	return nil
}

// Get returns the index registered under name.
func (r *Registry) Get(name string) (Index, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	idx, ok := r.indexes[name]
	if !ok {
		return nil, ErrIndexNotFound
	}
	return idx, nil
}

// Remove drops name from the registry, closing its index. It is a
// no-op if name is not registered.
func (r *Registry) Remove(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	idx, ok := r.indexes[name]
	if !ok {
		return nil
	}
	delete(r.indexes, name)
	return idx.Close()
}

// Names returns the currently registered index names.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.indexes))
	for name := range r.indexes {
		names = append(names, name)
	}
	return names
}
