package edict

// Registry tracks all per-slot stores and supports bulk cleanup on free.
type Registry struct {
	stores []Removable
}

func NewRegistry() *Registry {
	return &Registry{
		stores: make([]Removable, 0, 4),
	}
}

// Register adds a store to the registry.
func (r *Registry) Register(store Removable) {
	r.stores = append(r.stores, store)
}

// RemoveAll clears the given slot from every registered store.
func (r *Registry) RemoveAll(index int) {
	for _, s := range r.stores {
		s.Remove(index)
	}
}
