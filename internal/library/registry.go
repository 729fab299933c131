package library

// Registry is a name-keyed collection with first-occurrence-wins insertion.
// Names keeps insertion order so iteration (and therefore search results)
// stay deterministic for a fixed index state.
//
// Inserts are not internally synchronized: the index serializes them against
// the file enumeration order, which is what makes first-wins deterministic.
type Registry[T any] struct {
	names []string
	items map[string]T
}

// NewRegistry creates an empty registry.
func NewRegistry[T any]() *Registry[T] {
	return &Registry[T]{items: make(map[string]T)}
}

// InsertIfAbsent stores item under name unless the name is already present.
// It reports whether the entry was kept, making the first-wins policy
// directly observable.
func (r *Registry[T]) InsertIfAbsent(name string, item T) bool {
	if _, ok := r.items[name]; ok {
		return false
	}
	r.items[name] = item
	r.names = append(r.names, name)
	return true
}

// Get returns the entry stored under name.
func (r *Registry[T]) Get(name string) (T, bool) {
	item, ok := r.items[name]
	return item, ok
}

// Names returns all names in insertion order.
func (r *Registry[T]) Names() []string {
	out := make([]string, len(r.names))
	copy(out, r.names)
	return out
}

// Len returns the number of entries.
func (r *Registry[T]) Len() int {
	return len(r.names)
}
