package catalog

// Store exposes the fixed model set to handlers and the session controller.
type Store interface {
	List() []ModelOption
	FindByID(id string) (ModelOption, bool)
	Default() ModelOption
}

// MemoryStore implements Store with an in-memory slice.
type MemoryStore struct {
	items []ModelOption
}

// NewMemoryStore returns a MemoryStore preloaded with the supplied models.
// The first entry is the default selection.
func NewMemoryStore(items []ModelOption) *MemoryStore {
	return &MemoryStore{items: append([]ModelOption(nil), items...)}
}

// List returns the catalog in declaration order.
func (s *MemoryStore) List() []ModelOption {
	return append([]ModelOption(nil), s.items...)
}

// FindByID looks up a model by identifier.
func (s *MemoryStore) FindByID(id string) (ModelOption, bool) {
	for _, item := range s.items {
		if item.ID == id {
			return item, true
		}
	}
	return ModelOption{}, false
}

// Default returns the first catalog entry, or the zero value when empty.
func (s *MemoryStore) Default() ModelOption {
	if len(s.items) == 0 {
		return ModelOption{}
	}
	return s.items[0]
}
