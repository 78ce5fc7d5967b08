package spatial

// Store holds the object lists of one run, keyed by spatial type name.
// It is not safe for concurrent use; every run owns its own Store.
type Store struct {
	types []string
	lists map[string][]*Object
}

// NewStore creates an empty store
func NewStore() *Store {
	return &Store{lists: make(map[string][]*Object)}
}

// Declare adds an empty list for a type; declaring twice is a no-op
func (s *Store) Declare(name string) {
	if _, ok := s.lists[name]; ok {
		return
	}
	s.types = append(s.types, name)
	s.lists[name] = []*Object{}
}

// Append adds objects to a type's list, declaring it if needed
func (s *Store) Append(name string, objs ...*Object) {
	s.Declare(name)
	s.lists[name] = append(s.lists[name], objs...)
}

// Objects returns a type's list. The slice is owned by the store.
func (s *Store) Objects(name string) ([]*Object, error) {
	list, ok := s.lists[name]
	if !ok {
		return nil, &UnknownTypeError{Name: name}
	}
	return list, nil
}

// Snapshot returns deep copies of a type's objects
func (s *Store) Snapshot(name string) ([]*Object, error) {
	list, err := s.Objects(name)
	if err != nil {
		return nil, err
	}
	out := make([]*Object, len(list))
	for i, o := range list {
		out[i] = o.Clone()
	}
	return out, nil
}

// Len returns the number of objects of a type
func (s *Store) Len(name string) int {
	return len(s.lists[name])
}

// Types returns declared type names in declaration order
func (s *Store) Types() []string {
	types := make([]string, len(s.types))
	copy(types, s.types)
	return types
}
