package engine

// Store maps entities to one record type. Entities keep insertion order,
// so iteration is deterministic across runs.
// A Store is owned by the simulation goroutine and is not safe for concurrent use.
type Store[T any] struct {
	records  map[EntityID]T
	entities []EntityID
}

// NewStore creates an empty store
func NewStore[T any]() *Store[T] {
	return &Store[T]{
		records:  make(map[EntityID]T),
		entities: make([]EntityID, 0, 16),
	}
}

// Set inserts or replaces the record of e
func (s *Store[T]) Set(e EntityID, val T) {
	if _, exists := s.records[e]; !exists {
		s.entities = append(s.entities, e)
	}
	s.records[e] = val
}

// Get returns the record of e, ok is false when e has none
func (s *Store[T]) Get(e EntityID) (T, bool) {
	val, ok := s.records[e]
	return val, ok
}

// Has reports whether e has a record
func (s *Store[T]) Has(e EntityID) bool {
	_, ok := s.records[e]
	return ok
}

// Remove drops the record of e, if any
func (s *Store[T]) Remove(e EntityID) {
	if _, exists := s.records[e]; !exists {
		return
	}
	delete(s.records, e)
	for i, entity := range s.entities {
		if entity == e {
			s.entities = append(s.entities[:i], s.entities[i+1:]...)
			break
		}
	}
}

// Entities returns a copy of all entities with a record, in insertion order
func (s *Store[T]) Entities() []EntityID {
	result := make([]EntityID, len(s.entities))
	copy(result, s.entities)
	return result
}

// Len returns the number of records
func (s *Store[T]) Len() int {
	return len(s.entities)
}
