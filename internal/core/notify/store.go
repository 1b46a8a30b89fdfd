package notify

import "sync"

// Store owns the ordered collection of active notifications and the id
// counter. It performs no validation; normalization and capacity policy
// belong to the Manager.
type Store struct {
	mu     sync.RWMutex
	nextID ID
	items  []Notification
}

// NewStore creates an empty store. The first allocated id is 0.
func NewStore() *Store {
	return &Store{}
}

// AllocateID returns a fresh id and advances the counter.
func (s *Store) AllocateID() ID {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextID
	s.nextID++
	return id
}

// Insert appends n to the end of the collection.
func (s *Store) Insert(n Notification) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = append(s.items, n)
}

// RemoveByID removes the notification with the given id. It returns false
// when no such notification exists.
func (s *Store) RemoveByID(id ID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, n := range s.items {
		if n.ID == id {
			s.items = append(s.items[:i], s.items[i+1:]...)
			return true
		}
	}
	return false
}

// ReplaceAll swaps the whole collection.
func (s *Store) ReplaceAll(items []Notification) {
	next := make([]Notification, len(items))
	copy(next, items)

	s.mu.Lock()
	s.items = next
	s.mu.Unlock()
}

// Snapshot returns a copy of the current collection.
func (s *Store) Snapshot() []Notification {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Notification, len(s.items))
	copy(out, s.items)
	return out
}

// Len returns the number of active notifications.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}
