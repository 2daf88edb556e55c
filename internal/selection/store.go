package selection

import (
	"errors"

	"github.com/noah-isme/backend-videoquote/internal/idea"
)

// ErrUnknownIdea is returned when an id does not belong to the pool.
var ErrUnknownIdea = errors.New("selection: idea not in pool")

// Store keeps an ordered, duplicate-free selection over a pool of ideas.
// It is not safe for concurrent use.
type Store struct {
	pool  map[string]idea.VideoIdea
	order []string
	set   map[string]struct{}
}

// New builds a store over pool. Selected ids that are not in the pool, or repeat
// an earlier id, are dropped.
func New(pool []idea.VideoIdea, selected []string) *Store {
	s := &Store{
		pool: idea.Index(pool),
		set:  make(map[string]struct{}, len(selected)),
	}
	for _, id := range selected {
		_ = s.Add(id)
	}
	return s
}

// Toggle flips membership of id and reports whether it is selected afterwards.
func (s *Store) Toggle(id string) (bool, error) {
	if _, ok := s.set[id]; ok {
		s.Remove(id)
		return false, nil
	}
	if err := s.Add(id); err != nil {
		return false, err
	}
	return true, nil
}

// Add appends id to the selection. Adding a selected id is a no-op.
func (s *Store) Add(id string) error {
	if _, ok := s.pool[id]; !ok {
		return ErrUnknownIdea
	}
	if _, ok := s.set[id]; ok {
		return nil
	}
	s.set[id] = struct{}{}
	s.order = append(s.order, id)
	return nil
}

// Remove drops id from the selection if present.
func (s *Store) Remove(id string) {
	if _, ok := s.set[id]; !ok {
		return
	}
	delete(s.set, id)
	for i, v := range s.order {
		if v == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
}

// Clear empties the selection.
func (s *Store) Clear() {
	s.order = nil
	s.set = make(map[string]struct{})
}

func (s *Store) IsSelected(id string) bool {
	_, ok := s.set[id]
	return ok
}

// IDs returns the selected ids in selection order.
func (s *Store) IDs() []string {
	out := make([]string, len(s.order))
	copy(out, s.order)
	return out
}

// Items returns the selected ideas in selection order.
func (s *Store) Items() []idea.VideoIdea {
	out := make([]idea.VideoIdea, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.pool[id])
	}
	return out
}

func (s *Store) Len() int { return len(s.order) }
