package memory

import "sync"

// Store is the insertion-ordered log of indexed turns. TurnIndex values are
// unique at all times: inserting an existing index removes the prior entry
// and appends the replacement. The physical reordering this causes has no
// semantic consequence, retrieval never depends on position.
type Store struct {
	mu    sync.RWMutex
	turns []*IndexedTurn
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{}
}

// Upsert inserts turn, replacing any prior entry with the same TurnIndex.
// Replace semantics, not merge: the old entry is dropped entirely.
func (s *Store) Upsert(turn *IndexedTurn) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, existing := range s.turns {
		if existing.TurnIndex == turn.TurnIndex {
			s.turns = append(s.turns[:i], s.turns[i+1:]...)
			break
		}
	}
	s.turns = append(s.turns, turn)
}

// Clear empties the store unconditionally.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.turns = nil
}

// Len returns the number of stored turns.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.turns)
}

// Turns returns a copy of the turn list in insertion order. The entries are
// shared, but entries are never mutated after insertion so this is safe to
// iterate without holding the store lock.
func (s *Store) Turns() []*IndexedTurn {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*IndexedTurn, len(s.turns))
	copy(out, s.turns)
	return out
}

// replaceAll swaps in a restored turn list wholesale. Duplicate indices in
// the input are resolved last-wins to keep the uniqueness invariant.
func (s *Store) replaceAll(turns []*IndexedTurn) {
	deduped := make([]*IndexedTurn, 0, len(turns))
	seen := make(map[int]int, len(turns))
	for _, turn := range turns {
		if at, ok := seen[turn.TurnIndex]; ok {
			deduped[at] = turn
			continue
		}
		seen[turn.TurnIndex] = len(deduped)
		deduped = append(deduped, turn)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.turns = deduped
}
