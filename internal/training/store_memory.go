package training

import (
	"context"
	"sync"
)

// MemoryStore is an in-memory Store implementation for tests and ephemeral
// runs. Documents are copied on load and save so callers never alias the
// stored state.
type MemoryStore struct {
	mu      sync.Mutex
	idSets  map[Doc]IDSet
	cursors map[Doc]CursorState
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		idSets:  make(map[Doc]IDSet),
		cursors: make(map[Doc]CursorState),
	}
}

func (s *MemoryStore) LoadIDSet(_ context.Context, doc Doc) IDSet {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := IDSet{}
	for id := range s.idSets[doc] {
		out.Add(id)
	}
	return out
}

func (s *MemoryStore) SaveIDSet(_ context.Context, doc Doc, ids IDSet) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cp := IDSet{}
	for id := range ids {
		cp.Add(id)
	}
	s.idSets[doc] = cp
	return nil
}

func (s *MemoryStore) LoadCursor(_ context.Context, doc Doc) CursorState {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := s.cursors[doc]
	return CursorState{Order: append([]int(nil), st.Order...), Cursor: st.Cursor}
}

func (s *MemoryStore) SaveCursor(_ context.Context, doc Doc, st CursorState) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.cursors[doc] = CursorState{Order: append([]int(nil), st.Order...), Cursor: st.Cursor}
	return nil
}

func (s *MemoryStore) Reset(_ context.Context, doc Doc) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.idSets, doc)
	delete(s.cursors, doc)
	return nil
}
