package persistence

import (
	"context"
	"sync"

	"flowboard/domain/core/aggregates"
)

// MemoryStore keeps encoded documents in a map. Documents are stored encoded
// so callers never share nodes with the store.
type MemoryStore struct {
	mu   sync.RWMutex
	docs map[string][]byte
}

// NewMemoryStore creates an empty in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{docs: make(map[string][]byte)}
}

// Load implements ports.DocumentStore
func (s *MemoryStore) Load(ctx context.Context, key string) (*aggregates.DocumentState, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	data, ok := s.docs[key]
	s.mu.RUnlock()
	if !ok {
		return nil, nil
	}
	return decode(data)
}

// Save implements ports.DocumentStore
func (s *MemoryStore) Save(ctx context.Context, key string, state aggregates.DocumentState) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := encode(state)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.docs[key] = data
	s.mu.Unlock()
	return nil
}

// Keys returns the stored keys
func (s *MemoryStore) Keys() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	keys := make([]string, 0, len(s.docs))
	for k := range s.docs {
		keys = append(keys, k)
	}
	return keys
}

// Close implements ports.ClosableStore
func (s *MemoryStore) Close() error {
	return nil
}
