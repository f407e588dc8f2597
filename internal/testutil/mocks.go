package testutil

import (
	"context"
	"sync"

	"flowboard/domain/core/aggregates"

	"github.com/stretchr/testify/mock"
)

// MockDocumentStore is a testify mock of ports.DocumentStore
type MockDocumentStore struct {
	mock.Mock
}

func (m *MockDocumentStore) Load(ctx context.Context, key string) (*aggregates.DocumentState, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*aggregates.DocumentState), args.Error(1)
}

func (m *MockDocumentStore) Save(ctx context.Context, key string, state aggregates.DocumentState) error {
	args := m.Called(ctx, key, state)
	return args.Error(0)
}

// RecordingStore keeps every saved state in memory and can be told to fail
type RecordingStore struct {
	mu      sync.Mutex
	docs    map[string]aggregates.DocumentState
	saves   int
	LoadErr error
	SaveErr error
}

func NewRecordingStore() *RecordingStore {
	return &RecordingStore{docs: make(map[string]aggregates.DocumentState)}
}

func (s *RecordingStore) Load(_ context.Context, key string) (*aggregates.DocumentState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.LoadErr != nil {
		return nil, s.LoadErr
	}
	state, ok := s.docs[key]
	if !ok {
		return nil, nil
	}
	return &state, nil
}

func (s *RecordingStore) Save(_ context.Context, key string, state aggregates.DocumentState) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saves++
	if s.SaveErr != nil {
		return s.SaveErr
	}
	s.docs[key] = state
	return nil
}

// Put seeds the store without counting a save
func (s *RecordingStore) Put(key string, state aggregates.DocumentState) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.docs[key] = state
}

// Saved returns the last stored state for key
func (s *RecordingStore) Saved(key string) (aggregates.DocumentState, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	state, ok := s.docs[key]
	return state, ok
}

// Saves counts Save calls, failed ones included
func (s *RecordingStore) Saves() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saves
}
