package persistence

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"flowboard/domain/core/aggregates"
)

// FileStore keeps every board in one JSON file, an object keyed by board key.
// Writes go to a temporary file that is renamed over the original.
type FileStore struct {
	mu   sync.Mutex
	path string
}

// NewFileStore creates a store backed by path, creating its directory
func NewFileStore(path string) (*FileStore, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("file store mkdir: %w", err)
		}
	}
	return &FileStore{path: path}, nil
}

// Path returns the backing file
func (s *FileStore) Path() string {
	return s.path
}

// Load implements ports.DocumentStore
func (s *FileStore) Load(ctx context.Context, key string) (*aggregates.DocumentState, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	boards, err := s.read()
	if err != nil {
		return nil, err
	}
	raw, ok := boards[key]
	if !ok {
		return nil, nil
	}
	return decode(raw)
}

// Save implements ports.DocumentStore
func (s *FileStore) Save(ctx context.Context, key string, state aggregates.DocumentState) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := encode(state)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	boards, err := s.read()
	if err != nil {
		// an unreadable file is replaced rather than blocking every save
		boards = map[string]json.RawMessage{}
	}
	boards[key] = data
	return s.write(boards)
}

// Close implements ports.ClosableStore
func (s *FileStore) Close() error {
	return nil
}

func (s *FileStore) read() (map[string]json.RawMessage, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return map[string]json.RawMessage{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("file store read: %w", err)
	}
	boards := map[string]json.RawMessage{}
	if len(data) == 0 {
		return boards, nil
	}
	if err := json.Unmarshal(data, &boards); err != nil {
		return nil, fmt.Errorf("file store %s is corrupt: %w", s.path, err)
	}
	return boards, nil
}

func (s *FileStore) write(boards map[string]json.RawMessage) error {
	data, err := json.MarshalIndent(boards, "", "  ")
	if err != nil {
		return fmt.Errorf("file store encode: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(s.path), "."+filepath.Base(s.path)+".*")
	if err != nil {
		return fmt.Errorf("file store temp: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("file store write: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("file store sync: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("file store close: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("file store rename: %w", err)
	}
	return nil
}
