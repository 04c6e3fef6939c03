package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
)

// FileStore keeps all documents in a single JSON object on disk. The file is read on
// every Get so edits by other processes are observed; writes replace it atomically.
type FileStore struct {
	mu   sync.Mutex
	path string
}

// NewFileStore creates the parent directory of path if needed.
func NewFileStore(path string) (*FileStore, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create store dir: %w", err)
		}
	}
	return &FileStore{path: path}, nil
}

func (s *FileStore) load() (map[string]json.RawMessage, error) {
	raw, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return map[string]json.RawMessage{}, nil
	}
	if err != nil {
		return nil, err
	}
	dict := map[string]json.RawMessage{}
	if len(raw) == 0 {
		return dict, nil
	}
	if err := json.Unmarshal(raw, &dict); err != nil {
		return nil, fmt.Errorf("decode %s: %w", s.path, err)
	}
	return dict, nil
}

// Get returns the document stored under key.
func (s *FileStore) Get(_ context.Context, key string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	dict, err := s.load()
	if err != nil {
		return nil, err
	}
	v, ok := dict[key]
	if !ok {
		return nil, ErrNotFound
	}
	return v, nil
}

// Put replaces the document stored under key. value must be valid JSON.
func (s *FileStore) Put(_ context.Context, key string, value []byte) error {
	if !json.Valid(value) {
		return fmt.Errorf("store %q: value is not valid JSON", key)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	dict, err := s.load()
	if err != nil {
		// A corrupt file is replaced rather than blocking every future write.
		dict = map[string]json.RawMessage{}
	}
	dict[key] = json.RawMessage(value)

	out, err := json.MarshalIndent(dict, "", "  ")
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".state-*.json")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(out); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), s.path)
}

func (s *FileStore) Close() error { return nil }
