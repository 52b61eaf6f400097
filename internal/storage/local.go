package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/onegateway/site-notify/internal/domain"
)

const localFileName = "contact_submissions.jsonl"

// LocalStore appends one JSON line per record to a file on disk.
type LocalStore struct {
	path string
	mu   sync.Mutex
}

// NewLocalStore ensures dir exists and returns a store writing into it.
func NewLocalStore(dir string) (*LocalStore, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating storage directory: %w", err)
	}
	return &LocalStore{path: filepath.Join(dir, localFileName)}, nil
}

// Insert appends rec.
func (s *LocalStore) Insert(_ context.Context, rec domain.EnrichedRecord) error {
	line, err := json.Marshal(rec)
	if err != nil {
		return persistErr("local", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := os.OpenFile(s.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return persistErr("local", err)
	}
	if _, err := f.Write(append(line, '\n')); err != nil {
		f.Close()
		return persistErr("local", err)
	}
	return persistErr("local", f.Close())
}

// Path returns the file records are appended to.
func (s *LocalStore) Path() string { return s.path }

func (s *LocalStore) Close() error { return nil }
