package memory

import (
	"context"
	"sync"

	"github.com/goodtune/classwatch/internal/storage"
)

// Store is an in-process status table. Records live until the process exits.
type Store struct {
	mu       sync.RWMutex
	statuses map[string]storage.StatusRecord
}

// New creates an empty in-memory store.
func New() *Store {
	return &Store{
		statuses: make(map[string]storage.StatusRecord),
	}
}

// Put overwrites the record for studentID.
func (s *Store) Put(_ context.Context, studentID string, record storage.StatusRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.statuses[studentID] = record
	return nil
}

// Get returns the record for studentID or storage.ErrNotFound.
func (s *Store) Get(_ context.Context, studentID string) (*storage.StatusRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	record, ok := s.statuses[studentID]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return &record, nil
}

// All returns a copy of the whole table.
func (s *Store) All(_ context.Context) (map[string]storage.StatusRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snapshot := make(map[string]storage.StatusRecord, len(s.statuses))
	for id, record := range s.statuses {
		snapshot[id] = record
	}
	return snapshot, nil
}

// Len returns the number of students in the table.
func (s *Store) Len(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.statuses), nil
}

// Close drops the table.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.statuses = make(map[string]storage.StatusRecord)
	return nil
}
