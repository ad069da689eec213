package memory

import (
	"context"
	"sync"

	"github.com/burgermaster/blendcalc/internal/domain/blend"
	"github.com/burgermaster/blendcalc/internal/ports/outbound"
)

// StateStore keeps calculator state in process memory. It is the default
// backend for tests and the CLI.
type StateStore struct {
	data  map[string]string
	mutex sync.RWMutex
}

// NewStateStore creates an empty in-memory state store
func NewStateStore() *StateStore {
	return &StateStore{data: make(map[string]string)}
}

var _ outbound.StateStore = (*StateStore)(nil)

// Get returns the value stored under key
func (s *StateStore) Get(ctx context.Context, key string) (string, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	value, ok := s.data[key]
	if !ok {
		return "", blend.ErrStateNotFound
	}
	return value, nil
}

// Set stores value under key
func (s *StateStore) Set(ctx context.Context, key, value string) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	s.data[key] = value
	return nil
}

// SetMany stores every entry under a single lock
func (s *StateStore) SetMany(ctx context.Context, entries map[string]string) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	for key, value := range entries {
		s.data[key] = value
	}
	return nil
}

// Delete removes key; deleting an absent key is not an error
func (s *StateStore) Delete(ctx context.Context, key string) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	delete(s.data, key)
	return nil
}

// DeleteMany removes every key under a single lock
func (s *StateStore) DeleteMany(ctx context.Context, keys []string) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	for _, key := range keys {
		delete(s.data, key)
	}
	return nil
}
