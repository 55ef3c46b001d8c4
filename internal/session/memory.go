package session

import (
	"context"
	"sync"
)

// MemoryStore keeps state in process memory. It backs runs without a
// configured Redis and the package tests; nothing survives a restart,
// which matches a cleared browser profile.
type MemoryStore struct {
	mu      sync.RWMutex
	durable map[string]string
	tab     map[string]string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		durable: make(map[string]string),
		tab:     make(map[string]string),
	}
}

func (s *MemoryStore) bucket(scope Scope) map[string]string {
	if scope == Tab {
		return s.tab
	}
	return s.durable
}

func (s *MemoryStore) Get(_ context.Context, scope Scope, key string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.bucket(scope)[key]
	return v, ok, nil
}

func (s *MemoryStore) Set(_ context.Context, scope Scope, key string, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.bucket(scope)[key] = value
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, scope Scope, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.bucket(scope), key)
	return nil
}

var _ Store = (*MemoryStore)(nil)
