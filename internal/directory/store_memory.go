package directory

import (
	"context"
	"fmt"
	"sync"

	"recibo/pkg/sentinel"
)

// InMemoryStore holds members in memory for tests and dev mode.
type InMemoryStore struct {
	mu      sync.RWMutex
	members map[string]*Member
}

// NewInMemoryStore constructs an empty in-memory member store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{members: make(map[string]*Member)}
}

// Seed registers a member keyed by document number. Test and dev helper.
func (s *InMemoryStore) Seed(m Member) {
	s.mu.Lock()
	defer s.mu.Unlock()
	copy := m
	s.members[m.DocumentNumber] = &copy
}

func (s *InMemoryStore) FindByDocument(_ context.Context, documentNumber string) (*Member, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	m, ok := s.members[documentNumber]
	if !ok {
		return nil, fmt.Errorf("member with document %s: %w", documentNumber, sentinel.ErrNotFound)
	}
	copy := *m
	return &copy, nil
}

var _ Store = (*InMemoryStore)(nil)
