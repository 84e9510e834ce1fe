package artifact

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"recibo/pkg/sentinel"
)

// InMemoryStore keeps artifacts in memory for tests and dev mode.
type InMemoryStore struct {
	mu        sync.RWMutex
	artifacts map[string]*Artifact
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{artifacts: make(map[string]*Artifact)}
}

func (s *InMemoryStore) Put(_ context.Context, receiptNumber string, data []byte, memberID uuid.UUID) (Handle, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	d := digest(data)
	if existing, ok := s.artifacts[receiptNumber]; ok {
		if existing.Digest != d {
			return "", fmt.Errorf("artifact %s holds different content: %w", receiptNumber, sentinel.ErrConflict)
		}
		return existing.Handle, nil
	}

	stored := &Artifact{
		ReceiptNumber: receiptNumber,
		MemberID:      memberID,
		Data:          append([]byte(nil), data...),
		Digest:        d,
		Handle:        HandleFor(receiptNumber),
		StoredAt:      time.Now(),
	}
	s.artifacts[receiptNumber] = stored
	return stored.Handle, nil
}

func (s *InMemoryStore) Get(_ context.Context, receiptNumber string) (*Artifact, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	a, ok := s.artifacts[receiptNumber]
	if !ok {
		return nil, fmt.Errorf("artifact %s: %w", receiptNumber, sentinel.ErrNotFound)
	}
	copy := *a
	copy.Data = append([]byte(nil), a.Data...)
	return &copy, nil
}

// Len reports the number of stored artifacts. Test helper.
func (s *InMemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.artifacts)
}

var _ Store = (*InMemoryStore)(nil)
