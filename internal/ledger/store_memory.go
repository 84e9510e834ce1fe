package ledger

import (
	"context"
	"fmt"
	"sync"
	"time"

	"recibo/pkg/sentinel"
)

// InMemoryRecorder keeps ledger entries in memory for tests and dev mode.
type InMemoryRecorder struct {
	mu      sync.RWMutex
	entries map[string]*Entry
}

func NewInMemoryRecorder() *InMemoryRecorder {
	return &InMemoryRecorder{entries: make(map[string]*Entry)}
}

func (s *InMemoryRecorder) Append(_ context.Context, entry Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.entries[entry.ReceiptNumber]; ok {
		return fmt.Errorf("ledger entry %s: %w", entry.ReceiptNumber, sentinel.ErrAlreadyExists)
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now()
	}
	s.entries[entry.ReceiptNumber] = &entry
	return nil
}

func (s *InMemoryRecorder) FindByReceipt(_ context.Context, receiptNumber string) (*Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.entries[receiptNumber]
	if !ok {
		return nil, fmt.Errorf("ledger entry %s: %w", receiptNumber, sentinel.ErrNotFound)
	}
	copy := *e
	return &copy, nil
}

// Len reports the number of recorded entries. Test helper.
func (s *InMemoryRecorder) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

var _ Recorder = (*InMemoryRecorder)(nil)
