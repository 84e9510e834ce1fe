package sequencer

import (
	"context"
	"sync"
)

// InMemoryCounterStore keeps the counter in process memory for tests and dev
// mode. The mutex serializes Next, matching the atomicity the durable stores
// provide.
type InMemoryCounterStore struct {
	mu    sync.Mutex
	value int64
}

// NewInMemoryCounterStore constructs a counter store starting at the given
// value; the first Next returns start+1.
func NewInMemoryCounterStore(start int64) *InMemoryCounterStore {
	return &InMemoryCounterStore{value: start}
}

func (s *InMemoryCounterStore) Current(_ context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.value, nil
}

func (s *InMemoryCounterStore) Next(_ context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.value++
	return s.value, nil
}
