package sequencer

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"recibo/pkg/sentinel"
)

// flakyCounterStore fails Next a configured number of times before delegating
// to an in-memory counter.
type flakyCounterStore struct {
	mu        sync.Mutex
	failures  int
	attempts  int
	delegated InMemoryCounterStore
}

func (s *flakyCounterStore) Current(ctx context.Context) (int64, error) {
	return s.delegated.Current(ctx)
}

func (s *flakyCounterStore) Next(ctx context.Context) (int64, error) {
	s.mu.Lock()
	s.attempts++
	fail := s.attempts <= s.failures
	s.mu.Unlock()
	if fail {
		return 0, errors.New("counter store unreachable")
	}
	return s.delegated.Next(ctx)
}

func TestSequencer_New(t *testing.T) {
	t.Run("nil store returns error", func(t *testing.T) {
		_, err := New(nil)
		require.Error(t, err)
	})
}

func TestSequencer_AllocateIsUniqueUnderConcurrency(t *testing.T) {
	seq, err := New(NewInMemoryCounterStore(0))
	require.NoError(t, err)

	const goroutines = 100

	var wg sync.WaitGroup
	var mu sync.Mutex
	seen := make(map[Correlative]int, goroutines)

	for n := 0; n < goroutines; n++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c, err := seq.Allocate(context.Background())
			assert.NoError(t, err)
			mu.Lock()
			seen[c]++
			mu.Unlock()
		}()
	}
	wg.Wait()

	require.Len(t, seen, goroutines, "every allocation must yield a distinct correlative")
	for c, count := range seen {
		assert.Equal(t, 1, count, "correlative %s allocated more than once", c)
	}

	// Allocations form a contiguous sequence starting at 1.
	for i := int64(1); i <= goroutines; i++ {
		assert.Contains(t, seen, DefaultScheme.Format(i))
	}
}

func TestSequencer_PeekDoesNotMutate(t *testing.T) {
	seq, err := New(NewInMemoryCounterStore(10))
	require.NoError(t, err)
	ctx := context.Background()

	var peeked Correlative
	for n := 0; n < 5; n++ {
		peeked, err = seq.Peek(ctx)
		require.NoError(t, err)
		assert.Equal(t, Correlative("R-00011"), peeked)
	}

	allocated, err := seq.Allocate(ctx)
	require.NoError(t, err)
	assert.Equal(t, peeked, allocated, "allocate must yield what peek last reported")
}

func TestSequencer_AllocateRetriesTransientFailures(t *testing.T) {
	store := &flakyCounterStore{failures: 2}
	seq, err := New(store, WithMaxRetries(2))
	require.NoError(t, err)

	c, err := seq.Allocate(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Correlative("R-00001"), c)
	assert.Equal(t, 3, store.attempts)
}

func TestSequencer_AllocateUnavailableAfterBoundedRetries(t *testing.T) {
	store := &flakyCounterStore{failures: 10}
	seq, err := New(store, WithMaxRetries(2))
	require.NoError(t, err)

	_, err = seq.Allocate(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, sentinel.ErrUnavailable)
	assert.Equal(t, 3, store.attempts, "initial attempt plus two retries, never more")

	// The failed allocations consumed nothing: the next successful call gets
	// the first value.
	store.failures = 0
	c, err := seq.Allocate(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Correlative("R-00001"), c)
}

func TestSequencer_CustomScheme(t *testing.T) {
	seq, err := New(NewInMemoryCounterStore(0), WithScheme(Scheme{Prefix: "REC", Width: 3}))
	require.NoError(t, err)

	c, err := seq.Allocate(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Correlative("REC-001"), c)
}
