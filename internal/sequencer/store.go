package sequencer

import "context"

// CounterStore is the single durable integer record behind the sequencer.
//
// Error Contract:
// - Next must be atomic: under concurrent callers the returned values are
//   pairwise distinct and contiguous. It is the only code path that writes
//   the counter.
// - Current is read-only and carries no reservation semantics.
// - Infrastructure failures are returned wrapped with context.
type CounterStore interface {
	// Current returns the last allocated counter value (0 before any allocation).
	Current(ctx context.Context) (int64, error)
	// Next atomically increments the counter and returns the new value.
	Next(ctx context.Context) (int64, error)
}
