// Package sequencer owns the monotonically increasing receipt-number counter.
// Allocation is linearizable: the backing store serializes concurrent callers,
// so no two receipts ever share a correlative.
package sequencer

import (
	"context"
	"fmt"
	"log/slog"

	"recibo/pkg/retry"
	"recibo/pkg/sentinel"
)

// Sequencer produces the next unused correlative exactly once per Allocate
// call. Peek exists for display only and must never be treated as a
// reservation: the true value is re-derived by Allocate at commit time.
type Sequencer struct {
	store      CounterStore
	scheme     Scheme
	maxRetries uint64
	logger     *slog.Logger
}

type Option func(*Sequencer)

func WithScheme(scheme Scheme) Option {
	return func(s *Sequencer) {
		s.scheme = scheme
	}
}

func WithMaxRetries(n uint64) Option {
	return func(s *Sequencer) {
		s.maxRetries = n
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(s *Sequencer) {
		s.logger = logger
	}
}

func New(store CounterStore, opts ...Option) (*Sequencer, error) {
	if store == nil {
		return nil, fmt.Errorf("counter store is required")
	}

	s := &Sequencer{
		store:      store,
		scheme:     DefaultScheme,
		maxRetries: 2,
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Scheme returns the numbering scheme in effect.
func (s *Sequencer) Scheme() Scheme { return s.scheme }

// Peek returns the correlative that would be allocated next. It has no side
// effect and is non-binding: concurrent allocations can consume the reported
// value before the caller commits anything.
func (s *Sequencer) Peek(ctx context.Context) (Correlative, error) {
	current, err := s.store.Current(ctx)
	if err != nil {
		return "", fmt.Errorf("peek counter: %w: %w", sentinel.ErrUnavailable, err)
	}
	return s.scheme.Format(current + 1), nil
}

// Allocate atomically increments the counter and returns the allocated
// correlative. Once Allocate returns, the value is spent: it is never handed
// out again even if the caller's downstream steps fail.
//
// Transient store failures are retried a small bounded number of times; if the
// update still cannot be committed, no correlative is considered issued and
// the error wraps sentinel.ErrUnavailable.
func (s *Sequencer) Allocate(ctx context.Context) (Correlative, error) {
	var value int64
	err := retry.Transient(ctx, s.maxRetries, func() error {
		var nextErr error
		value, nextErr = s.store.Next(ctx)
		return nextErr
	})
	if err != nil {
		return "", fmt.Errorf("allocate correlative: %w: %w", sentinel.ErrUnavailable, err)
	}

	correlative := s.scheme.Format(value)
	s.logger.DebugContext(ctx, "correlative allocated", "correlative", correlative)
	return correlative, nil
}
