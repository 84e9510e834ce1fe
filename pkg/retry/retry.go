// Package retry bounds retries of transient I/O against external collaborators.
// Lower layers never retry beyond this small bounded count; classification of
// the final failure is left to the caller.
package retry

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
)

const initialInterval = 50 * time.Millisecond

// Transient runs fn, retrying with exponential backoff up to maxRetries extra
// attempts. It stops early when ctx is cancelled or fn returns a permanent
// error, and returns the last error seen.
func Transient(ctx context.Context, maxRetries uint64, fn func() error) error {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = initialInterval
	// The context wrapper must be outermost for Retry to observe cancellation.
	return backoff.Retry(fn, backoff.WithContext(backoff.WithMaxRetries(b, maxRetries), ctx))
}

// Permanent marks err as not worth retrying so Transient stops immediately.
func Permanent(err error) error {
	return backoff.Permanent(err)
}
