package ledger

import "context"

// Recorder appends income entries keyed by receipt number.
//
// Error Contract:
// - Append returns sentinel.ErrAlreadyExists (possibly wrapped) when an entry
//   for the receipt number is already recorded; the existing row is untouched.
//   Callers retrying a failed saga step treat that as success.
// - FindByReceipt returns sentinel.ErrNotFound when no entry exists.
// - Infrastructure failures are returned wrapped with context.
type Recorder interface {
	Append(ctx context.Context, entry Entry) error
	FindByReceipt(ctx context.Context, receiptNumber string) (*Entry, error)
}
