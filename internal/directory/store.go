package directory

import "context"

// Store is the read surface over the member directory.
//
// Error Contract:
// - FindByDocument returns sentinel.ErrNotFound (possibly wrapped) when no
//   member holds the document number.
// - Infrastructure failures are returned wrapped with context.
type Store interface {
	FindByDocument(ctx context.Context, documentNumber string) (*Member, error)
}
