// Package artifact durably stores rendered receipt documents keyed by their
// receipt number.
package artifact

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Handle is an opaque retrievable reference to a stored artifact. The current
// implementations use the artifact's download path.
type Handle string

// Artifact is a stored receipt document linked to the member it was issued to.
type Artifact struct {
	ReceiptNumber string
	MemberID      uuid.UUID
	Data          []byte
	Digest        string
	Handle        Handle
	StoredAt      time.Time
}

// Store is the durable content store for rendered receipts.
//
// Error Contract:
// - Put is idempotent per key: retrying with the same key and bytes returns
//   the handle of the already-stored artifact and creates nothing. A put with
//   the same key but different bytes returns sentinel.ErrConflict, since two
//   receipts must never share a number.
// - Get returns sentinel.ErrNotFound when no artifact exists for the key.
type Store interface {
	Put(ctx context.Context, receiptNumber string, data []byte, memberID uuid.UUID) (Handle, error)
	Get(ctx context.Context, receiptNumber string) (*Artifact, error)
}

// HandleFor derives the canonical download path for a receipt number.
func HandleFor(receiptNumber string) Handle {
	return Handle(fmt.Sprintf("/receipts/%s/artifact", receiptNumber))
}

func digest(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
