package artifact

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"recibo/pkg/sentinel"
)

// PostgresStore persists artifacts in PostgreSQL. Idempotence comes from the
// primary key on receipt_number plus ON CONFLICT DO NOTHING: a retry after a
// transient failure re-runs the insert without creating a second row.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// EnsureSchema creates the artifacts table if it does not exist yet.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	const ddl = `
CREATE TABLE IF NOT EXISTS artifacts (
	receipt_number text PRIMARY KEY,
	member_id      uuid NOT NULL,
	data           bytea NOT NULL,
	digest         char(64) NOT NULL,
	handle         text NOT NULL,
	stored_at      timestamptz NOT NULL DEFAULT now()
)`
	if _, err := s.db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("create artifacts: %w", err)
	}
	return nil
}

func (s *PostgresStore) Put(ctx context.Context, receiptNumber string, data []byte, memberID uuid.UUID) (Handle, error) {
	const insert = `
INSERT INTO artifacts (receipt_number, member_id, data, digest, handle)
VALUES ($1, $2, $3, $4, $5)
ON CONFLICT (receipt_number) DO NOTHING`

	d := digest(data)
	handle := HandleFor(receiptNumber)

	res, err := s.db.ExecContext(ctx, insert, receiptNumber, memberID, data, d, string(handle))
	if err != nil {
		return "", fmt.Errorf("store artifact %s: %w", receiptNumber, err)
	}

	inserted, err := res.RowsAffected()
	if err != nil {
		return "", fmt.Errorf("store artifact %s: %w", receiptNumber, err)
	}
	if inserted > 0 {
		return handle, nil
	}

	// The key already exists; this is a retry only if the content matches.
	const query = `SELECT digest, handle FROM artifacts WHERE receipt_number = $1`
	var existingDigest, existingHandle string
	if err := s.db.QueryRowContext(ctx, query, receiptNumber).Scan(&existingDigest, &existingHandle); err != nil {
		return "", fmt.Errorf("read artifact %s after conflict: %w", receiptNumber, err)
	}
	if existingDigest != d {
		return "", fmt.Errorf("artifact %s holds different content: %w", receiptNumber, sentinel.ErrConflict)
	}
	return Handle(existingHandle), nil
}

func (s *PostgresStore) Get(ctx context.Context, receiptNumber string) (*Artifact, error) {
	const query = `
SELECT receipt_number, member_id, data, digest, handle, stored_at
FROM artifacts WHERE receipt_number = $1`

	var a Artifact
	var handle string
	err := s.db.QueryRowContext(ctx, query, receiptNumber).
		Scan(&a.ReceiptNumber, &a.MemberID, &a.Data, &a.Digest, &handle, &a.StoredAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("artifact %s: %w", receiptNumber, sentinel.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("read artifact %s: %w", receiptNumber, err)
	}
	a.Handle = Handle(handle)
	return &a, nil
}

var _ Store = (*PostgresStore)(nil)
