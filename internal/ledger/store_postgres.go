package ledger

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"recibo/pkg/sentinel"
)

// PostgresRecorder persists ledger entries in PostgreSQL. The unique key on
// receipt_number plus ON CONFLICT DO NOTHING makes Append idempotent on retry.
type PostgresRecorder struct {
	db *sql.DB
}

func NewPostgresRecorder(db *sql.DB) *PostgresRecorder {
	return &PostgresRecorder{db: db}
}

// EnsureSchema creates the ledger_entries table if it does not exist yet.
func (s *PostgresRecorder) EnsureSchema(ctx context.Context) error {
	const ddl = `
CREATE TABLE IF NOT EXISTS ledger_entries (
	receipt_number   text PRIMARY KEY,
	member_document  char(8) NOT NULL,
	member_name      text NOT NULL,
	amount           numeric(12,2) NOT NULL CHECK (amount > 0),
	account          text NOT NULL,
	entry_date       date NOT NULL,
	entry_type       text NOT NULL,
	operation_number bigint,
	created_at       timestamptz NOT NULL DEFAULT now()
)`
	if _, err := s.db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("create ledger_entries: %w", err)
	}
	return nil
}

func (s *PostgresRecorder) Append(ctx context.Context, entry Entry) error {
	const insert = `
INSERT INTO ledger_entries
	(receipt_number, member_document, member_name, amount, account, entry_date, entry_type, operation_number)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
ON CONFLICT (receipt_number) DO NOTHING`

	res, err := s.db.ExecContext(ctx, insert,
		entry.ReceiptNumber,
		entry.MemberDocument,
		entry.MemberName,
		entry.Amount,
		entry.Account,
		entry.Date,
		entry.Type,
		entry.OperationNumber,
	)
	if err != nil {
		return fmt.Errorf("append ledger entry %s: %w", entry.ReceiptNumber, err)
	}

	inserted, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("append ledger entry %s: %w", entry.ReceiptNumber, err)
	}
	if inserted == 0 {
		return fmt.Errorf("ledger entry %s: %w", entry.ReceiptNumber, sentinel.ErrAlreadyExists)
	}
	return nil
}

func (s *PostgresRecorder) FindByReceipt(ctx context.Context, receiptNumber string) (*Entry, error) {
	const query = `
SELECT receipt_number, member_document, member_name, amount, account, entry_date, entry_type, operation_number, created_at
FROM ledger_entries WHERE receipt_number = $1`

	var e Entry
	err := s.db.QueryRowContext(ctx, query, receiptNumber).Scan(
		&e.ReceiptNumber,
		&e.MemberDocument,
		&e.MemberName,
		&e.Amount,
		&e.Account,
		&e.Date,
		&e.Type,
		&e.OperationNumber,
		&e.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("ledger entry %s: %w", receiptNumber, sentinel.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("read ledger entry %s: %w", receiptNumber, err)
	}
	return &e, nil
}

var _ Recorder = (*PostgresRecorder)(nil)
