package directory

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"recibo/pkg/sentinel"
)

// PostgresStore reads members from the organization's member table.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// EnsureSchema creates the members table if it does not exist yet.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	const ddl = `
CREATE TABLE IF NOT EXISTS members (
	id              uuid PRIMARY KEY,
	document_number char(8) NOT NULL UNIQUE,
	legal_name      text NOT NULL
)`
	if _, err := s.db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("create members: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindByDocument(ctx context.Context, documentNumber string) (*Member, error) {
	const query = `SELECT id, document_number, legal_name FROM members WHERE document_number = $1`

	var m Member
	err := s.db.QueryRowContext(ctx, query, documentNumber).
		Scan(&m.ID, &m.DocumentNumber, &m.LegalName)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("member with document %s: %w", documentNumber, sentinel.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("find member by document: %w", err)
	}
	return &m, nil
}

var _ Store = (*PostgresStore)(nil)
