package sequencer

import (
	"context"
	"database/sql"
	"fmt"
)

// PostgresCounterStore persists the counter as a single-row table. The
// increment runs as one UPDATE ... RETURNING statement, so PostgreSQL's row
// lock serializes concurrent allocators.
type PostgresCounterStore struct {
	db *sql.DB
}

func NewPostgresCounterStore(db *sql.DB) *PostgresCounterStore {
	return &PostgresCounterStore{db: db}
}

// EnsureSchema creates the counter table and seeds the single row at zero if
// it does not exist yet.
func (s *PostgresCounterStore) EnsureSchema(ctx context.Context) error {
	const ddl = `
CREATE TABLE IF NOT EXISTS receipt_counter (
	id    smallint PRIMARY KEY DEFAULT 1 CHECK (id = 1),
	value bigint   NOT NULL
)`
	if _, err := s.db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("create receipt_counter: %w", err)
	}
	const seed = `INSERT INTO receipt_counter (id, value) VALUES (1, 0) ON CONFLICT (id) DO NOTHING`
	if _, err := s.db.ExecContext(ctx, seed); err != nil {
		return fmt.Errorf("seed receipt_counter: %w", err)
	}
	return nil
}

func (s *PostgresCounterStore) Current(ctx context.Context) (int64, error) {
	const query = `SELECT value FROM receipt_counter WHERE id = 1`

	var value int64
	if err := s.db.QueryRowContext(ctx, query).Scan(&value); err != nil {
		return 0, fmt.Errorf("read receipt counter: %w", err)
	}
	return value, nil
}

func (s *PostgresCounterStore) Next(ctx context.Context) (int64, error) {
	const query = `UPDATE receipt_counter SET value = value + 1 WHERE id = 1 RETURNING value`

	var value int64
	if err := s.db.QueryRowContext(ctx, query).Scan(&value); err != nil {
		return 0, fmt.Errorf("increment receipt counter: %w", err)
	}
	return value, nil
}

var _ CounterStore = (*PostgresCounterStore)(nil)
