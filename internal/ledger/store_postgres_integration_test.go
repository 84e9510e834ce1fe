//go:build integration

package ledger_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"recibo/internal/ledger"
	"recibo/internal/platform/postgres"
	"recibo/pkg/sentinel"
)

func TestPostgresRecorder_AppendIdempotence(t *testing.T) {
	dsn := os.Getenv("RECIBO_TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("RECIBO_TEST_DATABASE_URL not set")
	}

	ctx := context.Background()
	db, err := postgres.Open(ctx, dsn)
	require.NoError(t, err)
	defer db.Close()

	rec := ledger.NewPostgresRecorder(db)
	require.NoError(t, rec.EnsureSchema(ctx))
	_, err = db.ExecContext(ctx, `TRUNCATE ledger_entries`)
	require.NoError(t, err)

	entry := ledger.Entry{
		ReceiptNumber:  "R-00050",
		MemberDocument: "12345678",
		MemberName:     "Maria Quispe",
		Amount:         decimal.RequireFromString("150.50"),
		Account:        "cash",
		Date:           time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC),
		Type:           ledger.EntryTypeReceiptOfPayment,
	}

	require.NoError(t, rec.Append(ctx, entry))

	err = rec.Append(ctx, entry)
	require.ErrorIs(t, err, sentinel.ErrAlreadyExists)

	var count int
	require.NoError(t, db.QueryRowContext(ctx,
		`SELECT count(*) FROM ledger_entries WHERE receipt_number = $1`, "R-00050").Scan(&count))
	require.Equal(t, 1, count, "second append with the same key leaves exactly one row")

	got, err := rec.FindByReceipt(ctx, "R-00050")
	require.NoError(t, err)
	require.True(t, got.Amount.Equal(entry.Amount))
	require.Nil(t, got.OperationNumber)
}
