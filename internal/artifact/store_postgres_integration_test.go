//go:build integration

package artifact_test

import (
	"context"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"recibo/internal/artifact"
	"recibo/internal/platform/postgres"
	"recibo/pkg/sentinel"
)

func TestPostgresStore_PutIdempotence(t *testing.T) {
	dsn := os.Getenv("RECIBO_TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("RECIBO_TEST_DATABASE_URL not set")
	}

	ctx := context.Background()
	db, err := postgres.Open(ctx, dsn)
	require.NoError(t, err)
	defer db.Close()

	store := artifact.NewPostgresStore(db)
	require.NoError(t, store.EnsureSchema(ctx))
	_, err = db.ExecContext(ctx, `TRUNCATE artifacts`)
	require.NoError(t, err)

	memberID := uuid.New()
	data := []byte("receipt body")

	first, err := store.Put(ctx, "R-00042", data, memberID)
	require.NoError(t, err)

	second, err := store.Put(ctx, "R-00042", data, memberID)
	require.NoError(t, err)
	require.Equal(t, first, second)

	var count int
	require.NoError(t, db.QueryRowContext(ctx,
		`SELECT count(*) FROM artifacts WHERE receipt_number = $1`, "R-00042").Scan(&count))
	require.Equal(t, 1, count, "retrying the put creates no second artifact")

	_, err = store.Put(ctx, "R-00042", []byte("tampered"), memberID)
	require.ErrorIs(t, err, sentinel.ErrConflict)

	got, err := store.Get(ctx, "R-00042")
	require.NoError(t, err)
	require.Equal(t, data, got.Data)
	require.Equal(t, first, got.Handle)
}
