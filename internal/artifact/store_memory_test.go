package artifact

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"recibo/pkg/sentinel"
)

func TestInMemoryStore_PutIsIdempotentPerKey(t *testing.T) {
	ctx := context.Background()
	store := NewInMemoryStore()
	memberID := uuid.New()
	data := []byte("receipt body")

	first, err := store.Put(ctx, "R-00042", data, memberID)
	require.NoError(t, err)

	second, err := store.Put(ctx, "R-00042", data, memberID)
	require.NoError(t, err)

	assert.Equal(t, first, second, "retry with same key and bytes returns the same handle")
	assert.Equal(t, 1, store.Len(), "exactly one artifact stored")
}

func TestInMemoryStore_PutRejectsDifferentContentForSameKey(t *testing.T) {
	ctx := context.Background()
	store := NewInMemoryStore()
	memberID := uuid.New()

	_, err := store.Put(ctx, "R-00042", []byte("original"), memberID)
	require.NoError(t, err)

	_, err = store.Put(ctx, "R-00042", []byte("tampered"), memberID)
	require.Error(t, err)
	assert.ErrorIs(t, err, sentinel.ErrConflict)
	assert.Equal(t, 1, store.Len())
}

func TestInMemoryStore_Get(t *testing.T) {
	ctx := context.Background()
	store := NewInMemoryStore()
	memberID := uuid.New()
	data := []byte("receipt body")

	handle, err := store.Put(ctx, "R-00042", data, memberID)
	require.NoError(t, err)

	t.Run("returns the stored artifact", func(t *testing.T) {
		a, err := store.Get(ctx, "R-00042")
		require.NoError(t, err)
		assert.Equal(t, data, a.Data)
		assert.Equal(t, handle, a.Handle)
		assert.Equal(t, memberID, a.MemberID)
	})

	t.Run("missing key reports not found", func(t *testing.T) {
		_, err := store.Get(ctx, "R-99999")
		require.Error(t, err)
		assert.ErrorIs(t, err, sentinel.ErrNotFound)
	})
}
