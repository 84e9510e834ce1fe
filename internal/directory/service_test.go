package directory

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "recibo/pkg/domain-errors"
)

func TestValidDocumentNumber(t *testing.T) {
	assert.True(t, ValidDocumentNumber("12345678"))
	assert.False(t, ValidDocumentNumber("1234567"))
	assert.False(t, ValidDocumentNumber("123456789"))
	assert.False(t, ValidDocumentNumber("1234567a"))
	assert.False(t, ValidDocumentNumber(""))
}

func TestService_Lookup(t *testing.T) {
	ctx := context.Background()
	store := NewInMemoryStore()
	store.Seed(Member{ID: uuid.New(), DocumentNumber: "12345678", LegalName: "Maria Quispe"})

	svc, err := NewService(store)
	require.NoError(t, err)

	t.Run("resolves a known document", func(t *testing.T) {
		m, err := svc.Lookup(ctx, "12345678")
		require.NoError(t, err)
		assert.Equal(t, "Maria Quispe", m.LegalName)
	})

	t.Run("unknown document reports not found", func(t *testing.T) {
		_, err := svc.Lookup(ctx, "87654321")
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeNotFound))
	})

	t.Run("malformed document rejected before the store", func(t *testing.T) {
		_, err := svc.Lookup(ctx, "not-a-dni")
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeBadRequest))
	})

	t.Run("store failure maps to unavailable", func(t *testing.T) {
		svc, err := NewService(failingStore{})
		require.NoError(t, err)
		_, err = svc.Lookup(ctx, "12345678")
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeUnavailable))
	})
}

type failingStore struct{}

func (failingStore) FindByDocument(context.Context, string) (*Member, error) {
	return nil, errors.New("directory unreachable")
}
