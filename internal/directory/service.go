package directory

import (
	"context"
	"errors"
	"fmt"

	dErrors "recibo/pkg/domain-errors"
	"recibo/pkg/sentinel"
)

// Service validates document numbers at the trust boundary and translates
// store facts into domain errors. Lookup is read-only and freely retryable.
type Service struct {
	store Store
}

func NewService(store Store) (*Service, error) {
	if store == nil {
		return nil, fmt.Errorf("directory store is required")
	}
	return &Service{store: store}, nil
}

// Lookup resolves a document number to a member. A missing member is a normal,
// reportable outcome (CodeNotFound), not a fault.
func (s *Service) Lookup(ctx context.Context, documentNumber string) (*Member, error) {
	if !ValidDocumentNumber(documentNumber) {
		return nil, dErrors.Newf(dErrors.CodeBadRequest, "document number must be exactly 8 digits")
	}

	m, err := s.store.FindByDocument(ctx, documentNumber)
	if errors.Is(err, sentinel.ErrNotFound) {
		return nil, dErrors.Wrap(err, dErrors.CodeNotFound, "member not found")
	}
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeUnavailable, "member directory unavailable")
	}
	return m, nil
}
