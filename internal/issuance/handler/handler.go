// Package handler exposes the issuance saga over HTTP.
package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"recibo/internal/artifact"
	"recibo/internal/issuance"
	"recibo/internal/sequencer"
	dErrors "recibo/pkg/domain-errors"
	"recibo/pkg/httputil"
)

// Service defines the issuance operations the handler delegates to.
type Service interface {
	Issue(ctx context.Context, req issuance.Request) issuance.Outcome
	RetryLedger(ctx context.Context, correlative sequencer.Correlative, req issuance.Request) issuance.Outcome
	PeekNextCorrelative(ctx context.Context) (sequencer.Correlative, error)
	GetArtifact(ctx context.Context, receiptNumber string) (*artifact.Artifact, error)
}

// Handler handles receipt issuance endpoints.
type Handler struct {
	service Service
	logger  *slog.Logger
}

// New creates a new issuance Handler.
func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register registers the receipt routes with the chi router.
func (h *Handler) Register(r chi.Router) {
	r.Route("/receipts", func(r chi.Router) {
		r.Post("/", h.handleIssue)
		r.Get("/next-number", h.handlePeekNextNumber)
		r.Get("/{receiptNumber}/artifact", h.handleGetArtifact)
		r.Post("/{receiptNumber}/ledger-retry", h.handleLedgerRetry)
	})
}

// handleIssue runs the issuance saga for one submission.
func (h *Handler) handleIssue(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var wireReq issueRequest
	if err := json.NewDecoder(r.Body).Decode(&wireReq); err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	req, err := wireReq.toRequest()
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	writeOutcome(w, h.service.Issue(ctx, req))
}

// handlePeekNextNumber reports the next receipt number for display. The value
// is non-binding: it reserves nothing and may be consumed by a concurrent
// submission before this caller commits.
func (h *Handler) handlePeekNextNumber(w http.ResponseWriter, r *http.Request) {
	next, err := h.service.PeekNextCorrelative(r.Context())
	if err != nil {
		h.logger.ErrorContext(r.Context(), "failed to peek next correlative", "error", err.Error())
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, map[string]any{
		"next_receipt_number": next.String(),
		"binding":             false,
	})
}

// handleGetArtifact serves a stored receipt document for download.
func (h *Handler) handleGetArtifact(w http.ResponseWriter, r *http.Request) {
	receiptNumber := chi.URLParam(r, "receiptNumber")

	a, err := h.service.GetArtifact(r.Context(), receiptNumber)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+a.ReceiptNumber+`.txt"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(a.Data)
}

// handleLedgerRetry re-runs only the ledger step of a saga that failed with
// ledger_write_failed, reusing the already-spent correlative and the stored
// artifact instead of minting a new number.
func (h *Handler) handleLedgerRetry(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	correlative := sequencer.Correlative(chi.URLParam(r, "receiptNumber"))

	var wireReq issueRequest
	if err := json.NewDecoder(r.Body).Decode(&wireReq); err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	req, err := wireReq.toRequest()
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	writeOutcome(w, h.service.RetryLedger(ctx, correlative, req))
}
