package handler

import (
	"context"
	"log/slog"
	"net/http"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"recibo/internal/artifact"
	"recibo/internal/directory"
	"recibo/internal/issuance"
	"recibo/internal/sequencer"
	dErrors "recibo/pkg/domain-errors"
	"recibo/pkg/testutil"
)

// fakeService returns canned results so handler tests exercise only the
// transport mapping.
type fakeService struct {
	issueOutcome issuance.Outcome
	retryOutcome issuance.Outcome
	peek         sequencer.Correlative
	peekErr      error
	artifact     *artifact.Artifact
	artifactErr  error

	gotRequest     *issuance.Request
	gotCorrelative sequencer.Correlative
}

func (f *fakeService) Issue(_ context.Context, req issuance.Request) issuance.Outcome {
	f.gotRequest = &req
	return f.issueOutcome
}

func (f *fakeService) RetryLedger(_ context.Context, c sequencer.Correlative, req issuance.Request) issuance.Outcome {
	f.gotCorrelative = c
	f.gotRequest = &req
	return f.retryOutcome
}

func (f *fakeService) PeekNextCorrelative(context.Context) (sequencer.Correlative, error) {
	return f.peek, f.peekErr
}

func (f *fakeService) GetArtifact(context.Context, string) (*artifact.Artifact, error) {
	return f.artifact, f.artifactErr
}

func newRouter(svc Service) http.Handler {
	r := chi.NewRouter()
	New(svc, slog.Default()).Register(r)
	return r
}

func sampleReceipt() *issuance.IssuedReceipt {
	return &issuance.IssuedReceipt{
		Correlative: "R-00042",
		Request: issuance.Request{
			DocumentNumber: "12345678",
			IssueDate:      time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC),
			Amount:         decimal.RequireFromString("150.50"),
			Concept:        "Monthly membership fee",
			PaymentMethod:  issuance.MethodCash,
		},
		Member:         directory.Member{DocumentNumber: "12345678", LegalName: "Maria Quispe"},
		ArtifactHandle: "/receipts/R-00042/artifact",
		CreatedAt:      time.Date(2026, 3, 15, 10, 0, 0, 0, time.UTC),
	}
}

func issueBody() map[string]any {
	return map[string]any{
		"document_number": "12345678",
		"issue_date":      "2026-03-15",
		"amount":          "150.50",
		"concept":         "Monthly membership fee",
		"payment_method":  "cash",
	}
}

func TestHandleIssue(t *testing.T) {
	t.Run("success returns 201 with the receipt", func(t *testing.T) {
		svc := &fakeService{issueOutcome: issuance.Outcome{Kind: issuance.OutcomeSuccess, Receipt: sampleReceipt()}}
		rr := testutil.DoRequest(newRouter(svc), testutil.NewJSONRequest(t, http.MethodPost, "/receipts", issueBody()))

		testutil.AssertStatus(t, rr, http.StatusCreated)
		resp := testutil.UnmarshalResponse[map[string]any](t, rr)
		assert.Equal(t, "R-00042", (*resp)["receipt_number"])
		assert.Equal(t, "/receipts/R-00042/artifact", (*resp)["artifact_url"])

		require.NotNil(t, svc.gotRequest)
		assert.Equal(t, "12345678", svc.gotRequest.DocumentNumber)
		assert.True(t, svc.gotRequest.Amount.Equal(decimal.RequireFromString("150.50")))
	})

	t.Run("validation failure returns 400 with the reason", func(t *testing.T) {
		svc := &fakeService{issueOutcome: issuance.Outcome{
			Kind:   issuance.OutcomeValidationFailed,
			Reason: "amount must be positive",
		}}
		rr := testutil.DoRequest(newRouter(svc), testutil.NewJSONRequest(t, http.MethodPost, "/receipts", issueBody()))

		testutil.AssertStatus(t, rr, http.StatusBadRequest)
		testutil.AssertErrorCode(t, rr, "validation_failed")
	})

	t.Run("unknown member returns 404", func(t *testing.T) {
		svc := &fakeService{issueOutcome: issuance.Outcome{Kind: issuance.OutcomeLookupNotFound}}
		rr := testutil.DoRequest(newRouter(svc), testutil.NewJSONRequest(t, http.MethodPost, "/receipts", issueBody()))

		testutil.AssertStatus(t, rr, http.StatusNotFound)
		testutil.AssertErrorCode(t, rr, "lookup_not_found")
	})

	t.Run("sequencer outage returns 503 and marks the saga retryable", func(t *testing.T) {
		svc := &fakeService{issueOutcome: issuance.Outcome{Kind: issuance.OutcomeSequencerUnavailable}}
		rr := testutil.DoRequest(newRouter(svc), testutil.NewJSONRequest(t, http.MethodPost, "/receipts", issueBody()))

		testutil.AssertStatus(t, rr, http.StatusServiceUnavailable)
		testutil.AssertErrorCode(t, rr, "sequencer_unavailable")
	})

	t.Run("render failure discloses the spent correlative", func(t *testing.T) {
		svc := &fakeService{issueOutcome: issuance.Outcome{
			Kind:             issuance.OutcomeRenderFailed,
			SpentCorrelative: "R-00042",
		}}
		rr := testutil.DoRequest(newRouter(svc), testutil.NewJSONRequest(t, http.MethodPost, "/receipts", issueBody()))

		testutil.AssertStatus(t, rr, http.StatusInternalServerError)
		resp := testutil.UnmarshalErrorResponse(t, rr)
		assert.Equal(t, "render_failed", resp["error"])
		assert.Equal(t, "R-00042", resp["spent_correlative"])
	})

	t.Run("ledger failure points at the scoped retry", func(t *testing.T) {
		svc := &fakeService{issueOutcome: issuance.Outcome{
			Kind:             issuance.OutcomeLedgerWriteFailed,
			SpentCorrelative: "R-00050",
			ArtifactHandle:   "/receipts/R-00050/artifact",
		}}
		rr := testutil.DoRequest(newRouter(svc), testutil.NewJSONRequest(t, http.MethodPost, "/receipts", issueBody()))

		testutil.AssertStatus(t, rr, http.StatusInternalServerError)
		resp := testutil.UnmarshalErrorResponse(t, rr)
		assert.Equal(t, "ledger_write_failed", resp["error"])
		assert.Equal(t, "R-00050", resp["spent_correlative"])
		assert.Equal(t, "/receipts/R-00050/artifact", resp["artifact_handle"])
		assert.Equal(t, "/receipts/R-00050/ledger-retry", resp["ledger_retry_path"])
	})

	t.Run("malformed body returns 400", func(t *testing.T) {
		svc := &fakeService{}
		req := testutil.NewRequest(t, http.MethodPost, "/receipts")
		rr := testutil.DoRequest(newRouter(svc), req)

		testutil.AssertStatus(t, rr, http.StatusBadRequest)
	})

	t.Run("unparseable date returns 400", func(t *testing.T) {
		svc := &fakeService{}
		body := issueBody()
		body["issue_date"] = "15/03/2026"
		rr := testutil.DoRequest(newRouter(svc), testutil.NewJSONRequest(t, http.MethodPost, "/receipts", body))

		testutil.AssertStatus(t, rr, http.StatusBadRequest)
		assert.Nil(t, svc.gotRequest, "the service is never reached")
	})
}

func TestHandlePeekNextNumber(t *testing.T) {
	t.Run("reports the next number as non-binding", func(t *testing.T) {
		svc := &fakeService{peek: "R-00043"}
		rr := testutil.DoRequest(newRouter(svc), testutil.NewRequest(t, http.MethodGet, "/receipts/next-number"))

		testutil.AssertStatus(t, rr, http.StatusOK)
		resp := testutil.UnmarshalResponse[map[string]any](t, rr)
		assert.Equal(t, "R-00043", (*resp)["next_receipt_number"])
		assert.Equal(t, false, (*resp)["binding"])
	})

	t.Run("sequencer outage maps to 503", func(t *testing.T) {
		svc := &fakeService{peekErr: dErrors.New(dErrors.CodeUnavailable, "sequencer unavailable")}
		rr := testutil.DoRequest(newRouter(svc), testutil.NewRequest(t, http.MethodGet, "/receipts/next-number"))

		testutil.AssertStatus(t, rr, http.StatusServiceUnavailable)
	})
}

func TestHandleGetArtifact(t *testing.T) {
	t.Run("serves the stored document", func(t *testing.T) {
		svc := &fakeService{artifact: &artifact.Artifact{
			ReceiptNumber: "R-00042",
			Data:          []byte("PAYMENT RECEIPT R-00042"),
			Handle:        "/receipts/R-00042/artifact",
		}}
		rr := testutil.DoRequest(newRouter(svc), testutil.NewRequest(t, http.MethodGet, "/receipts/R-00042/artifact"))

		testutil.AssertStatus(t, rr, http.StatusOK)
		assert.Equal(t, "PAYMENT RECEIPT R-00042", string(testutil.ReadBody(t, rr)))
		assert.Contains(t, rr.Header().Get("Content-Disposition"), "R-00042")
	})

	t.Run("missing artifact returns 404", func(t *testing.T) {
		svc := &fakeService{artifactErr: dErrors.New(dErrors.CodeNotFound, "artifact not found")}
		rr := testutil.DoRequest(newRouter(svc), testutil.NewRequest(t, http.MethodGet, "/receipts/R-99999/artifact"))

		testutil.AssertStatus(t, rr, http.StatusNotFound)
	})
}

func TestHandleLedgerRetry(t *testing.T) {
	svc := &fakeService{retryOutcome: issuance.Outcome{Kind: issuance.OutcomeSuccess, Receipt: sampleReceipt()}}
	rr := testutil.DoRequest(newRouter(svc),
		testutil.NewJSONRequest(t, http.MethodPost, "/receipts/R-00050/ledger-retry", issueBody()))

	testutil.AssertStatus(t, rr, http.StatusCreated)
	assert.Equal(t, sequencer.Correlative("R-00050"), svc.gotCorrelative)
}
