package handler

import (
	"net/http"

	"recibo/internal/issuance"
	"recibo/pkg/httputil"
)

type receiptResponse struct {
	ReceiptNumber  string `json:"receipt_number"`
	MemberName     string `json:"member_name"`
	MemberDocument string `json:"member_document"`
	Amount         string `json:"amount"`
	Concept        string `json:"concept"`
	PaymentMethod  string `json:"payment_method"`
	ArtifactURL    string `json:"artifact_url"`
	CreatedAt      string `json:"created_at"`
}

type failureResponse struct {
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description,omitempty"`

	// SpentCorrelative is disclosed on any failure after allocation so the
	// operator can account for the gap or resume the ledger step.
	SpentCorrelative string `json:"spent_correlative,omitempty"`
	ArtifactHandle   string `json:"artifact_handle,omitempty"`
	LedgerRetryPath  string `json:"ledger_retry_path,omitempty"`
}

func receiptFrom(r *issuance.IssuedReceipt) receiptResponse {
	return receiptResponse{
		ReceiptNumber:  r.Correlative.String(),
		MemberName:     r.Member.LegalName,
		MemberDocument: r.Member.DocumentNumber,
		Amount:         r.Request.Amount.StringFixed(2),
		Concept:        r.Request.Concept,
		PaymentMethod:  string(r.Request.PaymentMethod),
		ArtifactURL:    string(r.ArtifactHandle),
		CreatedAt:      r.CreatedAt.UTC().Format(http.TimeFormat),
	}
}

// writeOutcome maps a saga outcome onto the HTTP surface. Every failure kind
// keeps its identity so callers can decide between retrying the whole saga,
// retrying one step, or escalating.
func writeOutcome(w http.ResponseWriter, outcome issuance.Outcome) {
	switch outcome.Kind {
	case issuance.OutcomeSuccess:
		httputil.WriteJSON(w, http.StatusCreated, receiptFrom(outcome.Receipt))

	case issuance.OutcomeValidationFailed:
		httputil.WriteJSON(w, http.StatusBadRequest, failureResponse{
			Error:            string(outcome.Kind),
			ErrorDescription: outcome.Reason,
		})

	case issuance.OutcomeLookupNotFound:
		httputil.WriteJSON(w, http.StatusNotFound, failureResponse{
			Error:            string(outcome.Kind),
			ErrorDescription: "no member holds this document number",
		})

	case issuance.OutcomeDirectoryUnavailable, issuance.OutcomeSequencerUnavailable:
		httputil.WriteJSON(w, http.StatusServiceUnavailable, failureResponse{
			Error:            string(outcome.Kind),
			ErrorDescription: "no receipt number was consumed; the request may be retried",
		})

	case issuance.OutcomeRenderFailed, issuance.OutcomeArtifactStoreFailed:
		httputil.WriteJSON(w, http.StatusInternalServerError, failureResponse{
			Error:            string(outcome.Kind),
			SpentCorrelative: outcome.SpentCorrelative.String(),
		})

	case issuance.OutcomeLedgerWriteFailed:
		httputil.WriteJSON(w, http.StatusInternalServerError, failureResponse{
			Error:            string(outcome.Kind),
			SpentCorrelative: outcome.SpentCorrelative.String(),
			ArtifactHandle:   string(outcome.ArtifactHandle),
			LedgerRetryPath:  "/receipts/" + outcome.SpentCorrelative.String() + "/ledger-retry",
		})

	default:
		httputil.WriteJSON(w, http.StatusInternalServerError, failureResponse{
			Error: "internal_error",
		})
	}
}
