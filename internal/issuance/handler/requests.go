package handler

import (
	"time"

	"github.com/shopspring/decimal"

	"recibo/internal/issuance"
	dErrors "recibo/pkg/domain-errors"
)

// issueRequest is the wire form of a receipt submission.
type issueRequest struct {
	DocumentNumber     string          `json:"document_number"`
	IssueDate          string          `json:"issue_date"`
	Amount             decimal.Decimal `json:"amount"`
	Concept            string          `json:"concept"`
	PaymentMethod      string          `json:"payment_method"`
	OperationReference string          `json:"operation_reference,omitempty"`
}

const issueDateLayout = "2006-01-02"

// toRequest converts the wire form to the domain request. Only the date needs
// parsing here; the domain request validates everything else itself.
func (r issueRequest) toRequest() (issuance.Request, error) {
	issueDate, err := time.Parse(issueDateLayout, r.IssueDate)
	if err != nil {
		return issuance.Request{}, dErrors.Newf(dErrors.CodeBadRequest, "issue_date must be a %s date", issueDateLayout)
	}

	return issuance.Request{
		DocumentNumber:     r.DocumentNumber,
		IssueDate:          issueDate,
		Amount:             r.Amount,
		Concept:            r.Concept,
		PaymentMethod:      issuance.PaymentMethod(r.PaymentMethod),
		OperationReference: r.OperationReference,
	}, nil
}
