// Package issuance coordinates the receipt issuance saga: member lookup,
// correlative allocation, rendering, artifact storage, and the ledger entry.
package issuance

import (
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"recibo/internal/artifact"
	"recibo/internal/directory"
	"recibo/internal/sequencer"
	dErrors "recibo/pkg/domain-errors"
)

// PaymentMethod is the account a payment was received through.
type PaymentMethod string

const (
	MethodBankAccountA PaymentMethod = "bank_account_a"
	MethodCash         PaymentMethod = "cash"
	MethodBankAccountB PaymentMethod = "bank_account_b"
)

// Valid reports whether m is a known payment method.
func (m PaymentMethod) Valid() bool {
	switch m {
	case MethodBankAccountA, MethodCash, MethodBankAccountB:
		return true
	}
	return false
}

// requiresOperationReference reports whether payments through this method
// must carry a bank operation reference.
func (m PaymentMethod) requiresOperationReference() bool {
	return m == MethodBankAccountA
}

// Request is one receipt submission. It is immutable once handed to the
// service: the saga never mutates it, only reads it.
type Request struct {
	DocumentNumber     string
	IssueDate          time.Time
	Amount             decimal.Decimal
	Concept            string
	PaymentMethod      PaymentMethod
	OperationReference string
}

// Validate checks the request invariants. Validation is purely local: it runs
// before any correlative is allocated, so a failing request consumes nothing.
func (r Request) Validate() error {
	if !directory.ValidDocumentNumber(r.DocumentNumber) {
		return dErrors.New(dErrors.CodeValidation, "document number must be exactly 8 digits")
	}
	if r.IssueDate.IsZero() {
		return dErrors.New(dErrors.CodeValidation, "issue date is required")
	}
	if !r.Amount.IsPositive() {
		return dErrors.New(dErrors.CodeValidation, "amount must be positive")
	}
	if r.Amount.Exponent() < -2 {
		return dErrors.New(dErrors.CodeValidation, "amount must have at most 2 decimal places")
	}
	if strings.TrimSpace(r.Concept) == "" {
		return dErrors.New(dErrors.CodeValidation, "concept must not be empty")
	}
	if !r.PaymentMethod.Valid() {
		return dErrors.Newf(dErrors.CodeValidation, "unknown payment method %q", r.PaymentMethod)
	}

	ref := strings.TrimSpace(r.OperationReference)
	if r.PaymentMethod.requiresOperationReference() {
		if ref == "" {
			return dErrors.Newf(dErrors.CodeValidation, "operation reference is required for %s payments", r.PaymentMethod)
		}
		if _, err := strconv.ParseInt(ref, 10, 64); err != nil {
			return dErrors.New(dErrors.CodeValidation, "operation reference must be numeric")
		}
	} else if ref != "" {
		return dErrors.Newf(dErrors.CodeValidation, "operation reference is only accepted for %s payments", MethodBankAccountA)
	}

	return nil
}

// operationNumber returns the numeric operation reference, or nil when the
// payment method carries none. Call only after Validate.
func (r Request) operationNumber() *int64 {
	ref := strings.TrimSpace(r.OperationReference)
	if ref == "" {
		return nil
	}
	n, err := strconv.ParseInt(ref, 10, 64)
	if err != nil {
		return nil
	}
	return &n
}

// IssuedReceipt is the result of one successful saga run. The correlative,
// the stored artifact, and the ledger entry exist together once this value
// is returned.
type IssuedReceipt struct {
	Correlative    sequencer.Correlative
	Request        Request
	Member         directory.Member
	ArtifactHandle artifact.Handle
	CreatedAt      time.Time
}
