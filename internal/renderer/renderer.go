// Package renderer turns structured receipt data into a byte artifact. The
// renderer is a pure function of its input: identical documents render to
// identical bytes, with no side effects.
package renderer

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// Document is the structured input a receipt is rendered from. All fields are
// plain values so rendering stays deterministic.
type Document struct {
	Correlative        string
	MemberName         string
	MemberDocument     string
	IssueDate          time.Time
	Amount             decimal.Decimal
	Concept            string
	PaymentMethod      string
	OperationReference string
}

// Renderer is the rendering capability injected into the issuance
// orchestrator at construction time.
type Renderer interface {
	Render(ctx context.Context, doc Document) ([]byte, error)
}
