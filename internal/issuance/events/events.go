// Package events publishes issued-receipt notifications for downstream
// consumers (accounting exports, member notifications).
package events

import (
	"time"

	"github.com/shopspring/decimal"
)

// ReceiptIssued is emitted once per successful issuance saga.
type ReceiptIssued struct {
	ReceiptNumber  string          `json:"receipt_number"`
	MemberDocument string          `json:"member_document"`
	MemberName     string          `json:"member_name"`
	Amount         decimal.Decimal `json:"amount"`
	PaymentMethod  string          `json:"payment_method"`
	Concept        string          `json:"concept"`
	ArtifactHandle string          `json:"artifact_handle"`
	IssuedAt       time.Time       `json:"issued_at"`
}
