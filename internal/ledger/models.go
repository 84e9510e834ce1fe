// Package ledger records income entries, one per issued receipt.
package ledger

import (
	"time"

	"github.com/shopspring/decimal"
)

// EntryTypeReceiptOfPayment is the only entry type this service appends.
const EntryTypeReceiptOfPayment = "ReceiptOfPayment"

// Entry is one income record. ReceiptNumber is the idempotency key: appending
// the same receipt twice leaves exactly one row.
type Entry struct {
	ReceiptNumber   string
	MemberDocument  string
	MemberName      string
	Amount          decimal.Decimal
	Account         string
	Date            time.Time
	Type            string
	OperationNumber *int64
	CreatedAt       time.Time
}
