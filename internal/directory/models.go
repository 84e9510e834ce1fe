// Package directory resolves national identity documents to member records.
// It is a pure query surface: the issuance flow looks members up and never
// creates or mutates them.
package directory

import "github.com/google/uuid"

// Member is an organization member as known to the client directory.
type Member struct {
	ID             uuid.UUID
	DocumentNumber string
	LegalName      string
}

const documentNumberLength = 8

// ValidDocumentNumber reports whether s is a well-formed national identity
// number: exactly eight decimal digits.
func ValidDocumentNumber(s string) bool {
	if len(s) != documentNumberLength {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
