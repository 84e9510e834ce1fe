package sequencer

import (
	"fmt"
	"strconv"
	"strings"

	dErrors "recibo/pkg/domain-errors"
)

// Correlative is the canonical string form of a receipt number, e.g. "R-00042".
// Values are allocated strictly once; a correlative handed to the issuance saga
// is spent and never reused even when a later step fails.
type Correlative string

func (c Correlative) String() string { return string(c) }

// Scheme defines how counter values render as correlatives: a stable prefix
// and a fixed minimum digit width. Counters that outgrow the width render with
// their natural number of digits.
type Scheme struct {
	Prefix string
	Width  int
}

// DefaultScheme matches the historical receipt numbering of the organization.
var DefaultScheme = Scheme{Prefix: "R", Width: 5}

// Format renders a counter value as a correlative.
func (s Scheme) Format(seq int64) Correlative {
	return Correlative(fmt.Sprintf("%s-%0*d", s.Prefix, s.Width, seq))
}

// Parse extracts the counter value from a correlative, rejecting values that
// do not belong to this scheme.
func (s Scheme) Parse(c Correlative) (int64, error) {
	rest, ok := strings.CutPrefix(string(c), s.Prefix+"-")
	if !ok {
		return 0, dErrors.Newf(dErrors.CodeBadRequest, "correlative %q does not match prefix %q", c, s.Prefix)
	}
	seq, err := strconv.ParseInt(rest, 10, 64)
	if err != nil || seq <= 0 {
		return 0, dErrors.Newf(dErrors.CodeBadRequest, "correlative %q has no valid sequence number", c)
	}
	return seq, nil
}

// Valid reports whether c parses under this scheme.
func (s Scheme) Valid(c Correlative) bool {
	_, err := s.Parse(c)
	return err == nil
}
