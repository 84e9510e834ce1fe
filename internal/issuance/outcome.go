package issuance

import (
	"recibo/internal/artifact"
	"recibo/internal/sequencer"
)

// OutcomeKind tags the state a saga run finished in. The saga offers no
// cross-system transaction; instead every partial state is named, carries the
// context needed to recover, and is never silently swallowed.
type OutcomeKind string

const (
	OutcomeSuccess              OutcomeKind = "success"
	OutcomeValidationFailed     OutcomeKind = "validation_failed"
	OutcomeLookupNotFound       OutcomeKind = "lookup_not_found"
	OutcomeDirectoryUnavailable OutcomeKind = "directory_unavailable"
	OutcomeSequencerUnavailable OutcomeKind = "sequencer_unavailable"
	OutcomeRenderFailed         OutcomeKind = "render_failed"
	OutcomeArtifactStoreFailed  OutcomeKind = "artifact_store_failed"
	OutcomeLedgerWriteFailed    OutcomeKind = "ledger_write_failed"
)

// Outcome is the state-tagged result of one saga run.
//
// The recovery contract per kind:
//   - ValidationFailed, LookupNotFound, DirectoryUnavailable,
//     SequencerUnavailable: nothing was spent; the whole saga may be retried.
//   - RenderFailed, ArtifactStoreFailed: SpentCorrelative is permanently
//     consumed; reissue runs under a new number and the gap is accounted for
//     manually.
//   - LedgerWriteFailed: the artifact at ArtifactHandle is already durable;
//     retry only the ledger step with the same correlative instead of
//     re-running the saga and minting a second number.
type Outcome struct {
	Kind    OutcomeKind
	Receipt *IssuedReceipt

	// Reason is a caller-safe description for validation failures.
	Reason string

	// SpentCorrelative is set on failures after allocation; the value is lost
	// to the sequence and must be disclosed to the operator.
	SpentCorrelative sequencer.Correlative

	// ArtifactHandle is set on LedgerWriteFailed: the artifact that exists
	// without a matching ledger entry.
	ArtifactHandle artifact.Handle

	Err error
}

// Failed reports whether the saga run ended in any non-success state.
func (o Outcome) Failed() bool { return o.Kind != OutcomeSuccess }

// CorrelativeSpent reports whether the run consumed a correlative that will
// never be returned to the sequence.
func (o Outcome) CorrelativeSpent() bool {
	switch o.Kind {
	case OutcomeRenderFailed, OutcomeArtifactStoreFailed, OutcomeLedgerWriteFailed:
		return true
	}
	return o.Kind == OutcomeSuccess
}

func success(receipt *IssuedReceipt) Outcome {
	return Outcome{Kind: OutcomeSuccess, Receipt: receipt}
}

func validationFailed(reason string, err error) Outcome {
	return Outcome{Kind: OutcomeValidationFailed, Reason: reason, Err: err}
}

func lookupNotFound(err error) Outcome {
	return Outcome{Kind: OutcomeLookupNotFound, Err: err}
}

func directoryUnavailable(err error) Outcome {
	return Outcome{Kind: OutcomeDirectoryUnavailable, Err: err}
}

func sequencerUnavailable(err error) Outcome {
	return Outcome{Kind: OutcomeSequencerUnavailable, Err: err}
}

func renderFailed(spent sequencer.Correlative, err error) Outcome {
	return Outcome{Kind: OutcomeRenderFailed, SpentCorrelative: spent, Err: err}
}

func artifactStoreFailed(spent sequencer.Correlative, err error) Outcome {
	return Outcome{Kind: OutcomeArtifactStoreFailed, SpentCorrelative: spent, Err: err}
}

func ledgerWriteFailed(spent sequencer.Correlative, handle artifact.Handle, err error) Outcome {
	return Outcome{Kind: OutcomeLedgerWriteFailed, SpentCorrelative: spent, ArtifactHandle: handle, Err: err}
}
