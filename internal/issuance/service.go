package issuance

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"recibo/internal/artifact"
	"recibo/internal/directory"
	"recibo/internal/issuance/events"
	"recibo/internal/issuance/metrics"
	"recibo/internal/ledger"
	"recibo/internal/renderer"
	"recibo/internal/sequencer"
	dErrors "recibo/pkg/domain-errors"
	"recibo/pkg/retry"
	"recibo/pkg/sentinel"
)

// Directory resolves document numbers to members. Lookups are read-only and
// freely retryable.
type Directory interface {
	Lookup(ctx context.Context, documentNumber string) (*directory.Member, error)
}

// Sequencer allocates receipt correlatives. Allocate is the only operation
// that may mutate the counter.
type Sequencer interface {
	Peek(ctx context.Context) (sequencer.Correlative, error)
	Allocate(ctx context.Context) (sequencer.Correlative, error)
}

// EventPublisher notifies downstream consumers of issued receipts. Publishing
// is best-effort: a publish failure never fails an already-persisted saga.
type EventPublisher interface {
	Publish(ctx context.Context, event events.ReceiptIssued) error
}

// Service executes the issuance saga. Sagas run concurrently; only the
// sequencer's Allocate serializes, and every collaborator call is bounded by
// the caller's context.
type Service struct {
	directory Directory
	sequencer Sequencer
	renderer  renderer.Renderer
	artifacts artifact.Store
	ledger    ledger.Recorder

	events  EventPublisher
	metrics *metrics.Metrics
	logger  *slog.Logger
	scheme  sequencer.Scheme
	now     func() time.Time

	maxRetries         uint64
	ledgerWriteTimeout time.Duration
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func WithEventPublisher(publisher EventPublisher) Option {
	return func(s *Service) { s.events = publisher }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

func WithScheme(scheme sequencer.Scheme) Option {
	return func(s *Service) { s.scheme = scheme }
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func WithMaxRetries(n uint64) Option {
	return func(s *Service) { s.maxRetries = n }
}

func WithLedgerWriteTimeout(d time.Duration) Option {
	return func(s *Service) { s.ledgerWriteTimeout = d }
}

func New(
	dir Directory,
	seq Sequencer,
	rend renderer.Renderer,
	artifacts artifact.Store,
	rec ledger.Recorder,
	opts ...Option,
) (*Service, error) {
	if dir == nil {
		return nil, fmt.Errorf("directory is required")
	}
	if seq == nil {
		return nil, fmt.Errorf("sequencer is required")
	}
	if rend == nil {
		return nil, fmt.Errorf("renderer is required")
	}
	if artifacts == nil {
		return nil, fmt.Errorf("artifact store is required")
	}
	if rec == nil {
		return nil, fmt.Errorf("ledger recorder is required")
	}

	s := &Service{
		directory:          dir,
		sequencer:          seq,
		renderer:           rend,
		artifacts:          artifacts,
		ledger:             rec,
		logger:             slog.Default(),
		scheme:             sequencer.DefaultScheme,
		now:                time.Now,
		maxRetries:         2,
		ledgerWriteTimeout: 10 * time.Second,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Issue runs the issuance saga for one request.
//
// Step order is fixed: validate, look up the member, allocate the
// correlative, render, store the artifact, append the ledger entry. The
// correlative is allocated here at commit time — a previously peeked value is
// display-only and never trusted. Once Allocate returns, the correlative is
// spent: failures from that point surface it in the outcome instead of ever
// re-deriving or reusing it.
func (s *Service) Issue(ctx context.Context, req Request) Outcome {
	start := s.now()

	if err := req.Validate(); err != nil {
		return s.finish(ctx, start, validationFailed(dErrors.Message(err), err))
	}

	member, err := s.directory.Lookup(ctx, req.DocumentNumber)
	if err != nil {
		if dErrors.HasCode(err, dErrors.CodeNotFound) {
			return s.finish(ctx, start, lookupNotFound(err))
		}
		if dErrors.HasCode(err, dErrors.CodeBadRequest) {
			return s.finish(ctx, start, validationFailed(dErrors.Message(err), err))
		}
		return s.finish(ctx, start, directoryUnavailable(err))
	}

	correlative, err := s.sequencer.Allocate(ctx)
	if err != nil {
		return s.finish(ctx, start, sequencerUnavailable(err))
	}

	data, err := s.renderer.Render(ctx, buildDocument(correlative, req, *member))
	if err != nil {
		return s.finish(ctx, start, renderFailed(correlative, err))
	}

	handle, err := s.putArtifact(ctx, correlative, data, member)
	if err != nil {
		return s.finish(ctx, start, artifactStoreFailed(correlative, err))
	}

	if err := s.appendLedger(ctx, s.entryFor(correlative, req, *member)); err != nil {
		return s.finish(ctx, start, ledgerWriteFailed(correlative, handle, err))
	}

	receipt := &IssuedReceipt{
		Correlative:    correlative,
		Request:        req,
		Member:         *member,
		ArtifactHandle: handle,
		CreatedAt:      s.now(),
	}
	s.publishIssued(ctx, receipt)

	return s.finish(ctx, start, success(receipt))
}

// RetryLedger completes a saga that stopped at LedgerWriteFailed: the artifact
// for the correlative is already durable, so only the idempotent ledger append
// runs again. No new correlative is allocated.
func (s *Service) RetryLedger(ctx context.Context, correlative sequencer.Correlative, req Request) Outcome {
	start := s.now()

	if !s.scheme.Valid(correlative) {
		err := dErrors.Newf(dErrors.CodeBadRequest, "malformed correlative %q", correlative)
		return s.finish(ctx, start, validationFailed(dErrors.Message(err), err))
	}
	if err := req.Validate(); err != nil {
		return s.finish(ctx, start, validationFailed(dErrors.Message(err), err))
	}

	member, err := s.directory.Lookup(ctx, req.DocumentNumber)
	if err != nil {
		if dErrors.HasCode(err, dErrors.CodeNotFound) {
			return s.finish(ctx, start, lookupNotFound(err))
		}
		return s.finish(ctx, start, directoryUnavailable(err))
	}

	// The ledger step never runs ahead of the artifact: without a stored
	// artifact there is nothing to complete, and the correlative remains a
	// reconciliation case.
	stored, err := s.artifacts.Get(ctx, correlative.String())
	if err != nil {
		return s.finish(ctx, start, artifactStoreFailed(correlative, err))
	}

	existed := true
	if _, err := s.ledger.FindByReceipt(ctx, correlative.String()); errors.Is(err, sentinel.ErrNotFound) {
		existed = false
	}

	if err := s.appendLedger(ctx, s.entryFor(correlative, req, *member)); err != nil {
		return s.finish(ctx, start, ledgerWriteFailed(correlative, stored.Handle, err))
	}

	receipt := &IssuedReceipt{
		Correlative:    correlative,
		Request:        req,
		Member:         *member,
		ArtifactHandle: stored.Handle,
		CreatedAt:      s.now(),
	}
	if !existed {
		s.publishIssued(ctx, receipt)
	}

	return s.finish(ctx, start, success(receipt))
}

// PeekNextCorrelative reports the correlative that would be allocated next.
// Display only: it is not a reservation, and concurrent submissions may
// consume the value before the caller does.
func (s *Service) PeekNextCorrelative(ctx context.Context) (sequencer.Correlative, error) {
	c, err := s.sequencer.Peek(ctx)
	if err != nil {
		return "", dErrors.Wrap(err, dErrors.CodeUnavailable, "sequencer unavailable")
	}
	return c, nil
}

// GetArtifact returns the stored receipt document for download.
func (s *Service) GetArtifact(ctx context.Context, receiptNumber string) (*artifact.Artifact, error) {
	c := sequencer.Correlative(receiptNumber)
	if !s.scheme.Valid(c) {
		return nil, dErrors.Newf(dErrors.CodeBadRequest, "malformed receipt number %q", receiptNumber)
	}
	a, err := s.artifacts.Get(ctx, receiptNumber)
	if errors.Is(err, sentinel.ErrNotFound) {
		return nil, dErrors.Wrap(err, dErrors.CodeNotFound, "artifact not found")
	}
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeUnavailable, "artifact store unavailable")
	}
	return a, nil
}

// putArtifact stores the rendered bytes, retrying transient failures. The put
// is idempotent per key so retries cannot create a second artifact; a content
// conflict is permanent and never retried.
func (s *Service) putArtifact(ctx context.Context, correlative sequencer.Correlative, data []byte, member *directory.Member) (artifact.Handle, error) {
	var handle artifact.Handle
	err := retry.Transient(ctx, s.maxRetries, func() error {
		h, putErr := s.artifacts.Put(ctx, correlative.String(), data, member.ID)
		if errors.Is(putErr, sentinel.ErrConflict) {
			return retry.Permanent(putErr)
		}
		if putErr != nil {
			return putErr
		}
		handle = h
		return nil
	})
	return handle, err
}

// appendLedger records the income entry. Once the artifact is durable,
// abandoning the append mid-flight is what creates the artifact-without-entry
// state, so the write runs to its checkpoint on a detached timeout context
// even if the caller cancels. An entry that already exists counts as success:
// that is the idempotent replay of a previously interrupted run.
func (s *Service) appendLedger(ctx context.Context, entry ledger.Entry) error {
	lctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.ledgerWriteTimeout)
	defer cancel()

	return retry.Transient(lctx, s.maxRetries, func() error {
		err := s.ledger.Append(lctx, entry)
		if errors.Is(err, sentinel.ErrAlreadyExists) {
			return nil
		}
		return err
	})
}

func (s *Service) entryFor(correlative sequencer.Correlative, req Request, member directory.Member) ledger.Entry {
	return ledger.Entry{
		ReceiptNumber:   correlative.String(),
		MemberDocument:  member.DocumentNumber,
		MemberName:      member.LegalName,
		Amount:          req.Amount,
		Account:         string(req.PaymentMethod),
		Date:            req.IssueDate,
		Type:            ledger.EntryTypeReceiptOfPayment,
		OperationNumber: req.operationNumber(),
		CreatedAt:       s.now(),
	}
}

func buildDocument(correlative sequencer.Correlative, req Request, member directory.Member) renderer.Document {
	return renderer.Document{
		Correlative:        correlative.String(),
		MemberName:         member.LegalName,
		MemberDocument:     member.DocumentNumber,
		IssueDate:          req.IssueDate,
		Amount:             req.Amount,
		Concept:            req.Concept,
		PaymentMethod:      string(req.PaymentMethod),
		OperationReference: req.OperationReference,
	}
}

func (s *Service) publishIssued(ctx context.Context, receipt *IssuedReceipt) {
	if s.events == nil {
		return
	}
	event := events.ReceiptIssued{
		ReceiptNumber:  receipt.Correlative.String(),
		MemberDocument: receipt.Member.DocumentNumber,
		MemberName:     receipt.Member.LegalName,
		Amount:         receipt.Request.Amount,
		PaymentMethod:  string(receipt.Request.PaymentMethod),
		Concept:        receipt.Request.Concept,
		ArtifactHandle: string(receipt.ArtifactHandle),
		IssuedAt:       receipt.CreatedAt,
	}
	if err := s.events.Publish(ctx, event); err != nil {
		s.logger.WarnContext(ctx, "failed to publish receipt issued event",
			"receipt_number", receipt.Correlative,
			"error", err.Error(),
		)
	}
}

func (s *Service) finish(ctx context.Context, start time.Time, outcome Outcome) Outcome {
	stage := stageFor(outcome.Kind)
	s.metrics.ObserveOutcome(stage, s.now().Sub(start).Seconds(), outcome.Failed() && outcome.CorrelativeSpent())

	switch {
	case !outcome.Failed():
		s.logger.InfoContext(ctx, "receipt issued",
			"receipt_number", outcome.Receipt.Correlative,
			"artifact_handle", outcome.Receipt.ArtifactHandle,
		)
	case outcome.CorrelativeSpent():
		// A failure after allocation always discloses the spent correlative
		// so the operator can account for the gap or resume the ledger step.
		s.logger.ErrorContext(ctx, "issuance failed after allocation",
			"stage", stage,
			"spent_correlative", outcome.SpentCorrelative,
			"artifact_handle", outcome.ArtifactHandle,
			"error", errText(outcome.Err),
		)
	default:
		s.logger.WarnContext(ctx, "issuance rejected",
			"stage", stage,
			"error", errText(outcome.Err),
		)
	}
	return outcome
}

func stageFor(kind OutcomeKind) string {
	switch kind {
	case OutcomeSuccess:
		return ""
	case OutcomeValidationFailed:
		return "validation"
	case OutcomeLookupNotFound:
		return "lookup"
	case OutcomeDirectoryUnavailable:
		return "directory"
	case OutcomeSequencerUnavailable:
		return "sequencer"
	case OutcomeRenderFailed:
		return "render"
	case OutcomeArtifactStoreFailed:
		return "artifact_store"
	case OutcomeLedgerWriteFailed:
		return "ledger_write"
	}
	return "unknown"
}

func errText(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
