// Package service implements the verification ledger: request submission,
// the global submission sequence, and proof resolution.
package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"veridian/internal/platform/metrics"
	"veridian/internal/proof"
	"veridian/internal/verification/models"
	"veridian/internal/verification/store"
	"veridian/internal/verification/tracer"
	id "veridian/pkg/domain"
	dErrors "veridian/pkg/domain-errors"
	"veridian/pkg/platform/audit"
	"veridian/pkg/platform/audit/publisher"
	"veridian/pkg/platform/sentinel"
	"veridian/pkg/requestcontext"
)

// DefaultVerifierDID stands in when a submission does not name its verifier.
const DefaultVerifierDID id.DID = "did:example:verifier"

// ResultVerified is recorded when a proof checks out.
const ResultVerified = "Proof verified successfully"

// ResultInvalidProof is recorded on a request whose proof failed the check.
// The request stays pending: the state machine has no rejected state.
const ResultInvalidProof = "Proof verification failed"

// CredentialChecker is the slice of the credential registry consulted on
// submission. Unknown credentials are logged, never rejected.
type CredentialChecker interface {
	IsCredentialValid(ctx context.Context, credentialID id.CredentialID) (bool, error)
}

// SubmitCommand carries the inputs of a verification request submission.
// RequestID is optional; one is generated when empty.
type SubmitCommand struct {
	RequestID    id.RequestID
	CredentialID id.CredentialID
	CircuitType  string
	ProofBlob    json.RawMessage
	PublicInputs []any
	VerifierDID  id.DID
}

// Service owns the verification ledger.
type Service struct {
	store       store.Store
	circuits    *proof.CircuitRegistry
	verifier    proof.Verifier
	credentials CredentialChecker
	audit       *publisher.Publisher
	metrics     *metrics.Metrics
	tracer      tracer.Tracer
	logger      *slog.Logger

	rejectOnInvalidProof bool
	queue                chan id.RequestID
}

// Option configures the Service.
type Option func(*Service)

// WithAsyncResolution queues submitted requests on a channel of the given
// size for a background resolver worker. Without it, Submit resolves inline.
func WithAsyncResolution(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queue = make(chan id.RequestID, size)
		}
	}
}

// WithRejectOnInvalidProof selects the strict resolution policy. Strict
// (default): an invalid proof leaves the request pending with a failure note.
// Lenient: every request is marked verified regardless of the proof check.
func WithRejectOnInvalidProof(reject bool) Option {
	return func(s *Service) {
		s.rejectOnInvalidProof = reject
	}
}

// WithTracer sets the tracer used around submit and resolve.
func WithTracer(t tracer.Tracer) Option {
	return func(s *Service) {
		s.tracer = t
	}
}

// New wires a verification service. credentials may be nil when no registry
// is available for reference warnings.
func New(st store.Store, circuits *proof.CircuitRegistry, verifier proof.Verifier, credentials CredentialChecker, auditPub *publisher.Publisher, m *metrics.Metrics, logger *slog.Logger, opts ...Option) *Service {
	s := &Service{
		store:                st,
		circuits:             circuits,
		verifier:             verifier,
		credentials:          credentials,
		audit:                auditPub,
		metrics:              m,
		tracer:               tracer.NewNoop(),
		logger:               logger,
		rejectOnInvalidProof: true,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Queue exposes the pending-request channel to the resolver worker. Nil when
// the service resolves inline.
func (s *Service) Queue() <-chan id.RequestID { return s.queue }

// Submit appends a verification request to the ledger. The request starts
// pending; resolution happens inline or on the background worker depending on
// configuration.
func (s *Service) Submit(ctx context.Context, cmd SubmitCommand) (*models.VerificationRequest, error) {
	ctx, span := s.tracer.Start(ctx, tracer.SpanSubmit,
		tracer.String(tracer.AttrCircuitType, cmd.CircuitType),
	)
	var err error
	defer func() { span.End(err) }()

	if !s.circuits.Recognized(cmd.CircuitType) {
		err = dErrors.New(dErrors.CodeInvalidInput,
			fmt.Sprintf("unrecognized circuit type: %s", cmd.CircuitType))
		return nil, err
	}
	if len(cmd.ProofBlob) == 0 || len(cmd.PublicInputs) == 0 {
		err = dErrors.New(dErrors.CodeInvalidInput, "proofData and publicInputs are required")
		return nil, err
	}
	if cmd.CredentialID.IsNil() {
		err = dErrors.New(dErrors.CodeInvalidInput, "credentialId is required")
		return nil, err
	}

	requestID := cmd.RequestID
	if requestID.IsNil() {
		requestID = id.NewRequestID()
	}
	span.SetAttributes(tracer.String(tracer.AttrRequestID, requestID.String()))

	verifierDID := cmd.VerifierDID
	if verifierDID.IsNil() {
		verifierDID = DefaultVerifierDID
	}

	s.warnUnknownCredential(ctx, cmd.CredentialID)

	request := &models.VerificationRequest{
		RequestID:    requestID,
		CredentialID: cmd.CredentialID,
		VerifierDID:  verifierDID,
		CircuitType:  cmd.CircuitType,
		ProofBlob:    cmd.ProofBlob,
		PublicInputs: cmd.PublicInputs,
		Status:       models.StatusPending,
		RequestedAt:  requestcontext.Now(ctx),
	}
	if storeErr := s.store.Create(ctx, request); storeErr != nil {
		err = translate(storeErr, requestID)
		return nil, err
	}

	s.metrics.IncrementVerificationsSubmitted()
	s.emit(ctx, audit.ActionVerificationSubmitted, requestID, map[string]string{
		"credential": cmd.CredentialID.String(),
		"circuit":    cmd.CircuitType,
	})

	if s.queue != nil {
		select {
		case s.queue <- requestID:
		default:
			s.logger.WarnContext(ctx, "resolution queue full, request stays pending",
				"request_id", requestID,
			)
		}
		return request, nil
	}

	// Inline resolution: the caller observes the final state immediately.
	if resolveErr := s.Resolve(ctx, requestID); resolveErr != nil {
		s.logger.ErrorContext(ctx, "inline resolution failed", "error", resolveErr, "request_id", requestID)
	}
	return s.Get(ctx, requestID)
}

// Resolve runs the proof check for a pending request and applies the
// configured policy. Resolving an already-verified request is a no-op.
func (s *Service) Resolve(ctx context.Context, requestID id.RequestID) error {
	ctx, span := s.tracer.Start(ctx, tracer.SpanResolve,
		tracer.String(tracer.AttrRequestID, requestID.String()),
	)
	var err error
	defer func() { span.End(err) }()
	start := time.Now()

	request, getErr := s.store.Get(ctx, requestID)
	if getErr != nil {
		err = translate(getErr, requestID)
		return err
	}
	if request.IsResolved() {
		return nil
	}

	valid, verifyErr := s.verifier.Verify(ctx, request.ProofBlob, request.PublicInputs)
	if verifyErr != nil {
		err = dErrors.Wrap(verifyErr, dErrors.CodeUnavailable, "proof service")
		return err
	}
	span.SetAttributes(tracer.Bool(tracer.AttrProofValid, valid))

	now := requestcontext.Now(ctx)
	result := "verified"
	switch {
	case valid:
		request.MarkVerified(now, ResultVerified)
	case s.rejectOnInvalidProof:
		// Strict policy: the request never transitions, only the result note
		// records the failed check.
		request.VerificationResult = ResultInvalidProof
		result = "rejected"
	default:
		// Lenient policy: mirror the deployment that marks everything
		// verified regardless of the proof check.
		request.MarkVerified(now, ResultVerified)
	}

	if updateErr := s.store.Update(ctx, request); updateErr != nil {
		err = translate(updateErr, requestID)
		return err
	}

	s.metrics.IncrementVerificationsResolved(result)
	s.metrics.ObserveResolutionLatency(time.Since(start).Seconds())
	s.emit(ctx, audit.ActionVerificationResolved, requestID, map[string]string{"result": result})
	return nil
}

// Get returns the ledger entry for a request ID.
func (s *Service) Get(ctx context.Context, requestID id.RequestID) (*models.VerificationRequest, error) {
	request, err := s.store.Get(ctx, requestID)
	if err != nil {
		return nil, translate(err, requestID)
	}
	return request, nil
}

// Total returns the number of submitted requests.
func (s *Service) Total(ctx context.Context) (int, error) {
	total, err := s.store.Total(ctx)
	if err != nil {
		return 0, dErrors.Wrap(err, dErrors.CodeInternal, "count verification requests")
	}
	return total, nil
}

// AtIndex returns the request ID at a zero-based position in the global
// submission sequence.
func (s *Service) AtIndex(ctx context.Context, index int) (id.RequestID, error) {
	requestID, err := s.store.AtIndex(ctx, index)
	if err != nil {
		if errors.Is(err, sentinel.ErrOutOfRange) {
			return "", dErrors.New(dErrors.CodeOutOfRange,
				fmt.Sprintf("verification request index %d out of range", index))
		}
		return "", dErrors.Wrap(err, dErrors.CodeInternal, "verification request at index")
	}
	return requestID, nil
}

// Page is one window of the ledger in submission order.
type Page struct {
	Requests []*models.VerificationRequest
	Page     int
	Limit    int
	Total    int
	Pages    int
}

// ListPage returns the page-th window of limit requests. Pages are 1-based;
// out-of-range pages return an empty window, not an error.
func (s *Service) ListPage(ctx context.Context, page, limit int) (*Page, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}
	if limit > 100 {
		limit = 100
	}

	total, err := s.Total(ctx)
	if err != nil {
		return nil, err
	}
	requests, err := s.store.List(ctx, (page-1)*limit, limit)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "list verification requests")
	}

	pages := total / limit
	if total%limit != 0 {
		pages++
	}
	return &Page{Requests: requests, Page: page, Limit: limit, Total: total, Pages: pages}, nil
}

func (s *Service) warnUnknownCredential(ctx context.Context, credentialID id.CredentialID) {
	if s.credentials == nil {
		return
	}
	if _, err := s.credentials.IsCredentialValid(ctx, credentialID); err != nil {
		if dErrors.HasCode(err, dErrors.CodeNotFound) {
			s.logger.WarnContext(ctx, "verification request references unknown credential",
				"credential_id", credentialID,
				"request_id", requestcontext.RequestID(ctx),
			)
			return
		}
		s.logger.WarnContext(ctx, "could not check credential reference", "error", err, "credential_id", credentialID)
	}
}

func (s *Service) emit(ctx context.Context, action audit.Action, requestID id.RequestID, detail map[string]string) {
	if s.audit == nil {
		return
	}
	if err := s.audit.Emit(ctx, audit.Event{
		Subject: requestID.String(),
		Action:  action,
		Detail:  detail,
	}); err != nil {
		s.logger.WarnContext(ctx, "failed to emit audit event", "error", err, "action", action)
	}
}

func translate(err error, requestID id.RequestID) error {
	switch {
	case errors.Is(err, sentinel.ErrNotFound):
		return dErrors.New(dErrors.CodeNotFound, fmt.Sprintf("verification request %s not found", requestID))
	case errors.Is(err, sentinel.ErrAlreadyExists):
		return dErrors.New(dErrors.CodeAlreadyExists, fmt.Sprintf("verification request %s already exists", requestID))
	default:
		return dErrors.Wrap(err, dErrors.CodeInternal, "verification ledger")
	}
}
