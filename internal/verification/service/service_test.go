package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"veridian/internal/platform/metrics"
	"veridian/internal/proof"
	"veridian/internal/proof/mocks"
	"veridian/internal/verification/models"
	"veridian/internal/verification/store"
	id "veridian/pkg/domain"
	dErrors "veridian/pkg/domain-errors"
	"veridian/pkg/platform/audit"
	"veridian/pkg/platform/audit/publisher"
	auditmem "veridian/pkg/platform/audit/store/memory"
	"veridian/pkg/requestcontext"
)

// knownCredentials is a CredentialChecker stub over a fixed set.
type knownCredentials map[id.CredentialID]bool

func (k knownCredentials) IsCredentialValid(_ context.Context, credentialID id.CredentialID) (bool, error) {
	valid, ok := k[credentialID]
	if !ok {
		return false, dErrors.New(dErrors.CodeNotFound, "credential not found")
	}
	return valid, nil
}

type fixture struct {
	svc      *Service
	verifier *mocks.MockVerifier
	audit    *auditmem.Store
	frozen   time.Time
}

func newFixture(t *testing.T, opts ...Option) (*fixture, context.Context) {
	t.Helper()
	ctrl := gomock.NewController(t)
	verifier := mocks.NewMockVerifier(ctrl)
	auditStore := auditmem.New()
	svc := New(
		store.NewMemory(),
		proof.NewCircuitRegistry([]string{"age_verification", "credential_ownership"}),
		verifier,
		knownCredentials{"cred_001": true},
		publisher.New(auditStore),
		metrics.NewWith(prometheus.NewRegistry()),
		slog.New(slog.NewTextHandler(os.Stderr, nil)),
		opts...,
	)
	frozen := time.Date(2026, 2, 1, 9, 0, 0, 0, time.UTC)
	ctx := requestcontext.WithTime(context.Background(), frozen)
	return &fixture{svc: svc, verifier: verifier, audit: auditStore, frozen: frozen}, ctx
}

func submitCmd(requestID string) SubmitCommand {
	return SubmitCommand{
		RequestID:    id.RequestID(requestID),
		CredentialID: "cred_001",
		CircuitType:  "age_verification",
		ProofBlob:    json.RawMessage(`{"proof":{"a":["0x1","0x2"]}}`),
		PublicInputs: []any{18},
		VerifierDID:  "did:example:checker",
	}
}

func TestSubmitResolvesInline(t *testing.T) {
	f, ctx := newFixture(t)
	f.verifier.EXPECT().Verify(gomock.Any(), gomock.Any(), gomock.Any()).Return(true, nil)

	request, err := f.svc.Submit(ctx, submitCmd("req_001"))
	require.NoError(t, err)
	assert.Equal(t, models.StatusVerified, request.Status)
	assert.Equal(t, ResultVerified, request.VerificationResult)
	assert.Equal(t, f.frozen, request.VerifiedAt)
	assert.Equal(t, f.frozen, request.RequestedAt)
}

func TestSubmitGeneratesRequestIDAndDefaultVerifier(t *testing.T) {
	f, ctx := newFixture(t)
	f.verifier.EXPECT().Verify(gomock.Any(), gomock.Any(), gomock.Any()).Return(true, nil)

	cmd := submitCmd("")
	cmd.VerifierDID = ""
	request, err := f.svc.Submit(ctx, cmd)
	require.NoError(t, err)
	assert.NotEmpty(t, request.RequestID)
	assert.Equal(t, DefaultVerifierDID, request.VerifierDID)
}

func TestSubmitRejectsUnknownCircuit(t *testing.T) {
	f, ctx := newFixture(t)

	cmd := submitCmd("req_001")
	cmd.CircuitType = "quantum_oracle"
	_, err := f.svc.Submit(ctx, cmd)
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
}

func TestSubmitRequiresProofAndInputs(t *testing.T) {
	f, ctx := newFixture(t)

	cmd := submitCmd("req_001")
	cmd.PublicInputs = nil
	_, err := f.svc.Submit(ctx, cmd)
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))

	cmd = submitCmd("req_001")
	cmd.CredentialID = ""
	_, err = f.svc.Submit(ctx, cmd)
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
}

func TestSubmitDuplicateRequestID(t *testing.T) {
	f, ctx := newFixture(t)
	f.verifier.EXPECT().Verify(gomock.Any(), gomock.Any(), gomock.Any()).Return(true, nil)

	_, err := f.svc.Submit(ctx, submitCmd("req_001"))
	require.NoError(t, err)

	_, err = f.svc.Submit(ctx, submitCmd("req_001"))
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeAlreadyExists))
}

func TestSubmitToleratesUnknownCredential(t *testing.T) {
	// The credential reference is weak: an unregistered ID warns but the
	// submission is accepted.
	f, ctx := newFixture(t)
	f.verifier.EXPECT().Verify(gomock.Any(), gomock.Any(), gomock.Any()).Return(true, nil)

	cmd := submitCmd("req_001")
	cmd.CredentialID = "cred_ghost"
	_, err := f.svc.Submit(ctx, cmd)
	require.NoError(t, err)
}

func TestStrictPolicyKeepsInvalidProofPending(t *testing.T) {
	f, ctx := newFixture(t)
	f.verifier.EXPECT().Verify(gomock.Any(), gomock.Any(), gomock.Any()).Return(false, nil)

	request, err := f.svc.Submit(ctx, submitCmd("req_001"))
	require.NoError(t, err)
	assert.Equal(t, models.StatusPending, request.Status)
	assert.Equal(t, ResultInvalidProof, request.VerificationResult)
	assert.True(t, request.VerifiedAt.IsZero())
}

func TestLenientPolicyVerifiesRegardless(t *testing.T) {
	f, ctx := newFixture(t, WithRejectOnInvalidProof(false))
	f.verifier.EXPECT().Verify(gomock.Any(), gomock.Any(), gomock.Any()).Return(false, nil)

	request, err := f.svc.Submit(ctx, submitCmd("req_001"))
	require.NoError(t, err)
	assert.Equal(t, models.StatusVerified, request.Status)
	assert.Equal(t, ResultVerified, request.VerificationResult)
}

func TestVerifierFailureLeavesRequestPending(t *testing.T) {
	f, ctx := newFixture(t)
	f.verifier.EXPECT().Verify(gomock.Any(), gomock.Any(), gomock.Any()).Return(false, fmt.Errorf("prover down"))

	request, err := f.svc.Submit(ctx, submitCmd("req_001"))
	require.NoError(t, err, "submission survives a failed inline resolution")
	assert.Equal(t, models.StatusPending, request.Status)
	assert.Empty(t, request.VerificationResult)
}

func TestResolveIsIdempotent(t *testing.T) {
	f, ctx := newFixture(t)
	// Verify runs once; the second Resolve sees a terminal request.
	f.verifier.EXPECT().Verify(gomock.Any(), gomock.Any(), gomock.Any()).Return(true, nil).Times(1)

	request, err := f.svc.Submit(ctx, submitCmd("req_001"))
	require.NoError(t, err)
	require.Equal(t, models.StatusVerified, request.Status)

	require.NoError(t, f.svc.Resolve(ctx, "req_001"))
}

func TestResolveUnknownRequest(t *testing.T) {
	f, ctx := newFixture(t)

	err := f.svc.Resolve(ctx, "req_ghost")
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeNotFound))
}

func TestAsyncSubmitQueuesAndStaysPending(t *testing.T) {
	f, ctx := newFixture(t, WithAsyncResolution(4))

	request, err := f.svc.Submit(ctx, submitCmd("req_001"))
	require.NoError(t, err)
	assert.Equal(t, models.StatusPending, request.Status)

	select {
	case queued := <-f.svc.Queue():
		assert.Equal(t, id.RequestID("req_001"), queued)
	default:
		t.Fatal("expected the request on the resolution queue")
	}
}

func TestSequenceAndOutOfRange(t *testing.T) {
	f, ctx := newFixture(t)
	f.verifier.EXPECT().Verify(gomock.Any(), gomock.Any(), gomock.Any()).Return(true, nil).Times(2)

	_, err := f.svc.Submit(ctx, submitCmd("req_001"))
	require.NoError(t, err)
	_, err = f.svc.Submit(ctx, submitCmd("req_002"))
	require.NoError(t, err)

	total, err := f.svc.Total(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, total)

	first, err := f.svc.AtIndex(ctx, 0)
	require.NoError(t, err)
	assert.Equal(t, id.RequestID("req_001"), first)

	_, err = f.svc.AtIndex(ctx, 2)
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeOutOfRange))
}

func TestListPage(t *testing.T) {
	f, ctx := newFixture(t)
	f.verifier.EXPECT().Verify(gomock.Any(), gomock.Any(), gomock.Any()).Return(true, nil).Times(5)

	for i := 1; i <= 5; i++ {
		_, err := f.svc.Submit(ctx, submitCmd(fmt.Sprintf("req_%03d", i)))
		require.NoError(t, err)
	}

	page, err := f.svc.ListPage(ctx, 2, 2)
	require.NoError(t, err)
	assert.Equal(t, 2, page.Page)
	assert.Equal(t, 2, page.Limit)
	assert.Equal(t, 5, page.Total)
	assert.Equal(t, 3, page.Pages)
	require.Len(t, page.Requests, 2)
	assert.Equal(t, id.RequestID("req_003"), page.Requests[0].RequestID)

	// Out-of-range page is an empty window, bad parameters fall back to
	// defaults.
	page, err = f.svc.ListPage(ctx, 99, 2)
	require.NoError(t, err)
	assert.Empty(t, page.Requests)

	page, err = f.svc.ListPage(ctx, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, page.Page)
	assert.Equal(t, 10, page.Limit)
	assert.Len(t, page.Requests, 5)
}

func TestSubmitAndResolveEmitAuditEvents(t *testing.T) {
	f, ctx := newFixture(t)
	f.verifier.EXPECT().Verify(gomock.Any(), gomock.Any(), gomock.Any()).Return(true, nil)

	_, err := f.svc.Submit(ctx, submitCmd("req_001"))
	require.NoError(t, err)

	events, err := f.audit.ListBySubject(ctx, "req_001")
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, audit.ActionVerificationSubmitted, events[0].Action)
	assert.Equal(t, audit.ActionVerificationResolved, events[1].Action)
	assert.Equal(t, "verified", events[1].Detail["result"])
}
