// Package handler exposes the verification ledger and the proof operations
// over HTTP.
package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"veridian/internal/proof"
	"veridian/internal/verification/models"
	"veridian/internal/verification/service"
	id "veridian/pkg/domain"
	"veridian/pkg/platform/httputil"
	"veridian/pkg/requestcontext"
)

// Service defines the ledger operations the handler needs.
type Service interface {
	Submit(ctx context.Context, cmd service.SubmitCommand) (*models.VerificationRequest, error)
	Get(ctx context.Context, requestID id.RequestID) (*models.VerificationRequest, error)
	Total(ctx context.Context) (int, error)
	ListPage(ctx context.Context, page, limit int) (*service.Page, error)
}

// ProofService defines the proof operations the handler needs.
type ProofService interface {
	CredentialProof(ctx context.Context, credentialType string, in proof.CredentialProofInput) (proof.Blob, error)
	AgeVerification(ctx context.Context, age, minAge int) (proof.Blob, error)
	CredentialOwnership(ctx context.Context, credentialHash, holderPublicKey, expectedHash string) (proof.Blob, error)
	SelectiveDisclosure(ctx context.Context, attributes []any, attributeIndex int, expectedValue any, threshold float64) (proof.Blob, error)
	VerifyProof(ctx context.Context, proofBlob json.RawMessage, publicInputs []any) (bool, error)
	CacheSize() int
}

type Handler struct {
	service Service
	proofs  ProofService
	logger  *slog.Logger
}

func New(service Service, proofs ProofService, logger *slog.Logger) *Handler {
	return &Handler{service: service, proofs: proofs, logger: logger}
}

func (h *Handler) Register(r chi.Router) {
	r.Post("/verification/request", h.HandleSubmit)
	r.Get("/verification/stats", h.HandleStats)
	r.Get("/verification/requests", h.HandleList)
	r.Post("/verification/generate-proof", h.HandleGenerateProof)
	r.Post("/verification/age", h.HandleAgeProof)
	r.Post("/verification/credential-ownership", h.HandleOwnershipProof)
	r.Post("/verification/selective-disclosure", h.HandleDisclosureProof)
	r.Post("/verification/verify-proof", h.HandleVerifyProof)
	// Registered last so the static segments above win.
	r.Get("/verification/{requestId}", h.HandleGetRequest)
}

func (h *Handler) HandleSubmit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[SubmitRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	request, err := h.service.Submit(ctx, service.SubmitCommand{
		RequestID:    id.RequestID(req.RequestID),
		CredentialID: id.CredentialID(req.CredentialID),
		CircuitType:  req.CircuitType,
		ProofBlob:    req.ProofData,
		PublicInputs: req.PublicInputs,
		VerifierDID:  id.DID(req.VerifierDID),
	})
	if err != nil {
		h.logger.ErrorContext(ctx, "submit verification request failed", "error", err, "request_id", requestID)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, SubmitResponse{
		Success:      true,
		RequestID:    request.RequestID.String(),
		CredentialID: request.CredentialID.String(),
		CircuitType:  request.CircuitType,
		TxHash:       id.NewTxHash(),
		Status:       string(models.StatusPending),
	})
}

func (h *Handler) HandleGetRequest(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	requestID, err := id.ParseRequestID(chi.URLParam(r, "requestId"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	request, err := h.service.Get(ctx, requestID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, GetRequestResponse{
		Success:             true,
		VerificationRequest: toRequestResponse(request),
	})
}

func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	page := queryInt(r, "page", 1)
	limit := queryInt(r, "limit", 10)

	window, err := h.service.ListPage(ctx, page, limit)
	if err != nil {
		h.logger.ErrorContext(ctx, "list verification requests failed",
			"error", err,
			"request_id", requestcontext.RequestID(ctx),
		)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, toListResponse(window))
}

func (h *Handler) HandleStats(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	total, err := h.service.Total(ctx)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, StatsResponse{
		Success: true,
		Stats: Stats{
			TotalVerificationRequests: total,
			ProofCacheSize:            h.proofs.CacheSize(),
		},
	})
}

func (h *Handler) HandleGenerateProof(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[GenerateProofRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	blob, err := h.proofs.CredentialProof(ctx, req.CredentialType, proof.CredentialProofInput{
		CredentialData:     req.CredentialData,
		VerificationParams: req.VerificationParams,
	})
	if err != nil {
		h.logger.ErrorContext(ctx, "generate proof failed", "error", err, "request_id", requestID)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, ProofResponse{
		Success:        true,
		Proof:          blob,
		CredentialType: req.CredentialType,
		GeneratedAt:    blob.GeneratedAt,
	})
}

func (h *Handler) HandleAgeProof(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[AgeProofRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	blob, err := h.proofs.AgeVerification(ctx, *req.Age, *req.MinAge)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	h.writeProof(w, blob, proof.CircuitAgeVerification)
}

func (h *Handler) HandleOwnershipProof(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[OwnershipProofRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	blob, err := h.proofs.CredentialOwnership(ctx, req.CredentialHash, req.HolderPublicKey, req.ExpectedHash)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	h.writeProof(w, blob, proof.CircuitCredentialOwnership)
}

func (h *Handler) HandleDisclosureProof(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[DisclosureProofRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	blob, err := h.proofs.SelectiveDisclosure(ctx, req.CredentialAttributes, *req.AttributeIndex, req.ExpectedValue, *req.Threshold)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	h.writeProof(w, blob, proof.CircuitSelectiveDisclosure)
}

func (h *Handler) HandleVerifyProof(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[VerifyProofRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	valid, err := h.proofs.VerifyProof(ctx, req.Proof, req.PublicInputs)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, VerifyProofResponse{
		Success:    true,
		IsValid:    valid,
		VerifiedAt: requestcontext.Now(ctx),
	})
}

func (h *Handler) writeProof(w http.ResponseWriter, blob proof.Blob, verificationType string) {
	httputil.WriteJSON(w, http.StatusOK, ProofResponse{
		Success:          true,
		Proof:            blob,
		VerificationType: verificationType,
		GeneratedAt:      blob.GeneratedAt,
	})
}

func queryInt(r *http.Request, key string, fallback int) int {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return n
}
