// Package handler exposes the credential registry over HTTP.
package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"veridian/internal/credential/models"
	"veridian/internal/credential/service"
	id "veridian/pkg/domain"
	"veridian/pkg/platform/httputil"
	"veridian/pkg/requestcontext"
)

// Service defines the credential operations the handler needs.
type Service interface {
	IssueCredential(ctx context.Context, cmd service.IssueCommand) (*models.Credential, error)
	GetCredential(ctx context.Context, credentialID id.CredentialID) (*models.Credential, error)
	IsCredentialValid(ctx context.Context, credentialID id.CredentialID) (bool, error)
	UpdateCredential(ctx context.Context, credentialID id.CredentialID, cmd service.UpdateCommand) (*models.Credential, error)
	RevokeCredential(ctx context.Context, credentialID id.CredentialID) (*models.Credential, error)
	GetCredentialsByHolder(ctx context.Context, holderDID id.DID) ([]id.CredentialID, error)
	GetCredentialsByIssuer(ctx context.Context, issuerDID id.DID) ([]id.CredentialID, error)
}

type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

func (h *Handler) Register(r chi.Router) {
	r.Post("/credentials/issue", h.HandleIssueCredential)
	r.Get("/credentials/holder/{did}", h.HandleGetByHolder)
	r.Get("/credentials/issuer/{did}", h.HandleGetByIssuer)
	r.Get("/credentials/{credentialId}", h.HandleGetCredential)
	r.Put("/credentials/{credentialId}", h.HandleUpdateCredential)
	r.Post("/credentials/{credentialId}/revoke", h.HandleRevokeCredential)
	r.Get("/credentials/{credentialId}/verify", h.HandleVerifyCredential)
}

func (h *Handler) HandleIssueCredential(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[IssueCredentialRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	credential, err := h.service.IssueCredential(ctx, service.IssueCommand{
		CredentialID:   id.CredentialID(req.CredentialID),
		HolderDID:      id.DID(req.HolderDID),
		CredentialType: req.CredentialType,
		CredentialData: req.CredentialData,
		ExpiresAt:      req.expiresAt(),
		Attributes:     req.Attributes,
		Metadata:       req.Metadata,
		IssuerDID:      id.DID(req.IssuerDID),
	})
	if err != nil {
		h.logger.ErrorContext(ctx, "issue credential failed", "error", err, "request_id", requestID)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, IssueCredentialResponse{
		Success:        true,
		CredentialID:   credential.CredentialID.String(),
		DocumentHandle: credential.DocumentHandle.String(),
		TxHash:         id.NewTxHash(),
	})
}

func (h *Handler) HandleGetCredential(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	credentialID, err := id.ParseCredentialID(chi.URLParam(r, "credentialId"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	credential, err := h.service.GetCredential(ctx, credentialID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	valid, err := h.service.IsCredentialValid(ctx, credentialID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, GetCredentialResponse{
		Success:    true,
		Credential: toCredentialResponse(credential),
		IsValid:    valid,
	})
}

func (h *Handler) HandleUpdateCredential(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	credentialID, err := id.ParseCredentialID(chi.URLParam(r, "credentialId"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	req, ok := httputil.DecodeAndPrepare[UpdateCredentialRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	credential, err := h.service.UpdateCredential(ctx, credentialID, service.UpdateCommand{
		CredentialData: req.CredentialData,
		Attributes:     req.Attributes,
		Metadata:       req.Metadata,
	})
	if err != nil {
		h.logger.ErrorContext(ctx, "update credential failed", "error", err, "request_id", requestID, "credential_id", credentialID)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, UpdateCredentialResponse{
		Success:        true,
		CredentialID:   credential.CredentialID.String(),
		DocumentHandle: credential.DocumentHandle.String(),
		TxHash:         id.NewTxHash(),
	})
}

func (h *Handler) HandleRevokeCredential(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	credentialID, err := id.ParseCredentialID(chi.URLParam(r, "credentialId"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	credential, err := h.service.RevokeCredential(ctx, credentialID)
	if err != nil {
		h.logger.ErrorContext(ctx, "revoke credential failed",
			"error", err,
			"credential_id", credentialID,
			"request_id", requestcontext.RequestID(ctx),
		)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, RevokeCredentialResponse{
		Success:      true,
		CredentialID: credential.CredentialID.String(),
		IsRevoked:    credential.IsRevoked,
		TxHash:       id.NewTxHash(),
	})
}

func (h *Handler) HandleVerifyCredential(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	credentialID, err := id.ParseCredentialID(chi.URLParam(r, "credentialId"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	valid, err := h.service.IsCredentialValid(ctx, credentialID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, ValidityResponse{
		Success:      true,
		CredentialID: credentialID.String(),
		IsValid:      valid,
	})
}

func (h *Handler) HandleGetByHolder(w http.ResponseWriter, r *http.Request) {
	h.handleList(w, r, h.service.GetCredentialsByHolder)
}

func (h *Handler) HandleGetByIssuer(w http.ResponseWriter, r *http.Request) {
	h.handleList(w, r, h.service.GetCredentialsByIssuer)
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request, list func(context.Context, id.DID) ([]id.CredentialID, error)) {
	ctx := r.Context()

	did, err := id.ParseDID(chi.URLParam(r, "did"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	ids, err := list(ctx, did)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, CredentialListResponse{
		Success:       true,
		DID:           did.String(),
		CredentialIDs: toIDStrings(ids),
	})
}
