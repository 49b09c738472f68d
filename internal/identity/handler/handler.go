// Package handler exposes the identity registry over HTTP.
package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"veridian/internal/identity/models"
	id "veridian/pkg/domain"
	"veridian/pkg/platform/httputil"
	"veridian/pkg/platform/middleware/principal"
	"veridian/pkg/requestcontext"
)

// Service defines the identity operations the handler needs. Returns domain
// records, not HTTP response DTOs.
type Service interface {
	CreateDID(ctx context.Context, did id.DID, publicKeys, services []string, metadata map[string]any, owner id.Principal) (*models.DIDRecord, error)
	GetDIDDocument(ctx context.Context, did id.DID) (*models.DIDRecord, error)
	UpdateDID(ctx context.Context, did id.DID, publicKeys, services []string, metadata map[string]any, caller id.Principal) (*models.DIDRecord, error)
	DeactivateDID(ctx context.Context, did id.DID, caller id.Principal) (*models.DIDRecord, error)
	ReactivateDID(ctx context.Context, did id.DID, caller id.Principal) (*models.DIDRecord, error)
	GetDIDByOwner(ctx context.Context, owner id.Principal) (*models.DIDRecord, error)
}

type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

func (h *Handler) Register(r chi.Router) {
	r.Post("/identity/create", h.HandleCreateDID)
	r.Get("/identity/address/{principal}", h.HandleGetDIDByOwner)
	r.Get("/identity/{did}", h.HandleGetDID)
	r.Put("/identity/{did}", h.HandleUpdateDID)
	r.Post("/identity/{did}/deactivate", h.HandleDeactivateDID)
	r.Post("/identity/{did}/reactivate", h.HandleReactivateDID)
}

func (h *Handler) HandleCreateDID(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[CreateDIDRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	caller, err := principal.Require(ctx)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	record, err := h.service.CreateDID(ctx, id.DID(req.DID), req.PublicKeys, req.Services, req.Metadata, caller)
	if err != nil {
		h.logger.ErrorContext(ctx, "create did failed", "error", err, "request_id", requestID)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, CreateDIDResponse{
		Success:        true,
		DID:            record.DID.String(),
		DocumentHandle: record.DocumentHandle.String(),
		TxHash:         id.NewTxHash(),
	})
}

func (h *Handler) HandleGetDID(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	did, err := id.ParseDID(chi.URLParam(r, "did"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	record, err := h.service.GetDIDDocument(ctx, did)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, GetDIDResponse{
		Success: true,
		DID:     toDIDResponse(record),
	})
}

func (h *Handler) HandleUpdateDID(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	did, err := id.ParseDID(chi.URLParam(r, "did"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	req, ok := httputil.DecodeAndPrepare[UpdateDIDRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	caller, err := principal.Require(ctx)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	record, err := h.service.UpdateDID(ctx, did, req.PublicKeys, req.Services, req.Metadata, caller)
	if err != nil {
		h.logger.ErrorContext(ctx, "update did failed", "error", err, "request_id", requestID, "did", did)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, UpdateDIDResponse{
		Success:        true,
		DID:            record.DID.String(),
		DocumentHandle: record.DocumentHandle.String(),
		TxHash:         id.NewTxHash(),
	})
}

func (h *Handler) HandleDeactivateDID(w http.ResponseWriter, r *http.Request) {
	h.handleSetStatus(w, r, false)
}

func (h *Handler) HandleReactivateDID(w http.ResponseWriter, r *http.Request) {
	h.handleSetStatus(w, r, true)
}

func (h *Handler) handleSetStatus(w http.ResponseWriter, r *http.Request, activate bool) {
	ctx := r.Context()

	did, err := id.ParseDID(chi.URLParam(r, "did"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	caller, err := principal.Require(ctx)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	var record *models.DIDRecord
	if activate {
		record, err = h.service.ReactivateDID(ctx, did, caller)
	} else {
		record, err = h.service.DeactivateDID(ctx, did, caller)
	}
	if err != nil {
		h.logger.ErrorContext(ctx, "did status change failed",
			"error", err,
			"did", did,
			"activate", activate,
			"request_id", requestcontext.RequestID(ctx),
		)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, StatusResponse{
		Success:  true,
		DID:      record.DID.String(),
		IsActive: record.IsActive,
		TxHash:   id.NewTxHash(),
	})
}

func (h *Handler) HandleGetDIDByOwner(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	owner, err := id.ParsePrincipal(chi.URLParam(r, "principal"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	record, err := h.service.GetDIDByOwner(ctx, owner)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, OwnerResponse{
		Success: true,
		Owner:   owner.String(),
		DID:     record.DID.String(),
	})
}
