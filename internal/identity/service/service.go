// Package service implements the identity registry operations over a Store
// and the document store collaborator.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"veridian/internal/docstore"
	"veridian/internal/identity/models"
	"veridian/internal/identity/store"
	"veridian/internal/platform/metrics"
	id "veridian/pkg/domain"
	dErrors "veridian/pkg/domain-errors"
	"veridian/pkg/platform/audit"
	"veridian/pkg/platform/audit/publisher"
	"veridian/pkg/platform/sentinel"
	"veridian/pkg/requestcontext"
)

// Service owns the DID registry. Document persistence happens before the
// registry write: if the document store fails, no record is created.
type Service struct {
	store   store.Store
	docs    docstore.Store
	audit   *publisher.Publisher
	metrics *metrics.Metrics
	logger  *slog.Logger
}

// New wires an identity service.
func New(st store.Store, docs docstore.Store, auditPub *publisher.Publisher, m *metrics.Metrics, logger *slog.Logger) *Service {
	return &Service{store: st, docs: docs, audit: auditPub, metrics: m, logger: logger}
}

// CreateDID registers a new DID for the owner. One DID per owner; duplicate
// DIDs and already-bound owners are rejected.
func (s *Service) CreateDID(ctx context.Context, did id.DID, publicKeys, services []string, metadata map[string]any, owner id.Principal) (*models.DIDRecord, error) {
	if len(publicKeys) == 0 {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "at least one public key is required")
	}
	if owner.IsNil() {
		return nil, dErrors.New(dErrors.CodeForbidden, "caller principal is required")
	}

	now := requestcontext.Now(ctx)
	handle, err := s.docs.Put(ctx, models.Document{
		ID:         did.String(),
		Owner:      owner.String(),
		PublicKeys: publicKeys,
		Services:   services,
		Metadata:   metadata,
		UpdatedAt:  now,
	})
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeUnavailable, "persist did document")
	}

	record := &models.DIDRecord{
		DID:            did,
		Owner:          owner,
		DocumentHandle: handle,
		PublicKeys:     publicKeys,
		Services:       services,
		IsActive:       true,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := s.store.Create(ctx, record); err != nil {
		return nil, translate(err, did)
	}

	s.metrics.IncrementDIDsCreated()
	s.emit(ctx, audit.ActionDIDCreated, did, map[string]string{"owner": owner.String()})
	return record, nil
}

// GetDIDDocument returns the registry record for a DID.
func (s *Service) GetDIDDocument(ctx context.Context, did id.DID) (*models.DIDRecord, error) {
	record, err := s.store.Get(ctx, did)
	if err != nil {
		return nil, translate(err, did)
	}
	return record, nil
}

// UpdateDID replaces the keys and services of a DID. Full-replacement
// semantics: the caller supplies every field, nothing is merged.
func (s *Service) UpdateDID(ctx context.Context, did id.DID, publicKeys, services []string, metadata map[string]any, caller id.Principal) (*models.DIDRecord, error) {
	if len(publicKeys) == 0 {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "at least one public key is required")
	}

	record, err := s.store.Get(ctx, did)
	if err != nil {
		return nil, translate(err, did)
	}
	if record.Owner != caller {
		return nil, dErrors.New(dErrors.CodeForbidden, "only the owner may update a did")
	}

	now := requestcontext.Now(ctx)
	handle, err := s.docs.Put(ctx, models.Document{
		ID:         did.String(),
		Owner:      record.Owner.String(),
		PublicKeys: publicKeys,
		Services:   services,
		Metadata:   metadata,
		UpdatedAt:  now,
	})
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeUnavailable, "persist did document")
	}

	record.DocumentHandle = handle
	record.PublicKeys = publicKeys
	record.Services = services
	record.UpdatedAt = now
	if err := s.store.Update(ctx, record); err != nil {
		return nil, translate(err, did)
	}

	s.emit(ctx, audit.ActionDIDUpdated, did, nil)
	return record, nil
}

// DeactivateDID marks a DID inactive. Owner-only; repeat calls are no-ops.
func (s *Service) DeactivateDID(ctx context.Context, did id.DID, caller id.Principal) (*models.DIDRecord, error) {
	record, err := s.setActive(ctx, did, caller, false)
	if err != nil {
		return nil, err
	}
	s.metrics.IncrementDIDsDeactivated()
	s.emit(ctx, audit.ActionDIDDeactivated, did, nil)
	return record, nil
}

// ReactivateDID marks a DID active again. Owner-only; repeat calls are no-ops.
func (s *Service) ReactivateDID(ctx context.Context, did id.DID, caller id.Principal) (*models.DIDRecord, error) {
	record, err := s.setActive(ctx, did, caller, true)
	if err != nil {
		return nil, err
	}
	s.metrics.IncrementDIDsReactivated()
	s.emit(ctx, audit.ActionDIDReactivated, did, nil)
	return record, nil
}

func (s *Service) setActive(ctx context.Context, did id.DID, caller id.Principal, active bool) (*models.DIDRecord, error) {
	record, err := s.store.Get(ctx, did)
	if err != nil {
		return nil, translate(err, did)
	}
	if record.Owner != caller {
		return nil, dErrors.New(dErrors.CodeForbidden, "only the owner may change did status")
	}

	now := requestcontext.Now(ctx)
	if active {
		record.Reactivate(now)
	} else {
		record.Deactivate(now)
	}
	if err := s.store.Update(ctx, record); err != nil {
		return nil, translate(err, did)
	}
	return record, nil
}

// GetDIDByOwner resolves the one DID bound to a principal.
func (s *Service) GetDIDByOwner(ctx context.Context, owner id.Principal) (*models.DIDRecord, error) {
	record, err := s.store.GetByOwner(ctx, owner)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, fmt.Sprintf("no did registered for %s", owner))
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "get did by owner")
	}
	return record, nil
}

// DoesDIDExist reports whether a DID is registered. Total: absence is not an
// error.
func (s *Service) DoesDIDExist(ctx context.Context, did id.DID) (bool, error) {
	exists, err := s.store.Exists(ctx, did)
	if err != nil {
		return false, dErrors.Wrap(err, dErrors.CodeInternal, "did exists")
	}
	return exists, nil
}

func (s *Service) emit(ctx context.Context, action audit.Action, did id.DID, detail map[string]string) {
	if s.audit == nil {
		return
	}
	if err := s.audit.Emit(ctx, audit.Event{
		Subject: did.String(),
		Action:  action,
		Detail:  detail,
	}); err != nil {
		s.logger.WarnContext(ctx, "failed to emit audit event", "error", err, "action", action)
	}
}

func translate(err error, did id.DID) error {
	switch {
	case errors.Is(err, sentinel.ErrNotFound):
		return dErrors.New(dErrors.CodeNotFound, fmt.Sprintf("did %s not found", did))
	case errors.Is(err, sentinel.ErrAlreadyExists):
		return dErrors.New(dErrors.CodeAlreadyExists, fmt.Sprintf("did %s already exists", did))
	case errors.Is(err, sentinel.ErrOwnerAlreadyBound):
		return dErrors.New(dErrors.CodeOwnerAlreadyBound, "owner already has a registered did")
	default:
		return dErrors.Wrap(err, dErrors.CodeInternal, "identity registry")
	}
}
