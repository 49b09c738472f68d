// Package service implements the credential registry operations.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"veridian/internal/credential/models"
	"veridian/internal/credential/store"
	"veridian/internal/docstore"
	"veridian/internal/platform/metrics"
	id "veridian/pkg/domain"
	dErrors "veridian/pkg/domain-errors"
	"veridian/pkg/platform/audit"
	"veridian/pkg/platform/audit/publisher"
	"veridian/pkg/platform/sentinel"
	"veridian/pkg/requestcontext"
)

// DIDChecker is the slice of the identity registry the credential service
// consults. Unknown DIDs are logged, never rejected: cross-registry
// references are weak.
type DIDChecker interface {
	DoesDIDExist(ctx context.Context, did id.DID) (bool, error)
}

// IssueCommand carries the inputs of a credential issuance.
type IssueCommand struct {
	CredentialID   id.CredentialID
	HolderDID      id.DID
	CredentialType string
	CredentialData map[string]any
	ExpiresAt      time.Time
	Attributes     []string
	Metadata       string
	IssuerDID      id.DID
}

// UpdateCommand carries the full-replacement inputs of a credential update.
// Revocation state, issuance time, and expiry are never touched by updates.
type UpdateCommand struct {
	CredentialData map[string]any
	Attributes     []string
	Metadata       string
}

// Service owns the credential registry. Document persistence happens before
// the registry write, the same all-or-nothing ordering the identity registry
// uses.
type Service struct {
	store    store.Store
	docs     docstore.Store
	identity DIDChecker
	audit    *publisher.Publisher
	metrics  *metrics.Metrics
	logger   *slog.Logger
}

// New wires a credential service. identity may be nil when no registry is
// available for reference warnings.
func New(st store.Store, docs docstore.Store, identity DIDChecker, auditPub *publisher.Publisher, m *metrics.Metrics, logger *slog.Logger) *Service {
	return &Service{store: st, docs: docs, identity: identity, audit: auditPub, metrics: m, logger: logger}
}

// IssueCredential registers a new credential and appends it to the holder and
// issuer indices.
func (s *Service) IssueCredential(ctx context.Context, cmd IssueCommand) (*models.Credential, error) {
	if cmd.CredentialID.IsNil() || cmd.HolderDID.IsNil() || cmd.CredentialType == "" {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "credentialId, holderDID and credentialType are required")
	}

	s.warnUnknownDID(ctx, cmd.HolderDID, "holder")
	if !cmd.IssuerDID.IsNil() {
		s.warnUnknownDID(ctx, cmd.IssuerDID, "issuer")
	}

	now := requestcontext.Now(ctx)
	handle, err := s.docs.Put(ctx, models.Document{
		CredentialID:   cmd.CredentialID.String(),
		IssuerDID:      cmd.IssuerDID.String(),
		HolderDID:      cmd.HolderDID.String(),
		CredentialType: cmd.CredentialType,
		CredentialData: cmd.CredentialData,
		Attributes:     cmd.Attributes,
		Metadata:       cmd.Metadata,
		IssuedAt:       now,
	})
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeUnavailable, "persist credential document")
	}

	credential := &models.Credential{
		CredentialID:   cmd.CredentialID,
		IssuerDID:      cmd.IssuerDID,
		HolderDID:      cmd.HolderDID,
		CredentialType: cmd.CredentialType,
		DocumentHandle: handle,
		Attributes:     cmd.Attributes,
		Metadata:       cmd.Metadata,
		IssuedAt:       now,
		ExpiresAt:      cmd.ExpiresAt,
	}
	if err := s.store.Create(ctx, credential); err != nil {
		return nil, translate(err, cmd.CredentialID)
	}

	s.metrics.IncrementCredentialsIssued(cmd.CredentialType)
	s.emit(ctx, audit.ActionCredentialIssued, cmd.CredentialID, map[string]string{
		"holder": cmd.HolderDID.String(),
		"issuer": cmd.IssuerDID.String(),
		"type":   cmd.CredentialType,
	})
	return credential, nil
}

// GetCredential returns the registry record for a credential ID.
func (s *Service) GetCredential(ctx context.Context, credentialID id.CredentialID) (*models.Credential, error) {
	credential, err := s.store.Get(ctx, credentialID)
	if err != nil {
		return nil, translate(err, credentialID)
	}
	return credential, nil
}

// IsCredentialValid computes validity for a known credential. An unknown ID
// is NotFound, distinct from a valid:false answer.
func (s *Service) IsCredentialValid(ctx context.Context, credentialID id.CredentialID) (bool, error) {
	credential, err := s.store.Get(ctx, credentialID)
	if err != nil {
		return false, translate(err, credentialID)
	}
	return credential.IsValid(requestcontext.Now(ctx)), nil
}

// UpdateCredential replaces the document, attributes, and metadata of a
// credential. Full replacement; revocation and timestamps are untouched.
func (s *Service) UpdateCredential(ctx context.Context, credentialID id.CredentialID, cmd UpdateCommand) (*models.Credential, error) {
	credential, err := s.store.Get(ctx, credentialID)
	if err != nil {
		return nil, translate(err, credentialID)
	}

	handle, err := s.docs.Put(ctx, models.Document{
		CredentialID:   credential.CredentialID.String(),
		IssuerDID:      credential.IssuerDID.String(),
		HolderDID:      credential.HolderDID.String(),
		CredentialType: credential.CredentialType,
		CredentialData: cmd.CredentialData,
		Attributes:     cmd.Attributes,
		Metadata:       cmd.Metadata,
		IssuedAt:       credential.IssuedAt,
	})
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeUnavailable, "persist credential document")
	}

	credential.DocumentHandle = handle
	credential.Attributes = cmd.Attributes
	credential.Metadata = cmd.Metadata
	if err := s.store.Update(ctx, credential); err != nil {
		return nil, translate(err, credentialID)
	}

	s.emit(ctx, audit.ActionCredentialUpdated, credentialID, nil)
	return credential, nil
}

// RevokeCredential marks a credential revoked. Irreversible and idempotent:
// revoking twice is not an error.
func (s *Service) RevokeCredential(ctx context.Context, credentialID id.CredentialID) (*models.Credential, error) {
	credential, err := s.store.Get(ctx, credentialID)
	if err != nil {
		return nil, translate(err, credentialID)
	}

	credential.Revoke()
	if err := s.store.Update(ctx, credential); err != nil {
		return nil, translate(err, credentialID)
	}

	s.metrics.IncrementCredentialsRevoked()
	s.emit(ctx, audit.ActionCredentialRevoked, credentialID, nil)
	return credential, nil
}

// GetCredentialsByHolder lists credential IDs held by a DID, oldest first.
func (s *Service) GetCredentialsByHolder(ctx context.Context, holderDID id.DID) ([]id.CredentialID, error) {
	ids, err := s.store.ListByHolder(ctx, holderDID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "list credentials by holder")
	}
	return ids, nil
}

// GetCredentialsByIssuer lists credential IDs issued by a DID, oldest first.
func (s *Service) GetCredentialsByIssuer(ctx context.Context, issuerDID id.DID) ([]id.CredentialID, error) {
	ids, err := s.store.ListByIssuer(ctx, issuerDID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "list credentials by issuer")
	}
	return ids, nil
}

func (s *Service) warnUnknownDID(ctx context.Context, did id.DID, role string) {
	if s.identity == nil {
		return
	}
	exists, err := s.identity.DoesDIDExist(ctx, did)
	if err != nil {
		s.logger.WarnContext(ctx, "could not check did reference", "error", err, "did", did, "role", role)
		return
	}
	if !exists {
		s.logger.WarnContext(ctx, "credential references unknown did",
			"did", did,
			"role", role,
			"request_id", requestcontext.RequestID(ctx),
		)
	}
}

func (s *Service) emit(ctx context.Context, action audit.Action, credentialID id.CredentialID, detail map[string]string) {
	if s.audit == nil {
		return
	}
	if err := s.audit.Emit(ctx, audit.Event{
		Subject: credentialID.String(),
		Action:  action,
		Detail:  detail,
	}); err != nil {
		s.logger.WarnContext(ctx, "failed to emit audit event", "error", err, "action", action)
	}
}

func translate(err error, credentialID id.CredentialID) error {
	switch {
	case errors.Is(err, sentinel.ErrNotFound):
		return dErrors.New(dErrors.CodeNotFound, fmt.Sprintf("credential %s not found", credentialID))
	case errors.Is(err, sentinel.ErrAlreadyExists):
		return dErrors.New(dErrors.CodeAlreadyExists, fmt.Sprintf("credential %s already exists", credentialID))
	default:
		return dErrors.Wrap(err, dErrors.CodeInternal, "credential registry")
	}
}
