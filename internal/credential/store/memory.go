package store

import (
	"context"
	"fmt"
	"sync"

	"veridian/internal/credential/models"
	id "veridian/pkg/domain"
	"veridian/pkg/platform/sentinel"
)

// Memory is the default in-process store. One RWMutex covers the record map
// and both indices so issuance stays atomic across all three.
type Memory struct {
	mu       sync.RWMutex
	records  map[id.CredentialID]*models.Credential
	byHolder map[id.DID][]id.CredentialID
	byIssuer map[id.DID][]id.CredentialID
}

// NewMemory creates an empty in-memory credential store.
func NewMemory() *Memory {
	return &Memory{
		records:  make(map[id.CredentialID]*models.Credential),
		byHolder: make(map[id.DID][]id.CredentialID),
		byIssuer: make(map[id.DID][]id.CredentialID),
	}
}

func (s *Memory) Create(_ context.Context, credential *models.Credential) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.records[credential.CredentialID]; ok {
		return fmt.Errorf("credential %s: %w", credential.CredentialID, sentinel.ErrAlreadyExists)
	}

	s.records[credential.CredentialID] = clone(credential)
	// Index entries are created lazily on first issuance for a DID.
	s.byHolder[credential.HolderDID] = append(s.byHolder[credential.HolderDID], credential.CredentialID)
	s.byIssuer[credential.IssuerDID] = append(s.byIssuer[credential.IssuerDID], credential.CredentialID)
	return nil
}

func (s *Memory) Get(_ context.Context, credentialID id.CredentialID) (*models.Credential, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	credential, ok := s.records[credentialID]
	if !ok {
		return nil, fmt.Errorf("credential %s: %w", credentialID, sentinel.ErrNotFound)
	}
	return clone(credential), nil
}

func (s *Memory) Update(_ context.Context, credential *models.Credential) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.records[credential.CredentialID]; !ok {
		return fmt.Errorf("credential %s: %w", credential.CredentialID, sentinel.ErrNotFound)
	}
	s.records[credential.CredentialID] = clone(credential)
	return nil
}

func (s *Memory) ListByHolder(_ context.Context, holderDID id.DID) ([]id.CredentialID, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]id.CredentialID(nil), s.byHolder[holderDID]...), nil
}

func (s *Memory) ListByIssuer(_ context.Context, issuerDID id.DID) ([]id.CredentialID, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]id.CredentialID(nil), s.byIssuer[issuerDID]...), nil
}

func clone(credential *models.Credential) *models.Credential {
	out := *credential
	out.Attributes = append([]string(nil), credential.Attributes...)
	return &out
}
