package store

import (
	"context"
	"fmt"
	"sync"

	"veridian/internal/identity/models"
	id "veridian/pkg/domain"
	"veridian/pkg/platform/sentinel"
)

// Memory is the default in-process store. A single RWMutex covers the record
// map and the owner index so Create stays atomic across both.
type Memory struct {
	mu      sync.RWMutex
	records map[id.DID]*models.DIDRecord
	byOwner map[id.Principal]id.DID
}

// NewMemory creates an empty in-memory identity store.
func NewMemory() *Memory {
	return &Memory{
		records: make(map[id.DID]*models.DIDRecord),
		byOwner: make(map[id.Principal]id.DID),
	}
}

func (s *Memory) Create(_ context.Context, record *models.DIDRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.records[record.DID]; ok {
		return fmt.Errorf("did %s: %w", record.DID, sentinel.ErrAlreadyExists)
	}
	if existing, ok := s.byOwner[record.Owner]; ok && existing != record.DID {
		return fmt.Errorf("owner %s already owns %s: %w", record.Owner, existing, sentinel.ErrOwnerAlreadyBound)
	}

	s.records[record.DID] = clone(record)
	s.byOwner[record.Owner] = record.DID
	return nil
}

func (s *Memory) Get(_ context.Context, did id.DID) (*models.DIDRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	record, ok := s.records[did]
	if !ok {
		return nil, fmt.Errorf("did %s: %w", did, sentinel.ErrNotFound)
	}
	return clone(record), nil
}

func (s *Memory) Update(_ context.Context, record *models.DIDRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.records[record.DID]; !ok {
		return fmt.Errorf("did %s: %w", record.DID, sentinel.ErrNotFound)
	}
	s.records[record.DID] = clone(record)
	return nil
}

func (s *Memory) GetByOwner(_ context.Context, owner id.Principal) (*models.DIDRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	did, ok := s.byOwner[owner]
	if !ok {
		return nil, fmt.Errorf("owner %s: %w", owner, sentinel.ErrNotFound)
	}
	record, ok := s.records[did]
	if !ok {
		return nil, fmt.Errorf("did %s: %w", did, sentinel.ErrNotFound)
	}
	return clone(record), nil
}

func (s *Memory) Exists(_ context.Context, did id.DID) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.records[did]
	return ok, nil
}

// clone copies the record and its slices so callers never share backing
// arrays with stored state.
func clone(record *models.DIDRecord) *models.DIDRecord {
	out := *record
	out.PublicKeys = append([]string(nil), record.PublicKeys...)
	out.Services = append([]string(nil), record.Services...)
	return &out
}
