package store

import (
	"context"
	"fmt"
	"sync"

	"veridian/internal/verification/models"
	id "veridian/pkg/domain"
	"veridian/pkg/platform/sentinel"
)

// Memory is the default in-process store. One RWMutex covers the record map
// and the ordered sequence so submission stays atomic across both.
type Memory struct {
	mu      sync.RWMutex
	records map[id.RequestID]*models.VerificationRequest
	order   []id.RequestID
}

// NewMemory creates an empty in-memory verification store.
func NewMemory() *Memory {
	return &Memory{records: make(map[id.RequestID]*models.VerificationRequest)}
}

func (s *Memory) Create(_ context.Context, request *models.VerificationRequest) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.records[request.RequestID]; ok {
		return fmt.Errorf("request %s: %w", request.RequestID, sentinel.ErrAlreadyExists)
	}
	s.records[request.RequestID] = clone(request)
	s.order = append(s.order, request.RequestID)
	return nil
}

func (s *Memory) Get(_ context.Context, requestID id.RequestID) (*models.VerificationRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	request, ok := s.records[requestID]
	if !ok {
		return nil, fmt.Errorf("request %s: %w", requestID, sentinel.ErrNotFound)
	}
	return clone(request), nil
}

func (s *Memory) Update(_ context.Context, request *models.VerificationRequest) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.records[request.RequestID]; !ok {
		return fmt.Errorf("request %s: %w", request.RequestID, sentinel.ErrNotFound)
	}
	s.records[request.RequestID] = clone(request)
	return nil
}

func (s *Memory) Total(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.order), nil
}

func (s *Memory) AtIndex(_ context.Context, index int) (id.RequestID, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if index < 0 || index >= len(s.order) {
		return "", fmt.Errorf("index %d of %d requests: %w", index, len(s.order), sentinel.ErrOutOfRange)
	}
	return s.order[index], nil
}

func (s *Memory) List(_ context.Context, offset, limit int) ([]*models.VerificationRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if offset < 0 || offset >= len(s.order) || limit <= 0 {
		return []*models.VerificationRequest{}, nil
	}
	end := offset + limit
	if end > len(s.order) {
		end = len(s.order)
	}

	out := make([]*models.VerificationRequest, 0, end-offset)
	for _, requestID := range s.order[offset:end] {
		out = append(out, clone(s.records[requestID]))
	}
	return out, nil
}

func clone(request *models.VerificationRequest) *models.VerificationRequest {
	out := *request
	out.ProofBlob = append([]byte(nil), request.ProofBlob...)
	out.PublicInputs = append([]any(nil), request.PublicInputs...)
	return &out
}
