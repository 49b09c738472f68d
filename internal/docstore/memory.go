package docstore

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"veridian/pkg/platform/sentinel"
)

// InMemory keeps documents in a process-local map. It is the default backend
// and the one unit tests run against.
type InMemory struct {
	mu   sync.RWMutex
	docs map[Handle][]byte
}

// NewInMemory creates an in-memory document store.
func NewInMemory() *InMemory {
	return &InMemory{docs: make(map[Handle][]byte)}
}

func (s *InMemory) Put(_ context.Context, doc any) (Handle, error) {
	handle, payload, err := ComputeHandle(doc)
	if err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.docs[handle] = payload
	return handle, nil
}

func (s *InMemory) Get(_ context.Context, handle Handle) (json.RawMessage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if payload, ok := s.docs[handle]; ok {
		return payload, nil
	}
	return nil, fmt.Errorf("document %s: %w", handle, sentinel.ErrNotFound)
}

// Len reports the number of stored documents.
func (s *InMemory) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.docs)
}
