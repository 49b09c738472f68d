// Package models holds the identity registry's domain records.
package models

import (
	"time"

	"veridian/internal/docstore"
	id "veridian/pkg/domain"
)

// DIDRecord is the registry entry for one decentralized identifier. DID and
// Owner are immutable after creation; the document handle is replaced on every
// update.
type DIDRecord struct {
	DID            id.DID
	Owner          id.Principal
	DocumentHandle docstore.Handle
	PublicKeys     []string
	Services       []string
	IsActive       bool
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Deactivate marks the record inactive. Repeat calls are no-ops, matching the
// registry's unconditional-write semantics.
func (r *DIDRecord) Deactivate(now time.Time) {
	if !r.IsActive {
		return
	}
	r.IsActive = false
	r.UpdatedAt = now
}

// Reactivate marks the record active again. Repeat calls are no-ops.
func (r *DIDRecord) Reactivate(now time.Time) {
	if r.IsActive {
		return
	}
	r.IsActive = true
	r.UpdatedAt = now
}

// Document is the serialized DID document persisted in the document store.
// The registry record keeps only the returned handle.
type Document struct {
	ID         string         `json:"id"`
	Owner      string         `json:"owner"`
	PublicKeys []string       `json:"publicKeys"`
	Services   []string       `json:"services"`
	Metadata   map[string]any `json:"metadata,omitempty"`
	UpdatedAt  time.Time      `json:"updatedAt"`
}
