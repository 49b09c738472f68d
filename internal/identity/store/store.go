// Package store defines the identity registry's persistence contract and its
// in-memory and Postgres implementations.
package store

import (
	"context"

	"veridian/internal/identity/models"
	id "veridian/pkg/domain"
)

// Store persists DID records. Implementations return sentinel errors
// (pkg/platform/sentinel) which the service layer translates to domain errors.
//
// Create must be atomic per key: with two concurrent calls for the same DID
// or the same owner, exactly one wins and the other fails.
type Store interface {
	// Create inserts a new record. Fails with ErrAlreadyExists when the DID is
	// taken, ErrOwnerAlreadyBound when the owner already has a different DID.
	Create(ctx context.Context, record *models.DIDRecord) error
	// Get returns the record for a DID, ErrNotFound when absent.
	Get(ctx context.Context, did id.DID) (*models.DIDRecord, error)
	// Update replaces a record's mutable fields. ErrNotFound when absent.
	Update(ctx context.Context, record *models.DIDRecord) error
	// GetByOwner resolves the owner index, ErrNotFound when unbound.
	GetByOwner(ctx context.Context, owner id.Principal) (*models.DIDRecord, error)
	// Exists reports whether a DID is registered. Total: never fails on absence.
	Exists(ctx context.Context, did id.DID) (bool, error)
}
