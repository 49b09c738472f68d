// Package store defines the credential registry's persistence contract and
// its in-memory and Postgres implementations.
package store

import (
	"context"

	"veridian/internal/credential/models"
	id "veridian/pkg/domain"
)

// Store persists credentials and the holder/issuer indices. Implementations
// return sentinel errors which the service layer translates.
//
// Create must be atomic per credential ID: two concurrent issuances with the
// same ID have exactly one winner. The holder and issuer indices are
// append-only and written in the same atomic step as the record.
type Store interface {
	// Create inserts a new credential. ErrAlreadyExists when the ID is taken.
	Create(ctx context.Context, credential *models.Credential) error
	// Get returns the credential for an ID, ErrNotFound when absent.
	Get(ctx context.Context, credentialID id.CredentialID) (*models.Credential, error)
	// Update replaces a credential's mutable fields. ErrNotFound when absent.
	Update(ctx context.Context, credential *models.Credential) error
	// ListByHolder returns credential IDs issued to a holder DID, in issuance
	// order. Empty slice, not an error, when the DID has none.
	ListByHolder(ctx context.Context, holderDID id.DID) ([]id.CredentialID, error)
	// ListByIssuer returns credential IDs issued by an issuer DID, in issuance
	// order. Empty slice when the DID has none.
	ListByIssuer(ctx context.Context, issuerDID id.DID) ([]id.CredentialID, error)
}
