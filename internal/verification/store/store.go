// Package store defines the verification ledger's persistence contract and
// its in-memory and Postgres implementations.
package store

import (
	"context"

	"veridian/internal/verification/models"
	id "veridian/pkg/domain"
)

// Store persists verification requests and the global submission sequence.
// Implementations return sentinel errors which the service layer translates.
//
// Create must be atomic per request ID and must append to the sequence in the
// same step, so pagination observes submission order.
type Store interface {
	// Create inserts a new request. ErrAlreadyExists when the ID is taken.
	Create(ctx context.Context, request *models.VerificationRequest) error
	// Get returns the request for an ID, ErrNotFound when absent.
	Get(ctx context.Context, requestID id.RequestID) (*models.VerificationRequest, error)
	// Update replaces a request's resolution fields. ErrNotFound when absent.
	Update(ctx context.Context, request *models.VerificationRequest) error
	// Total returns the number of submitted requests.
	Total(ctx context.Context) (int, error)
	// AtIndex returns the request ID at a zero-based sequence position.
	// ErrOutOfRange when index >= Total.
	AtIndex(ctx context.Context, index int) (id.RequestID, error)
	// List returns a window of requests in submission order.
	List(ctx context.Context, offset, limit int) ([]*models.VerificationRequest, error)
}
