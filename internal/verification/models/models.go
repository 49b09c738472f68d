// Package models holds the verification ledger's domain records.
package models

import (
	"encoding/json"
	"time"

	id "veridian/pkg/domain"
)

// Status is the verification request state. The machine is one-way:
// Pending -> Verified, terminal. There is no rejected state; an invalid proof
// leaves the request pending with a failure note in the result field.
type Status string

const (
	StatusPending  Status = "pending"
	StatusVerified Status = "verified"
)

// VerificationRequest is one ledger entry. Once verified it is immutable.
type VerificationRequest struct {
	RequestID    id.RequestID
	CredentialID id.CredentialID
	VerifierDID  id.DID
	CircuitType  string
	ProofBlob    json.RawMessage
	PublicInputs []any
	Status       Status
	RequestedAt  time.Time
	// VerifiedAt is zero while pending.
	VerifiedAt         time.Time
	VerificationResult string
}

// MarkVerified transitions the request to its terminal state.
func (r *VerificationRequest) MarkVerified(now time.Time, result string) {
	r.Status = StatusVerified
	r.VerifiedAt = now
	r.VerificationResult = result
}

// IsResolved reports whether the request reached the terminal state.
func (r *VerificationRequest) IsResolved() bool {
	return r.Status == StatusVerified
}
