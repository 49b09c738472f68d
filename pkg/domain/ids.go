// Package domain provides type-safe identifiers to prevent mixing up IDs at compile time.
package domain

import (
	"encoding/hex"
	"strings"

	"github.com/google/uuid"

	dErrors "veridian/pkg/domain-errors"
)

// Distinct ID types - the compiler prevents passing a CredentialID where a DID
// is expected. Registry cross-references are weak (no foreign keys), so these
// stay string-backed.
type (
	// DID is a decentralized identifier, e.g. "did:example:alice".
	DID string
	// CredentialID names a credential, caller-supplied at issuance.
	CredentialID string
	// RequestID names a verification request, caller-supplied or generated.
	RequestID string
	// Principal identifies a caller (a wallet address or similar opaque handle).
	Principal string
)

// MinDIDLength matches the boundary validation the API applies to DIDs.
const MinDIDLength = 8

// Parse functions - use at trust boundaries (handlers, API inputs).

// ParseDID validates the "did:<method>:<id>" shape without resolving anything.
func ParseDID(s string) (DID, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", dErrors.New(dErrors.CodeInvalidInput, "did cannot be empty")
	}
	if len(s) < MinDIDLength {
		return "", dErrors.New(dErrors.CodeInvalidInput, "did is too short")
	}
	parts := strings.SplitN(s, ":", 3)
	if len(parts) != 3 || parts[0] != "did" || parts[1] == "" || parts[2] == "" {
		return "", dErrors.New(dErrors.CodeInvalidInput, "did must have the form did:<method>:<id>")
	}
	return DID(s), nil
}

func ParseCredentialID(s string) (CredentialID, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", dErrors.New(dErrors.CodeInvalidInput, "credential ID cannot be empty")
	}
	return CredentialID(s), nil
}

func ParseRequestID(s string) (RequestID, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", dErrors.New(dErrors.CodeInvalidInput, "request ID cannot be empty")
	}
	return RequestID(s), nil
}

func ParsePrincipal(s string) (Principal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", dErrors.New(dErrors.CodeInvalidInput, "principal cannot be empty")
	}
	return Principal(s), nil
}

// NewRequestID generates a fresh request ID for callers that don't supply one.
func NewRequestID() RequestID {
	return RequestID(uuid.New().String())
}

// NewTxHash generates an opaque 32-byte pseudo transaction hash. Registry
// writes are acknowledged with one for API compatibility with chain-backed
// deployments.
func NewTxHash() string {
	a := uuid.New()
	b := uuid.New()
	return "0x" + hex.EncodeToString(append(a[:], b[:]...))
}

// String methods - for logging and debugging.

func (d DID) String() string          { return string(d) }
func (c CredentialID) String() string { return string(c) }
func (r RequestID) String() string    { return string(r) }
func (p Principal) String() string    { return string(p) }

// IsNil checks - used for service-layer validation.

func (d DID) IsNil() bool          { return d == "" }
func (c CredentialID) IsNil() bool { return c == "" }
func (r RequestID) IsNil() bool    { return r == "" }
func (p Principal) IsNil() bool    { return p == "" }
