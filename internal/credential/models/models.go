// Package models holds the credential registry's domain records.
package models

import (
	"time"

	"veridian/internal/docstore"
	id "veridian/pkg/domain"
)

// Credential is the registry entry for one issued credential. Holder and
// issuer DIDs are weak references: the identity registry is never consulted
// to enforce them.
type Credential struct {
	CredentialID   id.CredentialID
	IssuerDID      id.DID
	HolderDID      id.DID
	CredentialType string
	DocumentHandle docstore.Handle
	Attributes     []string
	Metadata       string
	IssuedAt       time.Time
	// ExpiresAt zero means the credential never expires.
	ExpiresAt time.Time
	IsRevoked bool
}

// IsValid reports whether the credential is usable at the given instant:
// not revoked and not expired.
func (c *Credential) IsValid(now time.Time) bool {
	if c.IsRevoked {
		return false
	}
	if c.ExpiresAt.IsZero() {
		return true
	}
	return now.Before(c.ExpiresAt)
}

// Revoke marks the credential revoked. Irreversible; repeat calls are no-ops.
func (c *Credential) Revoke() {
	c.IsRevoked = true
}

// Document is the serialized credential document kept in the document store.
type Document struct {
	CredentialID   string         `json:"credentialId"`
	IssuerDID      string         `json:"issuerDID"`
	HolderDID      string         `json:"holderDID"`
	CredentialType string         `json:"credentialType"`
	CredentialData map[string]any `json:"credentialData,omitempty"`
	Attributes     []string       `json:"attributes,omitempty"`
	Metadata       string         `json:"metadata,omitempty"`
	IssuedAt       time.Time      `json:"issuedAt"`
}
