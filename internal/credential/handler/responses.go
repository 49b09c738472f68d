package handler

import (
	"time"

	"veridian/internal/credential/models"
	id "veridian/pkg/domain"
)

// CredentialResponse is the wire shape of a credential record.
type CredentialResponse struct {
	CredentialID   string     `json:"credentialId"`
	IssuerDID      string     `json:"issuerDID"`
	HolderDID      string     `json:"holderDID"`
	CredentialType string     `json:"credentialType"`
	DocumentHandle string     `json:"documentHandle"`
	Attributes     []string   `json:"attributes"`
	Metadata       string     `json:"metadata"`
	IssuedAt       time.Time  `json:"issuedAt"`
	ExpiresAt      *time.Time `json:"expiresAt,omitempty"`
	IsRevoked      bool       `json:"isRevoked"`
}

func toCredentialResponse(c *models.Credential) CredentialResponse {
	out := CredentialResponse{
		CredentialID:   c.CredentialID.String(),
		IssuerDID:      c.IssuerDID.String(),
		HolderDID:      c.HolderDID.String(),
		CredentialType: c.CredentialType,
		DocumentHandle: c.DocumentHandle.String(),
		Attributes:     c.Attributes,
		Metadata:       c.Metadata,
		IssuedAt:       c.IssuedAt,
		IsRevoked:      c.IsRevoked,
	}
	if !c.ExpiresAt.IsZero() {
		expires := c.ExpiresAt
		out.ExpiresAt = &expires
	}
	return out
}

// IssueCredentialResponse acknowledges an issuance.
type IssueCredentialResponse struct {
	Success        bool   `json:"success"`
	CredentialID   string `json:"credentialId"`
	DocumentHandle string `json:"documentHandle"`
	TxHash         string `json:"txHash"`
}

// GetCredentialResponse wraps a record fetch with its computed validity.
type GetCredentialResponse struct {
	Success    bool               `json:"success"`
	Credential CredentialResponse `json:"credential"`
	IsValid    bool               `json:"isValid"`
}

// UpdateCredentialResponse acknowledges an update.
type UpdateCredentialResponse struct {
	Success        bool   `json:"success"`
	CredentialID   string `json:"credentialId"`
	DocumentHandle string `json:"documentHandle"`
	TxHash         string `json:"txHash"`
}

// RevokeCredentialResponse acknowledges a revocation.
type RevokeCredentialResponse struct {
	Success      bool   `json:"success"`
	CredentialID string `json:"credentialId"`
	IsRevoked    bool   `json:"isRevoked"`
	TxHash       string `json:"txHash"`
}

// CredentialListResponse lists credential IDs for a holder or issuer DID.
type CredentialListResponse struct {
	Success       bool     `json:"success"`
	DID           string   `json:"did"`
	CredentialIDs []string `json:"credentialIds"`
}

func toIDStrings(ids []id.CredentialID) []string {
	out := make([]string, 0, len(ids))
	for _, credentialID := range ids {
		out = append(out, credentialID.String())
	}
	return out
}

// ValidityResponse answers the verify endpoint.
type ValidityResponse struct {
	Success      bool   `json:"success"`
	CredentialID string `json:"credentialId"`
	IsValid      bool   `json:"isValid"`
}
