package handler

import (
	"strings"
	"time"

	id "veridian/pkg/domain"
	dErrors "veridian/pkg/domain-errors"
	pstrings "veridian/pkg/platform/strings"
)

// IssueCredentialRequest is the body of POST /api/credentials/issue.
// ExpiresAt zero or omitted means the credential never expires.
type IssueCredentialRequest struct {
	CredentialID   string         `json:"credentialId"`
	HolderDID      string         `json:"holderDID"`
	CredentialType string         `json:"credentialType"`
	CredentialData map[string]any `json:"credentialData"`
	ExpiresAt      *time.Time     `json:"expiresAt"`
	Attributes     []string       `json:"attributes"`
	Metadata       string         `json:"metadata"`
	IssuerDID      string         `json:"issuerDID"`
}

func (r *IssueCredentialRequest) Normalize() {
	r.CredentialID = strings.TrimSpace(r.CredentialID)
	r.HolderDID = strings.TrimSpace(r.HolderDID)
	r.IssuerDID = strings.TrimSpace(r.IssuerDID)
	r.CredentialType = strings.TrimSpace(r.CredentialType)
	r.Attributes = pstrings.DedupeAndTrim(r.Attributes)
}

func (r *IssueCredentialRequest) Validate() error {
	if _, err := id.ParseCredentialID(r.CredentialID); err != nil {
		return err
	}
	if _, err := id.ParseDID(r.HolderDID); err != nil {
		return dErrors.New(dErrors.CodeInvalidInput, "holderDID must have the form did:<method>:<id>")
	}
	if r.IssuerDID != "" {
		if _, err := id.ParseDID(r.IssuerDID); err != nil {
			return dErrors.New(dErrors.CodeInvalidInput, "issuerDID must have the form did:<method>:<id>")
		}
	}
	if r.CredentialType == "" {
		return dErrors.New(dErrors.CodeInvalidInput, "credentialType is required")
	}
	return nil
}

func (r *IssueCredentialRequest) expiresAt() time.Time {
	if r.ExpiresAt == nil {
		return time.Time{}
	}
	return *r.ExpiresAt
}

// UpdateCredentialRequest is the body of PUT /api/credentials/{id}. Full
// replacement: omitted fields are cleared, not preserved.
type UpdateCredentialRequest struct {
	CredentialData map[string]any `json:"credentialData"`
	Attributes     []string       `json:"attributes"`
	Metadata       string         `json:"metadata"`
}

func (r *UpdateCredentialRequest) Normalize() {
	r.Attributes = pstrings.DedupeAndTrim(r.Attributes)
}
