package handler

import (
	id "veridian/pkg/domain"
	dErrors "veridian/pkg/domain-errors"
	pstrings "veridian/pkg/platform/strings"
)

// CreateDIDRequest is the body of POST /api/identity/create.
type CreateDIDRequest struct {
	DID        string         `json:"did"`
	PublicKeys []string       `json:"publicKeys"`
	Services   []string       `json:"services"`
	Metadata   map[string]any `json:"metadata"`
}

func (r *CreateDIDRequest) Normalize() {
	r.PublicKeys = pstrings.DedupeAndTrim(r.PublicKeys)
	r.Services = pstrings.DedupeAndTrim(r.Services)
}

func (r *CreateDIDRequest) Validate() error {
	if _, err := id.ParseDID(r.DID); err != nil {
		return err
	}
	if len(r.PublicKeys) == 0 {
		return dErrors.New(dErrors.CodeInvalidInput, "at least one public key is required")
	}
	return nil
}

// UpdateDIDRequest is the body of PUT /api/identity/{did}. Full replacement:
// every field is required, omitted fields are not preserved.
type UpdateDIDRequest struct {
	PublicKeys []string       `json:"publicKeys"`
	Services   []string       `json:"services"`
	Metadata   map[string]any `json:"metadata"`
}

func (r *UpdateDIDRequest) Normalize() {
	r.PublicKeys = pstrings.DedupeAndTrim(r.PublicKeys)
	r.Services = pstrings.DedupeAndTrim(r.Services)
}

func (r *UpdateDIDRequest) Validate() error {
	if len(r.PublicKeys) == 0 {
		return dErrors.New(dErrors.CodeInvalidInput, "at least one public key is required")
	}
	return nil
}
