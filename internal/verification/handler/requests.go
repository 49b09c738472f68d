package handler

import (
	"encoding/json"
	"strings"

	dErrors "veridian/pkg/domain-errors"
)

// SubmitRequest is the body of POST /api/verification/request.
type SubmitRequest struct {
	RequestID    string          `json:"requestId"`
	CredentialID string          `json:"credentialId"`
	CircuitType  string          `json:"circuitType"`
	ProofData    json.RawMessage `json:"proofData"`
	PublicInputs []any           `json:"publicInputs"`
	VerifierDID  string          `json:"verifierDID"`
}

func (r *SubmitRequest) Normalize() {
	r.RequestID = strings.TrimSpace(r.RequestID)
	r.CredentialID = strings.TrimSpace(r.CredentialID)
	r.CircuitType = strings.TrimSpace(r.CircuitType)
	r.VerifierDID = strings.TrimSpace(r.VerifierDID)
}

func (r *SubmitRequest) Validate() error {
	if r.CredentialID == "" || r.CircuitType == "" {
		return dErrors.New(dErrors.CodeInvalidInput, "credentialId and circuitType are required")
	}
	if len(r.ProofData) == 0 || len(r.PublicInputs) == 0 {
		return dErrors.New(dErrors.CodeInvalidInput, "proofData and publicInputs are required")
	}
	return nil
}

// GenerateProofRequest is the body of POST /api/verification/generate-proof.
type GenerateProofRequest struct {
	CredentialType     string         `json:"credentialType"`
	CredentialData     map[string]any `json:"credentialData"`
	VerificationParams map[string]any `json:"verificationParams"`
}

func (r *GenerateProofRequest) Validate() error {
	if r.CredentialType == "" || r.CredentialData == nil || r.VerificationParams == nil {
		return dErrors.New(dErrors.CodeInvalidInput, "credentialType, credentialData and verificationParams are required")
	}
	return nil
}

// AgeProofRequest is the body of POST /api/verification/age.
type AgeProofRequest struct {
	Age    *int `json:"age"`
	MinAge *int `json:"minAge"`
}

func (r *AgeProofRequest) Validate() error {
	if r.Age == nil || r.MinAge == nil {
		return dErrors.New(dErrors.CodeInvalidInput, "age and minAge are required")
	}
	return nil
}

// OwnershipProofRequest is the body of POST /api/verification/credential-ownership.
type OwnershipProofRequest struct {
	CredentialHash  string `json:"credentialHash"`
	HolderPublicKey string `json:"holderPublicKey"`
	ExpectedHash    string `json:"expectedHash"`
}

func (r *OwnershipProofRequest) Validate() error {
	if r.CredentialHash == "" || r.HolderPublicKey == "" || r.ExpectedHash == "" {
		return dErrors.New(dErrors.CodeInvalidInput, "credentialHash, holderPublicKey and expectedHash are required")
	}
	return nil
}

// DisclosureProofRequest is the body of POST /api/verification/selective-disclosure.
type DisclosureProofRequest struct {
	CredentialAttributes []any    `json:"credentialAttributes"`
	AttributeIndex       *int     `json:"attributeIndex"`
	ExpectedValue        any      `json:"expectedValue"`
	Threshold            *float64 `json:"threshold"`
}

func (r *DisclosureProofRequest) Validate() error {
	if len(r.CredentialAttributes) == 0 || r.AttributeIndex == nil || r.ExpectedValue == nil || r.Threshold == nil {
		return dErrors.New(dErrors.CodeInvalidInput, "credentialAttributes, attributeIndex, expectedValue and threshold are required")
	}
	return nil
}

// VerifyProofRequest is the body of POST /api/verification/verify-proof.
type VerifyProofRequest struct {
	Proof        json.RawMessage `json:"proof"`
	PublicInputs []any           `json:"publicInputs"`
}

func (r *VerifyProofRequest) Validate() error {
	if len(r.Proof) == 0 || len(r.PublicInputs) == 0 {
		return dErrors.New(dErrors.CodeInvalidInput, "proof and publicInputs are required")
	}
	return nil
}
