package handler

import (
	"encoding/json"
	"time"

	"veridian/internal/proof"
	"veridian/internal/verification/models"
	"veridian/internal/verification/service"
)

// SubmitResponse confirms a ledger append. The request starts pending.
type SubmitResponse struct {
	Success      bool   `json:"success"`
	RequestID    string `json:"requestId"`
	CredentialID string `json:"credentialId"`
	CircuitType  string `json:"circuitType"`
	TxHash       string `json:"txHash"`
	Status       string `json:"status"`
}

// RequestResponse is the wire form of one ledger entry.
type RequestResponse struct {
	RequestID          string          `json:"requestId"`
	CredentialID       string          `json:"credentialId"`
	VerifierDID        string          `json:"verifierDID"`
	CircuitType        string          `json:"circuitType"`
	ProofBlob          json.RawMessage `json:"proofData"`
	PublicInputs       []any           `json:"publicInputs"`
	Status             string          `json:"status"`
	RequestedAt        time.Time       `json:"requestedAt"`
	VerifiedAt         *time.Time      `json:"verifiedAt,omitempty"`
	VerificationResult string          `json:"verificationResult,omitempty"`
}

// GetRequestResponse wraps a single ledger lookup.
type GetRequestResponse struct {
	Success             bool            `json:"success"`
	VerificationRequest RequestResponse `json:"verificationRequest"`
}

// Pagination describes one window of the ledger listing.
type Pagination struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
	Total int `json:"total"`
	Pages int `json:"pages"`
}

// ListResponse is one page of the ledger in submission order.
type ListResponse struct {
	Success    bool              `json:"success"`
	Requests   []RequestResponse `json:"requests"`
	Pagination Pagination        `json:"pagination"`
}

// StatsResponse reports ledger and proof-cache counters.
type StatsResponse struct {
	Success bool  `json:"success"`
	Stats   Stats `json:"stats"`
}

type Stats struct {
	TotalVerificationRequests int `json:"totalVerificationRequests"`
	ProofCacheSize            int `json:"zkpCacheSize"`
}

// ProofResponse carries a freshly generated proof blob.
type ProofResponse struct {
	Success          bool       `json:"success"`
	Proof            proof.Blob `json:"proof"`
	VerificationType string     `json:"verificationType,omitempty"`
	CredentialType   string     `json:"credentialType,omitempty"`
	GeneratedAt      time.Time  `json:"generatedAt"`
}

// VerifyProofResponse is the standalone proof-check result.
type VerifyProofResponse struct {
	Success    bool      `json:"success"`
	IsValid    bool      `json:"isValid"`
	VerifiedAt time.Time `json:"verifiedAt"`
}

func toRequestResponse(request *models.VerificationRequest) RequestResponse {
	resp := RequestResponse{
		RequestID:          request.RequestID.String(),
		CredentialID:       request.CredentialID.String(),
		VerifierDID:        request.VerifierDID.String(),
		CircuitType:        request.CircuitType,
		ProofBlob:          request.ProofBlob,
		PublicInputs:       request.PublicInputs,
		Status:             string(request.Status),
		RequestedAt:        request.RequestedAt,
		VerificationResult: request.VerificationResult,
	}
	if !request.VerifiedAt.IsZero() {
		verifiedAt := request.VerifiedAt
		resp.VerifiedAt = &verifiedAt
	}
	return resp
}

func toListResponse(page *service.Page) ListResponse {
	requests := make([]RequestResponse, 0, len(page.Requests))
	for _, request := range page.Requests {
		requests = append(requests, toRequestResponse(request))
	}
	return ListResponse{
		Success:  true,
		Requests: requests,
		Pagination: Pagination{
			Page:  page.Page,
			Limit: page.Limit,
			Total: page.Total,
			Pages: page.Pages,
		},
	}
}
