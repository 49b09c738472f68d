package handler

import (
	"time"

	"veridian/internal/identity/models"
)

// DIDResponse is the wire shape of a DID record.
type DIDResponse struct {
	DID            string    `json:"did"`
	Owner          string    `json:"owner"`
	DocumentHandle string    `json:"documentHandle"`
	PublicKeys     []string  `json:"publicKeys"`
	Services       []string  `json:"services"`
	IsActive       bool      `json:"isActive"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

func toDIDResponse(record *models.DIDRecord) DIDResponse {
	return DIDResponse{
		DID:            record.DID.String(),
		Owner:          record.Owner.String(),
		DocumentHandle: record.DocumentHandle.String(),
		PublicKeys:     record.PublicKeys,
		Services:       record.Services,
		IsActive:       record.IsActive,
		CreatedAt:      record.CreatedAt,
		UpdatedAt:      record.UpdatedAt,
	}
}

// CreateDIDResponse acknowledges a registration.
type CreateDIDResponse struct {
	Success        bool   `json:"success"`
	DID            string `json:"did"`
	DocumentHandle string `json:"documentHandle"`
	TxHash         string `json:"txHash"`
}

// UpdateDIDResponse acknowledges an update.
type UpdateDIDResponse struct {
	Success        bool   `json:"success"`
	DID            string `json:"did"`
	DocumentHandle string `json:"documentHandle"`
	TxHash         string `json:"txHash"`
}

// GetDIDResponse wraps a record fetch.
type GetDIDResponse struct {
	Success bool        `json:"success"`
	DID     DIDResponse `json:"didDocument"`
}

// StatusResponse acknowledges a deactivate/reactivate call.
type StatusResponse struct {
	Success  bool   `json:"success"`
	DID      string `json:"did"`
	IsActive bool   `json:"isActive"`
	TxHash   string `json:"txHash"`
}

// OwnerResponse resolves a principal to its DID.
type OwnerResponse struct {
	Success bool   `json:"success"`
	Owner   string `json:"owner"`
	DID     string `json:"did"`
}
