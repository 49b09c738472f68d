// Package audit captures the registry's append-only action trail. Services
// emit events through a Publisher; sinks (memory, postgres, kafka) persist or
// forward them.
package audit

import (
	"context"
	"time"

	"veridian/pkg/domain"
)

// Event records one registry action. Subject is the primary identifier the
// action touched (a DID, credential ID, or request ID as a string).
type Event struct {
	Timestamp time.Time         `json:"timestamp"`
	Actor     domain.Principal  `json:"actor,omitempty"`
	Subject   string            `json:"subject"`
	Action    Action            `json:"action"`
	RequestID string            `json:"requestId,omitempty"`
	Detail    map[string]string `json:"detail,omitempty"`
}

// Action names one kind of registry mutation.
type Action string

const (
	ActionDIDCreated            Action = "did_created"
	ActionDIDUpdated            Action = "did_updated"
	ActionDIDDeactivated        Action = "did_deactivated"
	ActionDIDReactivated        Action = "did_reactivated"
	ActionCredentialIssued      Action = "credential_issued"
	ActionCredentialUpdated     Action = "credential_updated"
	ActionCredentialRevoked     Action = "credential_revoked"
	ActionVerificationSubmitted Action = "verification_submitted"
	ActionVerificationResolved  Action = "verification_resolved"
)

// Store is an append-only event sink.
type Store interface {
	Append(ctx context.Context, event Event) error
	// ListBySubject returns the trail for one identifier, oldest first.
	ListBySubject(ctx context.Context, subject string) ([]Event, error)
}
