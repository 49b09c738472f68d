package sentinel

import "errors"

// Sentinel errors for infrastructure facts. Stores and infrastructure layers return
// these (optionally wrapped) so services can translate them into domain errors.
//
// These represent factual states about resources, not validation failures:
// - ErrNotFound: entity does not exist in store
// - ErrAlreadyExists: primary key already taken
// - ErrUnavailable: collaborator or resource temporarily unavailable
//
// For validation errors (bad input, missing fields), use pkg/domain-errors directly.
var (
	ErrNotFound      = errors.New("not found")
	ErrAlreadyExists = errors.New("already exists")
	ErrUnavailable   = errors.New("unavailable")
	// ErrOwnerAlreadyBound: the owner index already maps this principal to a DID.
	ErrOwnerAlreadyBound = errors.New("owner already bound")
	// ErrOutOfRange: a sequence index is past the end.
	ErrOutOfRange = errors.New("out of range")
)
