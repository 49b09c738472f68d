package domainerrors

import "errors"

// Code represents a domain error category independent of transport layer.
// These codes describe what went wrong in registry terms, not HTTP terms.
type Code string

const (
	// CodeNotFound: the identifier does not resolve to a record.
	CodeNotFound Code = "not_found"
	// CodeAlreadyExists: a record with the same primary key already exists.
	CodeAlreadyExists Code = "already_exists"
	// CodeOwnerAlreadyBound: the principal already owns a different DID.
	CodeOwnerAlreadyBound Code = "owner_already_bound"
	// CodeForbidden: the caller is not the owner of the record it mutates.
	CodeForbidden Code = "forbidden"
	// CodeInvalidInput: a required field is missing or malformed.
	CodeInvalidInput Code = "invalid_input"
	// CodeUnavailable: a collaborator (document store, proof service) failed.
	CodeUnavailable Code = "unavailable"
	// CodeOutOfRange: a pagination index is past the end of the sequence.
	CodeOutOfRange Code = "out_of_range"
	// CodeInternal: everything the other codes don't cover.
	CodeInternal Code = "internal_error"
)

// Error wraps domain or infrastructure failures with a stable code.
// It is transport-agnostic and can be used across service, store, and other layers.
type Error struct {
	Code    Code
	Message string
	Err     error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return string(e.Code)
}

// Unwrap implements error unwrapping for error chains.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is enables errors.Is() to match errors by code.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// New creates a new domain error with the given code and message.
func New(code Code, msg string) error {
	return &Error{Code: code, Message: msg}
}

// Wrap creates a new domain error wrapping an existing error.
// If the wrapped error is already a domain error, the original code is preserved.
func Wrap(err error, code Code, msg string) error {
	var existing *Error
	if errors.As(err, &existing) {
		return &Error{Code: existing.Code, Message: msg, Err: err}
	}
	return &Error{Code: code, Message: msg, Err: err}
}

// HasCode checks if an error is a domain error with the given code.
func HasCode(err error, code Code) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}
