// Package apperrors classifies engine failures so handlers can map them to
// HTTP status codes without string matching.
package apperrors

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind is the failure category of an Error.
type Kind string

const (
	// Validation is malformed or missing input; nothing was mutated.
	Validation Kind = "VALIDATION"
	// Auth is a missing or expired session.
	Auth Kind = "AUTH"
	// Forbidden is an authenticated caller without the required role.
	Forbidden Kind = "FORBIDDEN"
	// NotFound is a missing target entity.
	NotFound Kind = "NOT_FOUND"
	// Conflict is a state rule rejection: cooldown active, duplicate
	// action, claim already processed, insufficient points or stock.
	Conflict Kind = "CONFLICT"
	// ExternalCapability is an unreachable or misconfigured external
	// verification service, distinct from a user-verdict rejection.
	ExternalCapability Kind = "EXTERNAL_CAPABILITY"
	// Internal is a storage or invariant failure; the transaction rolled back.
	Internal Kind = "INTERNAL"
)

// Error carries a kind, a caller-facing message and an optional cause.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New builds an Error with a formatted message.
func New(kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap attaches a cause to a kind and message.
func Wrap(kind Kind, err error, message string) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// KindOf extracts the Kind from err, defaulting to Internal.
func KindOf(err error) Kind {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Kind
	}
	return Internal
}

// Is reports whether err carries the given kind.
func Is(err error, kind Kind) bool {
	return KindOf(err) == kind
}

// UserMessage returns the caller-facing message for err. Internal causes
// are not leaked.
func UserMessage(err error) string {
	var ae *Error
	if errors.As(err, &ae) && ae.Kind != Internal {
		return ae.Message
	}
	return "Internal server error"
}

// HTTPStatus maps a failure kind to its response status code.
func HTTPStatus(err error) int {
	switch KindOf(err) {
	case Validation:
		return http.StatusBadRequest
	case Auth:
		return http.StatusUnauthorized
	case Forbidden:
		return http.StatusForbidden
	case NotFound:
		return http.StatusNotFound
	case Conflict:
		return http.StatusConflict
	case ExternalCapability:
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}
