// Package domainerrors defines the coded error type shared by services and
// transport. Services return coded errors; the HTTP layer translates codes
// to statuses without inspecting messages. Infrastructure layers return
// sentinel errors instead (pkg/platform/sentinel) and services translate.
package domainerrors

import (
	"errors"
	"fmt"
	"net/http"
)

// Code classifies a failure for callers and for HTTP translation.
type Code string

const (
	// Registrar operation codes.
	CodeInvalidInput      Code = "invalid_input"      // empty or malformed domain string
	CodeAlreadyExists     Code = "already_exists"     // domain already active
	CodeNotEligible       Code = "not_eligible"       // balance below the eligibility threshold
	CodeAlreadyRegistered Code = "already_registered" // identity holds a domain, or faucet already used
	CodeUnauthorized      Code = "unauthorized"       // caller is not the stated owner
	CodeNotRegistered     Code = "not_registered"     // referenced identity has no active domain
	CodeZeroIdentity      Code = "zero_identity"      // owner argument is the null identity
	CodeCollaborator      Code = "collaborator_failure"

	// Ambient codes.
	CodeBadRequest      Code = "bad_request"
	CodeUnauthenticated Code = "unauthenticated"
	CodeNotFound        Code = "not_found"
	CodeInternal        Code = "internal"
)

// Error is the coded error carried across service boundaries.
type Error struct {
	Code    Code
	Message string
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.cause }

// New creates a coded error with no underlying cause.
func New(code Code, message string) error {
	return &Error{Code: code, Message: message}
}

// Wrap attaches a code and message to an underlying error.
func Wrap(err error, code Code, message string) error {
	return &Error{Code: code, Message: message, cause: err}
}

// HasCode reports whether err (or anything it wraps) carries the given code.
func HasCode(err error, code Code) bool {
	var coded *Error
	if errors.As(err, &coded) {
		return coded.Code == code
	}
	return false
}

// CodeOf extracts the code from err, defaulting to CodeInternal for
// unclassified errors so transport never leaks raw failures.
func CodeOf(err error) Code {
	var coded *Error
	if errors.As(err, &coded) {
		return coded.Code
	}
	return CodeInternal
}

// ToHTTPStatus maps an error code to its HTTP response status.
func ToHTTPStatus(code Code) int {
	switch code {
	case CodeInvalidInput, CodeZeroIdentity, CodeBadRequest:
		return http.StatusBadRequest
	case CodeUnauthenticated:
		return http.StatusUnauthorized
	case CodeUnauthorized, CodeNotEligible:
		return http.StatusForbidden
	case CodeNotFound, CodeNotRegistered:
		return http.StatusNotFound
	case CodeAlreadyExists, CodeAlreadyRegistered:
		return http.StatusConflict
	case CodeCollaborator:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
