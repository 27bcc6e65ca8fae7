// Package domainerrors provides coded errors for business-rule failures.
//
// Services construct these at the point where a rule is broken; transport
// layers translate the code into an HTTP status and a stable JSON error code.
// Infrastructure facts (record missing, store down) use pkg/platform/sentinel
// instead and are wrapped into a coded error at the service boundary.
package domainerrors

import (
	"errors"
	"fmt"
	"net/http"
)

// Code identifies a class of business failure. Codes are part of the API
// contract: clients branch on them, so values are stable strings.
type Code string

const (
	// Generic codes.
	CodeInvalidInput Code = "invalid_input"
	CodeBadRequest   Code = "bad_request"
	CodeNotFound     Code = "not_found"
	CodeConflict     Code = "conflict"
	CodeUnavailable  Code = "unavailable"
	CodeInternal     Code = "internal"

	// Registration validation codes. These are terminal for the current
	// attempt and surfaced inline per field; the user corrects and retries.
	CodeInvalidFormat     Code = "invalid_format"
	CodeDuplicate         Code = "duplicate"
	CodeSelfReference     Code = "self_reference"
	CodeNoAccount         Code = "no_account"
	CodeAlreadyRegistered Code = "already_registered"
	CodePrerequisite      Code = "prerequisite"

	// CodeNetwork marks a transient transport failure. Unlike the validation
	// codes it must never be read as a verdict on the submitted value; the
	// same call can simply be retried.
	CodeNetwork Code = "network"
)

// Error is a coded domain error, optionally wrapping a cause.
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

// New builds a coded error with no underlying cause.
func New(code Code, message string) error {
	return &Error{Code: code, Message: message}
}

// Newf builds a coded error with a formatted message.
func Newf(code Code, format string, args ...any) error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap attaches a code and message to an underlying error. A nil err returns
// nil so call sites can wrap unconditionally.
func Wrap(err error, code Code, message string) error {
	if err == nil {
		return nil
	}
	return &Error{Code: code, Message: message, cause: err}
}

// HasCode reports whether any error in the chain carries the given code.
func HasCode(err error, code Code) bool {
	var de *Error
	if errors.As(err, &de) {
		return de.Code == code
	}
	return false
}

// CodeOf extracts the code from an error chain, defaulting to CodeInternal.
func CodeOf(err error) Code {
	var de *Error
	if errors.As(err, &de) {
		return de.Code
	}
	return CodeInternal
}

// Retryable reports whether the failure is transient and the identical call
// may be retried without changing the input.
func Retryable(err error) bool {
	switch CodeOf(err) {
	case CodeNetwork, CodeUnavailable:
		return true
	}
	return false
}

// ToHTTPStatus maps a code to its HTTP status.
func ToHTTPStatus(code Code) int {
	switch code {
	case CodeInvalidInput, CodeBadRequest, CodeInvalidFormat, CodePrerequisite:
		return http.StatusBadRequest
	case CodeNotFound, CodeNoAccount:
		return http.StatusNotFound
	case CodeConflict, CodeDuplicate, CodeSelfReference, CodeAlreadyRegistered:
		return http.StatusConflict
	case CodeNetwork, CodeUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
