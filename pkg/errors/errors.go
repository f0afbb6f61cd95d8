// Package errors carries coded errors across the CLI and HTTP API.
//
// A [Code] travels with each error so the API can map failures to HTTP
// statuses and clients can branch on stable identifiers instead of
// message text. Codes group by prefix:
//   - INVALID_*: the input was malformed or the move was illegal
//   - *_NOT_FOUND: the named resource does not exist
//   - INTERNAL_ERROR, UNSUPPORTED: server-side failures
//
// # Usage
//
//	err := errors.New(errors.ErrCodeInvalidMove, "unknown move: %s", name)
//	if errors.Is(err, errors.ErrCodeInvalidMove) {
//	    // Handle validation error
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeInvalidMolfile, parseErr, "cannot load %s", path)
package errors

import (
	"errors"
	"fmt"
)

// Code identifies an error category to machines.
type Code string

const (
	// Input validation
	ErrCodeInvalidInput    Code = "INVALID_INPUT"
	ErrCodeInvalidMolfile  Code = "INVALID_MOLFILE"
	ErrCodeInvalidMove     Code = "INVALID_MOVE"
	ErrCodeInvalidSnapshot Code = "INVALID_SNAPSHOT"
	ErrCodeInvalidScript   Code = "INVALID_SCRIPT"
	ErrCodeInvalidID       Code = "INVALID_ID"

	// Missing resources
	ErrCodeNotFound         Code = "NOT_FOUND"
	ErrCodeSessionNotFound  Code = "SESSION_NOT_FOUND"
	ErrCodeSnapshotNotFound Code = "SNAPSHOT_NOT_FOUND"
	ErrCodeScriptNotFound   Code = "SCRIPT_NOT_FOUND"

	// Server side
	ErrCodeInternal    Code = "INTERNAL_ERROR"
	ErrCodeUnsupported Code = "UNSUPPORTED"
)

// Error pairs a code with a message and an optional cause.
type Error struct {
	Code    Code
	Message string
	Cause   error
}

// Error renders "CODE: message" with the cause appended when present.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap exposes the cause to the errors.Is/As chain.
func (e *Error) Unwrap() error {
	return e.Cause
}

// New builds an Error from a code and a formatted message.
func New(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap builds an Error that records cause and surfaces it via Unwrap.
func Wrap(code Code, cause error, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...), Cause: cause}
}

// Is reports whether any error in err's chain carries code.
func Is(err error, code Code) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}

// GetCode returns the code carried by err, or "" when err has none.
func GetCode(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// UserMessage strips the code prefix: the message alone for an *Error,
// the plain Error() text for anything else.
func UserMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return err.Error()
}
