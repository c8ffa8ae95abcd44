package chem

import (
	"errors"
	"fmt"
)

// Error reports a failure while building, parsing or querying a network.
//
// Errors carry a Code for classification and, for text input, the 1-based
// line that triggered them. The wrapped Err is usually one of the sentinel
// errors below so callers can match with errors.Is as well as by code.
type Error struct {
	// Code identifies the error category.
	Code ErrorCode

	// Message is a human-readable description.
	Message string

	// Line is the 1-based source line, or 0 when not parsing text.
	Line int

	// Err is the underlying cause.
	Err error
}

// ErrorCode categorizes chemistry errors.
type ErrorCode string

const (
	// ErrCodeFormat indicates malformed network or event-log text.
	ErrCodeFormat ErrorCode = "FORMAT_ERROR"

	// ErrCodeInvariant indicates input that would break a network invariant.
	ErrCodeInvariant ErrorCode = "INVARIANT_VIOLATION"

	// ErrCodeLookup indicates a query for a reaction the network does not hold.
	ErrCodeLookup ErrorCode = "LOOKUP_ERROR"
)

var (
	ErrUnknownReaction   = errors.New("unknown reaction")
	ErrNonPositiveRate   = errors.New("rate must be positive and finite")
	ErrDuplicateReaction = errors.New("duplicate reaction")
	ErrElasticReaction   = errors.New("reactants equal products")
	ErrConflictingRate   = errors.New("conflicting rate constants")
)

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("%s: line %d: %s", e.Code, e.Line, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error { return e.Err }

// NewFormatError creates an Error for malformed text at line.
func NewFormatError(line int, msg string, err error) *Error {
	return &Error{Code: ErrCodeFormat, Message: msg, Line: line, Err: err}
}

// NewInvariantError creates an Error for input that violates a network invariant.
func NewInvariantError(msg string, err error) *Error {
	return &Error{Code: ErrCodeInvariant, Message: msg, Err: err}
}

// IsFormatError returns true if err is, or wraps, a format error.
func IsFormatError(err error) bool { return hasCode(err, ErrCodeFormat) }

// IsInvariantViolation returns true if err is, or wraps, an invariant violation.
func IsInvariantViolation(err error) bool { return hasCode(err, ErrCodeInvariant) }

// IsLookupError returns true if err is, or wraps, a lookup error.
func IsLookupError(err error) bool { return hasCode(err, ErrCodeLookup) }

func hasCode(err error, code ErrorCode) bool {
	var ce *Error
	if errors.As(err, &ce) {
		return ce.Code == code
	}
	return false
}
