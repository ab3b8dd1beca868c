// Package errors defines the structured error type shared by the pipeline
// and benchmark components. Every error carries a kind so callers can
// distinguish fatal store failures from absorbed data anomalies.
package errors

import (
	"errors"
	"fmt"
)

// Kind classifies an error by its handling policy.
type Kind string

const (
	// KindSourceUnavailable marks an unreachable relational or document
	// store. Fatal for the run.
	KindSourceUnavailable Kind = "SOURCE_UNAVAILABLE"

	// KindSchemaMismatch marks a missing table or column in the relational
	// source. Fatal, raised before any write happens.
	KindSchemaMismatch Kind = "SCHEMA_MISMATCH"

	// KindWriteFailure marks a failed materialization batch. The run aborts;
	// batches committed earlier stay in place.
	KindWriteFailure Kind = "WRITE_FAILURE"

	// KindRecoverableAnomaly marks a data-quality defect (duplicate rating
	// row, unresolved person reference) handled with a fallback value.
	KindRecoverableAnomaly Kind = "RECOVERABLE_ANOMALY"
)

// Error is the structured error used throughout cinedoc.
type Error struct {
	Kind    Kind
	Op      string
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %s: %v", e.Kind, e.Op, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s: %s", e.Kind, e.Op, e.Message)
}

// Unwrap returns the underlying cause for errors.Is/As compatibility.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is matches on kind, so callers can compare against a bare kinded error.
func (e *Error) Is(target error) bool {
	var t *Error
	if errors.As(target, &t) {
		return e.Kind == t.Kind
	}
	return false
}

// New creates an error with the given kind.
func New(kind Kind, op, message string) *Error {
	return &Error{Kind: kind, Op: op, Message: message}
}

// Wrap creates an error with the given kind around an existing cause.
func Wrap(kind Kind, op, message string, cause error) *Error {
	return &Error{Kind: kind, Op: op, Message: message, Cause: cause}
}

// KindOf extracts the kind from an error chain. Returns the empty string
// when the chain holds no *Error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// IsFatal reports whether the error should terminate a pipeline run.
// Recoverable anomalies are absorbed where they occur and never terminate.
func IsFatal(err error) bool {
	switch KindOf(err) {
	case KindSourceUnavailable, KindSchemaMismatch, KindWriteFailure:
		return true
	default:
		return false
	}
}
