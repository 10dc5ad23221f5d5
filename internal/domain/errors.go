package domain

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorKind classifies domain failures so the transport layer can map them to
// response codes without inspecting message text.
type ErrorKind string

const (
	KindNotFound          ErrorKind = "NOT_FOUND"
	KindValidationFailed  ErrorKind = "VALIDATION_FAILED"
	KindCalculationError  ErrorKind = "CALCULATION_ERROR"
	KindIllegalTransition ErrorKind = "ILLEGAL_TRANSITION"
	KindForbidden         ErrorKind = "FORBIDDEN"
	KindAuditWriteFailure ErrorKind = "AUDIT_WRITE_FAILURE"
)

// DomainError is the single error type crossing the usecase boundary.
type DomainError struct {
	Kind       ErrorKind `json:"kind"`
	Message    string    `json:"message"`
	Violations []string  `json:"violations,omitempty"`
	Cause      error     `json:"-"`
}

func (e *DomainError) Error() string {
	if len(e.Violations) > 0 {
		return fmt.Sprintf("%s: %s", e.Message, strings.Join(e.Violations, "; "))
	}
	return e.Message
}

func (e *DomainError) Unwrap() error {
	return e.Cause
}

func NewNotFound(entity, id string) *DomainError {
	return &DomainError{
		Kind:    KindNotFound,
		Message: fmt.Sprintf("%s not found: %s", entity, id),
	}
}

// NewValidationFailed aggregates every collected violation into one failure.
func NewValidationFailed(violations []string) *DomainError {
	return &DomainError{
		Kind:       KindValidationFailed,
		Message:    "domain validation failed",
		Violations: violations,
	}
}

func NewCalculationError(format string, args ...interface{}) *DomainError {
	return &DomainError{
		Kind:    KindCalculationError,
		Message: fmt.Sprintf(format, args...),
	}
}

func NewIllegalTransition(current, target OrderState) *DomainError {
	return &DomainError{
		Kind:    KindIllegalTransition,
		Message: fmt.Sprintf("illegal transition from %s to %s", current, target),
	}
}

// NewLostTransition reports a compare-and-swap race: the order moved between
// the read and the conditional update.
func NewLostTransition(target OrderState) *DomainError {
	return &DomainError{
		Kind:    KindIllegalTransition,
		Message: fmt.Sprintf("transition to %s lost: order state changed concurrently", target),
	}
}

func NewForbidden(role Role, target OrderState) *DomainError {
	return &DomainError{
		Kind:    KindForbidden,
		Message: fmt.Sprintf("role %s may not move an order into %s", role, target),
	}
}

func NewAuditWriteFailure(cause error) *DomainError {
	return &DomainError{
		Kind:    KindAuditWriteFailure,
		Message: "audit record could not be written",
		Cause:   cause,
	}
}

// KindOf returns the kind of err, or the empty string for non-domain errors.
func KindOf(err error) ErrorKind {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Kind
	}
	return ""
}

func IsKind(err error, kind ErrorKind) bool {
	return KindOf(err) == kind
}
