// Package shared contains the error kinds, ids and dates used by every
// domain package.
package shared

import (
	"errors"
	"fmt"
)

// ══════════════════════════════════════════════════════════════════════════════
// ERROR KINDS
// ══════════════════════════════════════════════════════════════════════════════

// Kinds are matched with errors.Is; every DomainError carries one.
var (
	ErrNotFound      = errors.New("not found")
	ErrAlreadyExists = errors.New("already exists")

	ErrInvalidInput    = errors.New("invalid input")
	ErrEmptyValue      = errors.New("value cannot be empty")
	ErrValueOutOfRange = errors.New("value out of range")
	ErrInvalidFormat   = errors.New("invalid format")

	ErrForbidden = errors.New("forbidden")

	ErrExternalService    = errors.New("external service error")
	ErrServiceUnavailable = errors.New("service unavailable")
	ErrTimeout            = errors.New("operation timeout")
)

// DomainError is an error raised by a domain operation.
type DomainError struct {
	Domain  string // "document", "profile", "calendar", ...
	Op      string // operation that failed, e.g. "Login"
	Kind    error  // one of the kinds above
	Message string
	Err     error // cause, optional
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s.%s: %s: %v", e.Domain, e.Op, e.Message, e.Err)
	}
	return fmt.Sprintf("%s.%s: %s", e.Domain, e.Op, e.Message)
}

// Unwrap returns the cause, or the kind when there is none.
func (e *DomainError) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	return e.Kind
}

// Is matches both the kind and the cause.
func (e *DomainError) Is(target error) bool {
	return (e.Kind != nil && errors.Is(e.Kind, target)) ||
		(e.Err != nil && errors.Is(e.Err, target))
}

// NewDomainError creates a DomainError without a cause.
func NewDomainError(domain, op string, kind error, message string) *DomainError {
	return &DomainError{Domain: domain, Op: op, Kind: kind, Message: message}
}

// WrapError creates a DomainError around err.
func WrapError(domain, op string, kind error, message string, err error) *DomainError {
	return &DomainError{Domain: domain, Op: op, Kind: kind, Message: message, Err: err}
}

// ══════════════════════════════════════════════════════════════════════════════
// SENTINELS
// ══════════════════════════════════════════════════════════════════════════════

// Login and profile.
var (
	ErrAccessDenied = NewDomainError("profile", "Login", ErrForbidden, "Acesso Negado")
	ErrEmptyName    = NewDomainError("profile", "Login", ErrEmptyValue, "name is required")
	ErrUnknownRole  = NewDomainError("profile", "Validate", ErrInvalidInput, "unknown role")
	ErrInvalidEmail = NewDomainError("profile", "Login", ErrInvalidFormat, "invalid email")
	ErrInvalidGrade = NewDomainError("profile", "Login", ErrInvalidInput, "unknown school grade")
	ErrNotLoggedIn  = NewDomainError("profile", "Check", ErrForbidden, "no user is logged in")
)

// Document contents.
var (
	ErrInvalidTerm        = NewDomainError("document", "Validate", ErrValueOutOfRange, "term must be 1, 2 or 3")
	ErrDuplicateID        = NewDomainError("document", "Validate", ErrAlreadyExists, "duplicate id in collection")
	ErrGradeOutOfRange    = NewDomainError("document", "Validate", ErrValueOutOfRange, "grade must be between 0 and 10")
	ErrMalformedDocument  = NewDomainError("document", "Decode", ErrInvalidFormat, "stored record is malformed")
	ErrSubjectNotFound    = NewDomainError("subject", "Find", ErrNotFound, "subject not found")
	ErrGroupNotFound      = NewDomainError("group", "Find", ErrNotFound, "group not found")
	ErrEventMissingFields = NewDomainError("calendar", "Create", ErrEmptyValue, "subject and date are required")
)

// ErrTutorDisabled is returned while the tutor feature is off or no
// assistant is configured.
var ErrTutorDisabled = NewDomainError("tutor", "Ask", ErrForbidden, "tutor is disabled")

// ══════════════════════════════════════════════════════════════════════════════
// CLASSIFICATION
// ══════════════════════════════════════════════════════════════════════════════

// IsNotFound reports whether err is of kind ErrNotFound.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsValidation reports whether err rejects the caller's input.
func IsValidation(err error) bool {
	return errors.Is(err, ErrInvalidInput) ||
		errors.Is(err, ErrEmptyValue) ||
		errors.Is(err, ErrValueOutOfRange) ||
		errors.Is(err, ErrInvalidFormat)
}

// IsExternalService reports whether err came from a remote dependency.
func IsExternalService(err error) bool {
	return errors.Is(err, ErrExternalService) ||
		errors.Is(err, ErrServiceUnavailable) ||
		errors.Is(err, ErrTimeout)
}
