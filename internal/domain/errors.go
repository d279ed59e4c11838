package domain

import (
	"errors"
	"fmt"
)

// ErrorKind classifies domain errors for transport-level mapping.
type ErrorKind string

const (
	KindValidation   ErrorKind = "validation"
	KindNotFound     ErrorKind = "not_found"
	KindConflict     ErrorKind = "conflict"
	KindForbidden    ErrorKind = "forbidden"
	KindUnauthorized ErrorKind = "unauthorized"
	KindInternal     ErrorKind = "internal"
)

// Error is the domain error type carried across layer boundaries.
type Error struct {
	Kind    ErrorKind
	Message string
}

// Error returns the error message.
func (e *Error) Error() string {
	return e.Message
}

// NewValidationError creates an error for invalid input.
func NewValidationError(message string) *Error {
	return &Error{Kind: KindValidation, Message: message}
}

// NewNotFoundError creates an error for a missing entity.
func NewNotFoundError(entity, id string) *Error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf("%s %s not found", entity, id)}
}

// NewConflictError creates an error for a state or data conflict.
func NewConflictError(message string) *Error {
	return &Error{Kind: KindConflict, Message: message}
}

// NewForbiddenError creates an error for a disallowed action.
func NewForbiddenError(message string) *Error {
	return &Error{Kind: KindForbidden, Message: message}
}

// NewAuthorizationError creates an error naming the missing capability.
func NewAuthorizationError(capability Capability) *Error {
	return &Error{Kind: KindForbidden, Message: fmt.Sprintf("missing capability: %s", capability)}
}

// NewUnauthorizedError creates an error for an unauthenticated caller.
func NewUnauthorizedError(message string) *Error {
	return &Error{Kind: KindUnauthorized, Message: message}
}

// KindOf returns the kind of a domain error, or KindInternal for anything else.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// IsConflict reports whether err is a domain conflict error.
func IsConflict(err error) bool {
	return KindOf(err) == KindConflict
}

// IsNotFound reports whether err is a domain not-found error.
func IsNotFound(err error) bool {
	return KindOf(err) == KindNotFound
}
