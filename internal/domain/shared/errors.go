package shared

import (
	"errors"
	"fmt"
)

// Error codes exposed to callers. Every failure surfaces one of these.
const (
	CodeValidation   = "VALIDATION"
	CodeBadRequest   = "BAD_REQUEST"
	CodeNotFound     = "NOT_FOUND"
	CodeUnauthorized = "UNAUTHORIZED"
	CodeForbidden    = "FORBIDDEN"
	CodeInternal     = "ERROR"
)

// DomainError represents a domain-level error
type DomainError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error implements the error interface
func (e *DomainError) Error() string {
	return e.Message
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// NewValidationError reports malformed or missing input.
func NewValidationError(format string, args ...any) *DomainError {
	return NewDomainError(CodeValidation, fmt.Sprintf(format, args...))
}

// NewBadRequestError reports a request that is invalid given current state.
func NewBadRequestError(format string, args ...any) *DomainError {
	return NewDomainError(CodeBadRequest, fmt.Sprintf(format, args...))
}

// NewNotFoundError reports an absent entity.
func NewNotFoundError(entity string, id fmt.Stringer) *DomainError {
	return NewDomainError(CodeNotFound, fmt.Sprintf("%s %s not found", entity, id))
}

// NewInternalError reports an unexpected failure.
func NewInternalError(message string) *DomainError {
	return NewDomainError(CodeInternal, message)
}

// CodeOf returns the error code carried by err, or CodeInternal for
// anything that is not a DomainError.
func CodeOf(err error) string {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Code
	}
	return CodeInternal
}

// IsNotFound reports whether err carries the NOT_FOUND code.
func IsNotFound(err error) bool {
	return err != nil && CodeOf(err) == CodeNotFound
}
