package models

import (
	"errors"
	"fmt"
)

var (
	ErrNoRecord           = errors.New("models: no matching record found")
	ErrUserNotFound       = errors.New("user not found")
	ErrAdNotFound         = errors.New("ad not found")
	ErrImageNotFound      = errors.New("image not found")
	ErrBookingNotFound    = errors.New("booking not found")
	ErrCommentNotFound    = errors.New("comment not found")
	ErrChargeNotFound     = errors.New("charge not found")
	ErrRoleNotFound       = errors.New("role not found")
	ErrDuplicateEmail     = errors.New("models: duplicate email")
	ErrDuplicateTitle     = errors.New("models: another ad already has this title")
	ErrDuplicateSlug      = errors.New("models: another ad already has this slug")
	ErrDuplicateComment   = errors.New("models: author already commented this ad")
	ErrDuplicateRole      = errors.New("models: duplicate role")
	ErrDatesUnavailable   = errors.New("models: dates are not available")
	ErrInvalidCredentials = errors.New("models: invalid credentials")
	ErrForbidden          = errors.New("forbidden")
	ErrInvalidSignature   = errors.New("invalid signature")
)

// ValidationError reports the first field that failed validation.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func NewValidationError(field, format string, args ...any) *ValidationError {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

func invalid(field, format string, args ...any) *ValidationError {
	return NewValidationError(field, format, args...)
}
