package service

import (
	"errors"
	"fmt"
)

// ValidationError reports a missing or invalid input field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func required(field string) *ValidationError {
	return &ValidationError{Field: field, Message: field + " is required"}
}

// NotFoundError reports an unknown item id.
type NotFoundError struct {
	ID string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("item %s not found", e.ID)
}

// ForbiddenError reports a caller that may not perform an operation.
type ForbiddenError struct {
	Reason string
}

func (e *ForbiddenError) Error() string {
	return e.Reason
}

// ConflictError reports a unique value that is already taken.
type ConflictError struct {
	Message string
}

func (e *ConflictError) Error() string {
	return e.Message
}

var (
	// ErrInvalidCredentials is returned by Login for an unknown email or
	// wrong password.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrInvalidToken is returned by Authenticate for a malformed, expired
	// or revoked token.
	ErrInvalidToken = errors.New("invalid token")
)
