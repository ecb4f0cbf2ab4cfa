// Package util provides logging, error types, and small helpers shared
// by the mikro-manager tools.
package util

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for precondition failures
var (
	ErrNotConnected     = errors.New("router not connected")
	ErrAlreadyExists    = errors.New("resource already exists")
	ErrNotFound         = errors.New("resource not found")
	ErrInvalidConfig    = errors.New("invalid configuration")
	ErrPermissionDenied = errors.New("permission denied")
	ErrValidationFailed = errors.New("validation failed")
)

// NotFoundError identifies a resource entry that does not exist
type NotFoundError struct {
	Resource   string
	Identifier string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s '%s' not found", e.Resource, e.Identifier)
}

func (e *NotFoundError) Unwrap() error {
	return ErrNotFound
}

// NewNotFoundError creates a not-found error
func NewNotFoundError(resource, identifier string) *NotFoundError {
	return &NotFoundError{Resource: resource, Identifier: identifier}
}

// AlreadyExistsError identifies a duplicate resource entry
type AlreadyExistsError struct {
	Resource   string
	Identifier string
}

func (e *AlreadyExistsError) Error() string {
	return fmt.Sprintf("%s '%s' already exists", e.Resource, e.Identifier)
}

func (e *AlreadyExistsError) Unwrap() error {
	return ErrAlreadyExists
}

// NewAlreadyExistsError creates an already-exists error
func NewAlreadyExistsError(resource, identifier string) *AlreadyExistsError {
	return &AlreadyExistsError{Resource: resource, Identifier: identifier}
}

// ValidationError represents one or more validation failures
type ValidationError struct {
	Errors []string
}

func (e *ValidationError) Error() string {
	if len(e.Errors) == 1 {
		return "validation failed: " + e.Errors[0]
	}
	return fmt.Sprintf("validation failed:\n  - %s", strings.Join(e.Errors, "\n  - "))
}

func (e *ValidationError) Unwrap() error {
	return ErrValidationFailed
}

// NewValidationError creates a validation error from messages
func NewValidationError(messages ...string) *ValidationError {
	return &ValidationError{Errors: messages}
}

// ValidationBuilder helps accumulate validation errors
type ValidationBuilder struct {
	errors []string
}

// Add adds an error message if condition is false
func (v *ValidationBuilder) Add(condition bool, message string) *ValidationBuilder {
	if !condition {
		v.errors = append(v.errors, message)
	}
	return v
}

// AddError adds an error message unconditionally
func (v *ValidationBuilder) AddError(message string) *ValidationBuilder {
	v.errors = append(v.errors, message)
	return v
}

// AddErrorf adds a formatted error message
func (v *ValidationBuilder) AddErrorf(format string, args ...interface{}) *ValidationBuilder {
	v.errors = append(v.errors, fmt.Sprintf(format, args...))
	return v
}

// HasErrors returns true if there are validation errors
func (v *ValidationBuilder) HasErrors() bool {
	return len(v.errors) > 0
}

// Build returns the validation error or nil if no errors
func (v *ValidationBuilder) Build() error {
	if len(v.errors) == 0 {
		return nil
	}
	return &ValidationError{Errors: v.errors}
}
