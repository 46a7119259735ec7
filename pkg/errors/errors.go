package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Store failure kinds
const (
	KindInvalidID        = "invalid_id"
	KindStoreFailure     = "store_failure"
	KindStoreUnavailable = "store_unavailable"
	KindInvalidBody      = "invalid_body"
)

// Common application errors
var (
	ErrStoreUnavailable = NewStoreError(KindStoreUnavailable, "document store unavailable", nil)
)

// ValidationError represents a malformed request payload
type ValidationError struct {
	Field   string
	Message string
}

// NewValidationError creates a new validation error
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{
		Field:   field,
		Message: message,
	}
}

// Error implements the error interface
func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation failed: %s - %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation failed: %s", e.Message)
}

// Kind returns the error kind reported to clients
func (e *ValidationError) Kind() string {
	return KindInvalidBody
}

// HTTPStatus returns the HTTP status for this error
func (e *ValidationError) HTTPStatus() int {
	return http.StatusBadRequest
}

// NotFoundError represents a resource not found error
type NotFoundError struct {
	Resource string
	Message  string
}

// NewNotFoundError creates a new not found error
func NewNotFoundError(resource, message string) *NotFoundError {
	return &NotFoundError{
		Resource: resource,
		Message:  message,
	}
}

// Error implements the error interface
func (e *NotFoundError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("%s not found", e.Resource)
}

// HTTPStatus returns the HTTP status for this error
func (e *NotFoundError) HTTPStatus() int {
	return http.StatusNotFound
}

// StoreError represents any failure raised by the document store:
// malformed identifiers, connectivity loss, driver faults.
type StoreError struct {
	Kind    string
	Message string
	Err     error
}

// NewStoreError creates a new store error
func NewStoreError(kind, message string, err error) *StoreError {
	return &StoreError{
		Kind:    kind,
		Message: message,
		Err:     err,
	}
}

// Error implements the error interface
func (e *StoreError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the wrapped error
func (e *StoreError) Unwrap() error {
	return e.Err
}

// HTTPStatus returns the HTTP status for this error
func (e *StoreError) HTTPStatus() int {
	return http.StatusInternalServerError
}

// HTTPStatuser is implemented by errors that map onto an HTTP status
type HTTPStatuser interface {
	HTTPStatus() int
}

// IsNotFound reports whether err or anything it wraps is a NotFoundError
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}

// StatusOf returns the HTTP status carried by err, defaulting to 500
func StatusOf(err error) int {
	var s HTTPStatuser
	if errors.As(err, &s) {
		return s.HTTPStatus()
	}
	return http.StatusInternalServerError
}

// Detail is the structured error body serialised into HTTP responses
type Detail struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

// DetailOf extracts the kind and raw message of err
func DetailOf(err error) Detail {
	var se *StoreError
	if errors.As(err, &se) {
		msg := se.Message
		if se.Err != nil {
			msg = se.Err.Error()
		}
		return Detail{Kind: se.Kind, Message: msg}
	}

	var ve *ValidationError
	if errors.As(err, &ve) {
		return Detail{Kind: ve.Kind(), Message: ve.Message}
	}

	return Detail{Kind: KindStoreFailure, Message: err.Error()}
}
