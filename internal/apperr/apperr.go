package apperr

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNotFound is wrapped by every lookup that misses, including reads of
// soft-deleted records.
var ErrNotFound = errors.New("not found")

// NotFound returns an error for subject that matches ErrNotFound.
func NotFound(subject string) error {
	return fmt.Errorf("%s %w", subject, ErrNotFound)
}

// ValidationError represents a rejected input: a missing required field or a
// malformed value.
type ValidationError struct {
	Fields  []string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// Invalid builds a ValidationError for a single field.
func Invalid(field, message string) error {
	return &ValidationError{Fields: []string{field}, Message: message}
}

// Missing builds a ValidationError listing every required field that was empty.
func Missing(fields []string, context string) error {
	msg := strings.Join(fields, ", ") + " required"
	if context != "" {
		msg += " " + context
	}
	return &ValidationError{Fields: fields, Message: msg}
}

// UpstreamError wraps a failed call to the database or the media host.
type UpstreamError struct {
	Op  string
	Err error
}

func (e *UpstreamError) Error() string {
	return e.Op + ": " + e.Err.Error()
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}

// Upstream wraps err as an UpstreamError. A nil err stays nil.
func Upstream(op string, err error) error {
	if err == nil {
		return nil
	}
	return &UpstreamError{Op: op, Err: err}
}

func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
