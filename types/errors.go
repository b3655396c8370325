/*
Copyright © 2025 Joseph Goksu josephgoksu@gmail.com
*/
package types

import (
	"fmt"
	"strings"
)

// ValidationError reports malformed or missing input to a mutation.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return "validation failed: " + e.Message
	}
	return fmt.Sprintf("validation failed on %s: %s", e.Field, e.Message)
}

// NewValidationError creates a field-level validation error.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// NotFoundError reports a reference to an id that does not exist.
type NotFoundError struct {
	Kind string `json:"kind"` // "task", "subtask", "item", "event"
	ID   string `json:"id"`
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Kind, e.ID)
}

// NewNotFoundError creates a NotFoundError for the given entity kind.
func NewNotFoundError(kind, id string) *NotFoundError {
	return &NotFoundError{Kind: kind, ID: id}
}

// ReconciliationError reports a failed or rejected reconciliation. The
// caller's plan is left untouched whenever this is returned.
type ReconciliationError struct {
	Reason     string   `json:"reason"`
	Violations []string `json:"violations,omitempty"`
	Err        error    `json:"-"`
}

func (e *ReconciliationError) Error() string {
	var sb strings.Builder
	sb.WriteString("reconciliation failed: ")
	sb.WriteString(e.Reason)
	if len(e.Violations) > 0 {
		sb.WriteString(" (")
		sb.WriteString(strings.Join(e.Violations, "; "))
		sb.WriteString(")")
	}
	if e.Err != nil {
		sb.WriteString(": ")
		sb.WriteString(e.Err.Error())
	}
	return sb.String()
}

func (e *ReconciliationError) Unwrap() error { return e.Err }

// TransportError wraps a network or remote failure from an LLM transport.
type TransportError struct {
	Op  string `json:"op"`
	Err error  `json:"-"`
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("transport %s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// NewTransportError wraps err as a TransportError for operation op.
func NewTransportError(op string, err error) *TransportError {
	return &TransportError{Op: op, Err: err}
}
