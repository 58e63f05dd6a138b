package helpers

import (
	"errors"
	"fmt"
)

// Define sentinel errors for common error types
var (
	// ErrNotFound represents a task, key or path missing from a document
	ErrNotFound = errors.New("not found")

	// ErrNoInput represents a read from an interactive terminal
	ErrNoInput = errors.New("no input")
)

// NotFoundError reports what could not be found in a document
type NotFoundError struct {
	Kind string
	Name string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Kind, e.Name)
}

func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// NewNotFoundError creates a new not found error
func NewNotFoundError(kind, name string) error {
	return &NotFoundError{
		Kind: kind,
		Name: name,
	}
}

// CliError represents a CLI-specific error with a stable code
type CliError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
	Err     error  `json:"-"`
}

func (e *CliError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *CliError) Unwrap() error {
	return e.Err
}

// NewCliError creates a new CLI error
func NewCliError(code, message string, details ...string) *CliError {
	err := &CliError{
		Code:    code,
		Message: message,
	}
	if len(details) > 0 {
		err.Details = details[0]
	}
	return err
}

// WithCause records the underlying error so errors.Is keeps working
func (e *CliError) WithCause(err error) *CliError {
	e.Err = err
	return e
}
