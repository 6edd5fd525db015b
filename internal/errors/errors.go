// Package errors provides the structured error types used across aoss-console.
//
// Base errors are sentinel values that identify the class of a failure. Wrapped
// error types add the operation and the resource involved, and the helpers
// below let callers test for either without caring how deep the chain is.
//
// # Error Types
//
// Base errors (sentinel errors):
//   - ErrNotFound - resource not found
//   - ErrAlreadyExists - duplicate resource
//   - ErrInvalid - validation failed
//   - ErrBusy - a creation workflow is already running for the form
//   - ErrUnavailable - the remote comment store could not be reached
//   - ErrProvisioning - simulated provisioning failed
//   - ErrIO - local storage error
//   - ErrCanceled - the owning screen went away
//
// Wrapped error types (add context):
//   - WorkflowError{Op, Err, Resource} - creation workflow errors
//   - RemoteError{Op, Status, Err} - GraphQL endpoint errors
//   - ConfigError{Path, Err} - configuration errors
//
// # Usage
//
//	return &errors.WorkflowError{Op: "start", Err: errors.ErrBusy, Resource: "my-collection"}
//
//	if errors.IsUnavailable(err) {
//	    // fall back to local storage
//	}
package errors

import (
	"context"
	"errors"
	"fmt"
)

// Base error types (sentinel errors).
var (
	// ErrNotFound indicates a resource was not found.
	ErrNotFound = baseError("not found")

	// ErrAlreadyExists indicates a duplicate resource.
	ErrAlreadyExists = baseError("already exists")

	// ErrInvalid indicates validation failed.
	ErrInvalid = baseError("invalid")

	// ErrBusy indicates a workflow is already in flight.
	ErrBusy = baseError("busy")

	// ErrUnavailable indicates the remote store could not serve the request.
	ErrUnavailable = baseError("remote unavailable")

	// ErrProvisioning indicates a simulated provisioning step failed.
	ErrProvisioning = baseError("provisioning failed")

	// ErrIO indicates a local storage error.
	ErrIO = baseError("I/O error")

	// ErrCanceled indicates the operation was canceled.
	ErrCanceled = baseError("canceled")
)

// baseError is a string that implements error.
type baseError string

func (e baseError) Error() string { return string(e) }

// WorkflowError represents an error raised by a creation workflow.
type WorkflowError struct {
	// Op is the operation being performed (e.g., "start", "retry").
	Op string
	// Err is the underlying error.
	Err error
	// Resource is the resource being created (optional).
	Resource string
}

func (e *WorkflowError) Error() string {
	if e.Resource != "" {
		return fmt.Sprintf("workflow %s %q: %s", e.Op, e.Resource, e.Err)
	}
	return fmt.Sprintf("workflow %s: %s", e.Op, e.Err)
}

func (e *WorkflowError) Unwrap() error { return e.Err }

// RemoteError represents a failed call to the remote GraphQL endpoint.
type RemoteError struct {
	// Op is the GraphQL operation name (e.g., "ListComments").
	Op string
	// Status is the HTTP status code, zero when no response was received.
	Status int
	// Err is the underlying error.
	Err error
}

func (e *RemoteError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("remote %s (status %d): %s", e.Op, e.Status, e.Err)
	}
	return fmt.Sprintf("remote %s: %s", e.Op, e.Err)
}

func (e *RemoteError) Unwrap() error { return e.Err }

// ConfigError represents an error related to configuration.
type ConfigError struct {
	// Path is the configuration file path (optional).
	Path string
	// Err is the underlying error.
	Err error
}

func (e *ConfigError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("config %s: %s", e.Path, e.Err)
	}
	return fmt.Sprintf("config: %s", e.Err)
}

func (e *ConfigError) Unwrap() error { return e.Err }

// Invalidf returns an ErrInvalid-wrapped error with a formatted message.
func Invalidf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalid, fmt.Sprintf(format, args...))
}

// IsNotFound reports whether err is or wraps ErrNotFound.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsAlreadyExists reports whether err is or wraps ErrAlreadyExists.
func IsAlreadyExists(err error) bool {
	return errors.Is(err, ErrAlreadyExists)
}

// IsInvalid reports whether err is or wraps ErrInvalid.
func IsInvalid(err error) bool {
	return errors.Is(err, ErrInvalid)
}

// IsBusy reports whether err is or wraps ErrBusy.
func IsBusy(err error) bool {
	return errors.Is(err, ErrBusy)
}

// IsUnavailable reports whether err is or wraps ErrUnavailable.
func IsUnavailable(err error) bool {
	return errors.Is(err, ErrUnavailable)
}

// IsProvisioning reports whether err is or wraps ErrProvisioning.
func IsProvisioning(err error) bool {
	return errors.Is(err, ErrProvisioning)
}

// IsIO reports whether err is or wraps ErrIO.
func IsIO(err error) bool {
	return errors.Is(err, ErrIO)
}

// IsCanceled reports whether err is or wraps ErrCanceled or context.Canceled.
func IsCanceled(err error) bool {
	return errors.Is(err, ErrCanceled) || errors.Is(err, context.Canceled)
}

// AsWorkflowError reports whether err can be typed as a *WorkflowError.
func AsWorkflowError(err error) (*WorkflowError, bool) {
	var we *WorkflowError
	if errors.As(err, &we) {
		return we, true
	}
	return nil, false
}

// AsRemoteError reports whether err can be typed as a *RemoteError.
func AsRemoteError(err error) (*RemoteError, bool) {
	var re *RemoteError
	if errors.As(err, &re) {
		return re, true
	}
	return nil, false
}

// AsConfigError reports whether err can be typed as a *ConfigError.
func AsConfigError(err error) (*ConfigError, bool) {
	var ce *ConfigError
	if errors.As(err, &ce) {
		return ce, true
	}
	return nil, false
}
