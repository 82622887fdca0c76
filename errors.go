// Package graphcap structured error types for the runtime-facing API.
// Driver-level primitives report Status codes; the allocation, copy and
// kernel-launch surface returns errors of this shape instead.
package graphcap

import (
	"fmt"
)

// ErrorType represents categories of errors
type ErrorType int

const (
	// Memory errors
	ErrTypeMemory ErrorType = iota
	// Invalid argument errors
	ErrTypeInvalidArg
	// Execution errors
	ErrTypeExecution
	// Stream capture errors
	ErrTypeCapture
	// Device errors
	ErrTypeDevice
)

// RuntimeError represents a structured error with context
type RuntimeError struct {
	Type    ErrorType
	Op      string // Operation that failed
	Message string // Human-readable message
	Err     error  // Underlying error if any
}

// Error implements the error interface
func (e *RuntimeError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("graphcap %s error in %s: %s (caused by: %v)",
			e.Type.String(), e.Op, e.Message, e.Err)
	}
	return fmt.Sprintf("graphcap %s error in %s: %s",
		e.Type.String(), e.Op, e.Message)
}

// Unwrap allows error chain inspection
func (e *RuntimeError) Unwrap() error {
	return e.Err
}

// String returns the error type as a string
func (t ErrorType) String() string {
	switch t {
	case ErrTypeMemory:
		return "Memory"
	case ErrTypeInvalidArg:
		return "InvalidArgument"
	case ErrTypeExecution:
		return "Execution"
	case ErrTypeCapture:
		return "Capture"
	case ErrTypeDevice:
		return "Device"
	default:
		return "Unknown"
	}
}

// Common error constructors

// NewMemoryError creates a memory-related error
func NewMemoryError(op string, message string, err error) error {
	return &RuntimeError{
		Type:    ErrTypeMemory,
		Op:      op,
		Message: message,
		Err:     err,
	}
}

// NewInvalidArgError creates an invalid argument error
func NewInvalidArgError(op string, message string) error {
	return &RuntimeError{
		Type:    ErrTypeInvalidArg,
		Op:      op,
		Message: message,
	}
}

// NewExecutionError creates an execution error
func NewExecutionError(op string, message string, err error) error {
	return &RuntimeError{
		Type:    ErrTypeExecution,
		Op:      op,
		Message: message,
		Err:     err,
	}
}

// NewCaptureError creates a stream-capture error
func NewCaptureError(op string, message string) error {
	return &RuntimeError{
		Type:    ErrTypeCapture,
		Op:      op,
		Message: message,
	}
}

// NewDeviceError creates a device error
func NewDeviceError(op string, message string, err error) error {
	return &RuntimeError{
		Type:    ErrTypeDevice,
		Op:      op,
		Message: message,
		Err:     err,
	}
}

// Common pre-defined errors

var (
	// ErrOutOfMemory indicates memory allocation failure
	ErrOutOfMemory = NewMemoryError("Malloc", "out of memory", nil)

	// ErrInvalidSize indicates invalid size parameter
	ErrInvalidSize = NewInvalidArgError("Malloc", "size must be positive")

	// ErrDoubleFree indicates double free attempt
	ErrDoubleFree = NewMemoryError("Free", "double free detected", nil)

	// ErrStreamDestroyed indicates a submission to a destroyed stream
	ErrStreamDestroyed = NewExecutionError("Submit", "stream has been destroyed", nil)

	// ErrCaptureInvalidated indicates a submission to a stream whose
	// active capture has been invalidated; the capture must be ended
	// before the stream accepts new work
	ErrCaptureInvalidated = NewCaptureError("Submit", "stream capture was invalidated")
)

// IsMemoryError checks if an error is a memory error
func IsMemoryError(err error) bool {
	if e, ok := err.(*RuntimeError); ok {
		return e.Type == ErrTypeMemory
	}
	return false
}

// IsInvalidArgError checks if an error is an invalid argument error
func IsInvalidArgError(err error) bool {
	if e, ok := err.(*RuntimeError); ok {
		return e.Type == ErrTypeInvalidArg
	}
	return false
}

// IsCaptureError checks if an error is a stream-capture error
func IsCaptureError(err error) bool {
	if e, ok := err.(*RuntimeError); ok {
		return e.Type == ErrTypeCapture
	}
	return false
}
