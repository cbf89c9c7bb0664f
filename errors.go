// Package symmem structured error types for host-side failure paths.
// Device-side unsupported-capability faults do not go through these: they
// abort via exceptions.Panicf at the point of use (see multimem.go).
package symmem

import (
	"fmt"
)

// ErrorType represents categories of errors
type ErrorType int

const (
	// Configuration errors (world size, launch dimensions)
	ErrTypeConfig ErrorType = iota
	// Memory errors (symmetric allocation)
	ErrTypeMemory
	// Launch errors
	ErrTypeLaunch
	// Invalid argument errors
	ErrTypeInvalidArg
)

// SymmError represents a structured error with context
type SymmError struct {
	Type    ErrorType
	Op      string // Operation that failed
	Message string // Human-readable message
	Err     error  // Underlying error if any
}

// Error implements the error interface
func (e *SymmError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("symmem %s error in %s: %s (caused by: %v)",
			e.Type.String(), e.Op, e.Message, e.Err)
	}
	return fmt.Sprintf("symmem %s error in %s: %s",
		e.Type.String(), e.Op, e.Message)
}

// Unwrap allows error chain inspection
func (e *SymmError) Unwrap() error {
	return e.Err
}

// String returns the error type as a string
func (t ErrorType) String() string {
	switch t {
	case ErrTypeConfig:
		return "Config"
	case ErrTypeMemory:
		return "Memory"
	case ErrTypeLaunch:
		return "Launch"
	case ErrTypeInvalidArg:
		return "InvalidArgument"
	default:
		return "Unknown"
	}
}

// Common error constructors

// NewConfigError creates a configuration error
func NewConfigError(op string, message string) error {
	return &SymmError{
		Type:    ErrTypeConfig,
		Op:      op,
		Message: message,
	}
}

// NewMemoryError creates a memory-related error
func NewMemoryError(op string, message string, err error) error {
	return &SymmError{
		Type:    ErrTypeMemory,
		Op:      op,
		Message: message,
		Err:     err,
	}
}

// NewLaunchError creates a kernel launch error
func NewLaunchError(op string, message string) error {
	return &SymmError{
		Type:    ErrTypeLaunch,
		Op:      op,
		Message: message,
	}
}

// NewInvalidArgError creates an invalid argument error
func NewInvalidArgError(op string, message string) error {
	return &SymmError{
		Type:    ErrTypeInvalidArg,
		Op:      op,
		Message: message,
	}
}

// IsConfigError checks if an error is a configuration error
func IsConfigError(err error) bool {
	if e, ok := err.(*SymmError); ok {
		return e.Type == ErrTypeConfig
	}
	return false
}

// IsLaunchError checks if an error is a launch error
func IsLaunchError(err error) bool {
	if e, ok := err.(*SymmError); ok {
		return e.Type == ErrTypeLaunch
	}
	return false
}
