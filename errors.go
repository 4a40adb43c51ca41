package signalgrid

import (
	"errors"
	"fmt"
)

// ErrorCode represents specific error conditions in the control engine
type ErrorCode int

const (
	// No error occurred
	ErrCodeNone ErrorCode = iota
	// Intersection was not found in the fleet
	ErrCodeNotFound
	// Argument was malformed (phase, mode, status, operator)
	ErrCodeInvalidArgument
	// Decision was not applied because the mode or status forbids it
	ErrCodeSuppressed
	// Controller is not running
	ErrCodeNotRunning
	// Configuration is invalid
	ErrCodeInvalidConfiguration
)

func (c ErrorCode) String() string {
	switch c {
	case ErrCodeNone:
		return "none"
	case ErrCodeNotFound:
		return "not_found"
	case ErrCodeInvalidArgument:
		return "invalid_argument"
	case ErrCodeSuppressed:
		return "suppressed"
	case ErrCodeNotRunning:
		return "not_running"
	case ErrCodeInvalidConfiguration:
		return "invalid_configuration"
	}
	return fmt.Sprintf("error_code(%d)", int(c))
}

// IntersectionError represents errors about a specific intersection
type IntersectionError struct {
	Code           ErrorCode
	IntersectionID int
	Message        string
}

func (e *IntersectionError) Error() string {
	return fmt.Sprintf("intersection error [%d]: %s", e.IntersectionID, e.Message)
}

// NewNotFoundError creates a new intersection not found error
func NewNotFoundError(id int) *IntersectionError {
	return &IntersectionError{
		Code:           ErrCodeNotFound,
		IntersectionID: id,
		Message:        fmt.Sprintf("intersection %d not found", id),
	}
}

// ArgumentError represents a malformed argument
type ArgumentError struct {
	Field  string
	Value  string
	Reason string
}

func (e *ArgumentError) Error() string {
	return fmt.Sprintf("invalid %s %q: %s", e.Field, e.Value, e.Reason)
}

// NewArgumentError creates a new invalid argument error
func NewArgumentError(field, value, reason string) *ArgumentError {
	return &ArgumentError{
		Field:  field,
		Value:  value,
		Reason: reason,
	}
}

// ControllerError represents controller lifecycle errors
type ControllerError struct {
	Code      ErrorCode
	Operation string
	Message   string
}

func (e *ControllerError) Error() string {
	return fmt.Sprintf("controller error during %s: %s", e.Operation, e.Message)
}

// NewNotRunningError creates a new controller not running error
func NewNotRunningError(operation string) *ControllerError {
	return &ControllerError{
		Code:      ErrCodeNotRunning,
		Operation: operation,
		Message:   "controller is not running",
	}
}

// NewControllerError creates a new controller error
func NewControllerError(code ErrorCode, operation string, message string) *ControllerError {
	return &ControllerError{
		Code:      code,
		Operation: operation,
		Message:   message,
	}
}

// ConfigurationError represents configuration issues
type ConfigurationError struct {
	Component string
	Issue     string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration error in %s: %s", e.Component, e.Issue)
}

// NewConfigurationError creates a new configuration error
func NewConfigurationError(component, issue string) *ConfigurationError {
	return &ConfigurationError{
		Component: component,
		Issue:     issue,
	}
}

// IsNotFound checks if an error is an intersection not found error
func IsNotFound(err error) bool {
	var e *IntersectionError
	return errors.As(err, &e) && e.Code == ErrCodeNotFound
}

// IsInvalidArgument checks if an error is an ArgumentError
func IsInvalidArgument(err error) bool {
	var e *ArgumentError
	return errors.As(err, &e)
}

// IsControllerError checks if an error is a ControllerError
func IsControllerError(err error) bool {
	var e *ControllerError
	return errors.As(err, &e)
}

// IsConfigurationError checks if an error is a ConfigurationError
func IsConfigurationError(err error) bool {
	var e *ConfigurationError
	return errors.As(err, &e)
}

// GetErrorCode returns the error code for known error types
func GetErrorCode(err error) ErrorCode {
	var (
		ie *IntersectionError
		ae *ArgumentError
		ce *ControllerError
		fe *ConfigurationError
	)
	switch {
	case errors.As(err, &ie):
		return ie.Code
	case errors.As(err, &ae):
		return ErrCodeInvalidArgument
	case errors.As(err, &ce):
		return ce.Code
	case errors.As(err, &fe):
		return ErrCodeInvalidConfiguration
	default:
		return ErrCodeNone
	}
}
