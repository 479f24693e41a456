package errors

import (
	"errors"
	"fmt"
	"time"
)

// InvalidGenomeError is returned when genome construction, mutation or
// crossover could not produce a well-typed tree within the retry budget.
// Callers recover by keeping an unmodified parent.
type InvalidGenomeError struct {
	Operation string // "create", "mutate", "crossover" or "decode"
	Attempts  int
	Reason    string
	Cause     error
}

// NewInvalidGenomeError creates a new InvalidGenomeError.
func NewInvalidGenomeError(operation string, attempts int, reason string) *InvalidGenomeError {
	return &InvalidGenomeError{
		Operation: operation,
		Attempts:  attempts,
		Reason:    reason,
		Cause:     nil,
	}
}

// Error implements the error interface.
func (e *InvalidGenomeError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("invalid genome (%s after %d attempts): %s: %v", e.Operation, e.Attempts, e.Reason, e.Cause)
	}

	return fmt.Sprintf("invalid genome (%s after %d attempts): %s", e.Operation, e.Attempts, e.Reason)
}

// Unwrap exposes a coded error so HasCode(err, ErrCodeInvalidGenome) holds.
func (e *InvalidGenomeError) Unwrap() error {
	return Wrap(ErrCodeInvalidGenome, e.Reason, e.Cause)
}

// IsInvalidGenomeError checks if an error is an InvalidGenomeError.
func IsInvalidGenomeError(err error) bool {
	var target *InvalidGenomeError

	return errors.As(err, &target)
}

// EvaluationTimeoutError is returned when a single evaluation exceeded its
// time budget. It is recovered locally as a zero fitness.
type EvaluationTimeoutError struct {
	Budget  time.Duration
	Elapsed time.Duration
	Bars    int // bars processed before the deadline hit
}

// NewEvaluationTimeoutError creates a new EvaluationTimeoutError.
func NewEvaluationTimeoutError(budget, elapsed time.Duration, bars int) *EvaluationTimeoutError {
	return &EvaluationTimeoutError{
		Budget:  budget,
		Elapsed: elapsed,
		Bars:    bars,
	}
}

// Error implements the error interface.
func (e *EvaluationTimeoutError) Error() string {
	return fmt.Sprintf("evaluation timed out after %s (budget %s, %d bars processed)", e.Elapsed, e.Budget, e.Bars)
}

// Unwrap exposes a coded error so HasCode(err, ErrCodeEvaluationTimeout) holds.
func (e *EvaluationTimeoutError) Unwrap() error {
	return New(ErrCodeEvaluationTimeout, "evaluation timed out")
}

// IsEvaluationTimeoutError checks if an error is an EvaluationTimeoutError.
func IsEvaluationTimeoutError(err error) bool {
	var target *EvaluationTimeoutError

	return errors.As(err, &target)
}

// ConfigurationError reports invalid or contradictory configuration.
// It is fatal and surfaced before any generation runs.
type ConfigurationError struct {
	Field   string
	Message string
	Cause   error
}

// NewConfigurationError creates a new ConfigurationError.
func NewConfigurationError(field, message string) *ConfigurationError {
	return &ConfigurationError{
		Field:   field,
		Message: message,
		Cause:   nil,
	}
}

// NewConfigurationErrorf creates a new ConfigurationError with a formatted message.
func NewConfigurationErrorf(field, format string, args ...any) *ConfigurationError {
	return &ConfigurationError{
		Field:   field,
		Message: fmt.Sprintf(format, args...),
		Cause:   nil,
	}
}

// WrapConfigurationError wraps a lower-level cause (parse or validation failure).
func WrapConfigurationError(field, message string, cause error) *ConfigurationError {
	return &ConfigurationError{
		Field:   field,
		Message: message,
		Cause:   cause,
	}
}

// Error implements the error interface.
func (e *ConfigurationError) Error() string {
	msg := "invalid configuration"
	if e.Field != "" {
		msg = fmt.Sprintf("invalid configuration %q", e.Field)
	}

	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", msg, e.Message, e.Cause)
	}

	return fmt.Sprintf("%s: %s", msg, e.Message)
}

// Unwrap exposes a coded error so HasCode(err, ErrCodeInvalidConfiguration) holds.
func (e *ConfigurationError) Unwrap() error {
	return Wrap(ErrCodeInvalidConfiguration, e.Message, e.Cause)
}

// IsConfigurationError checks if an error is a ConfigurationError.
func IsConfigurationError(err error) bool {
	var target *ConfigurationError

	return errors.As(err, &target)
}

// DataInsufficientError represents an error when a price series is shorter
// than the minimum window a genome's indicators require.
type DataInsufficientError struct {
	Required int    // Minimum data points required
	Actual   int    // Actual data points available
	Series   string // Optional: series name
	Message  string // Human-readable message
}

// NewDataInsufficientError creates a new DataInsufficientError.
func NewDataInsufficientError(required, actual int, series, message string) *DataInsufficientError {
	return &DataInsufficientError{
		Required: required,
		Actual:   actual,
		Series:   series,
		Message:  message,
	}
}

// NewDataInsufficientErrorf creates a new DataInsufficientError with a formatted message.
func NewDataInsufficientErrorf(required, actual int, series, format string, args ...any) *DataInsufficientError {
	return &DataInsufficientError{
		Required: required,
		Actual:   actual,
		Series:   series,
		Message:  fmt.Sprintf(format, args...),
	}
}

// Error implements the error interface.
func (e *DataInsufficientError) Error() string {
	return e.Message
}

// Unwrap exposes a coded error so HasCode(err, ErrCodeInsufficientData) holds.
func (e *DataInsufficientError) Unwrap() error {
	return New(ErrCodeInsufficientData, e.Message)
}

// IsDataInsufficientError checks if an error is a DataInsufficientError.
// It uses errors.As to check the error chain.
func IsDataInsufficientError(err error) bool {
	var target *DataInsufficientError

	return errors.As(err, &target)
}
