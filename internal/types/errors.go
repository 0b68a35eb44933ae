package types

import (
	"errors"
	"fmt"
)

// ErrorCode represents a namespaced error code for sync engine errors.
type ErrorCode string

// Configuration error codes. These indicate a malformed schema or a caller
// bug; they are raised before any store mutation and are never retryable.
const (
	CONFIG_VALIDATION_FAILED ErrorCode = "CONFIG_VALIDATION_FAILED"
	CONFIG_MISSING_KWARG     ErrorCode = "CONFIG_MISSING_KWARG"
	CONFIG_LOAD_FAILED       ErrorCode = "CONFIG_LOAD_FAILED"
	CONFIG_PARSE_FAILED      ErrorCode = "CONFIG_PARSE_FAILED"
)

// Store error codes. A failed batch is retried wholesale by the orchestrator;
// the load and cleanup query shapes are idempotent so full-batch retry is safe.
const (
	STORE_WRITE_FAILED   ErrorCode = "STORE_WRITE_FAILED"
	STORE_QUERY_FAILED   ErrorCode = "STORE_QUERY_FAILED"
	STORE_CLEANUP_FAILED ErrorCode = "STORE_CLEANUP_FAILED"
	STORE_INDEX_FAILED   ErrorCode = "STORE_INDEX_FAILED"
)

// Sync orchestration error codes
const (
	SYNC_MODULE_FAILED     ErrorCode = "SYNC_MODULE_FAILED"
	SYNC_DUPLICATE_MODULE  ErrorCode = "SYNC_DUPLICATE_MODULE"
	SYNC_NO_MODULES        ErrorCode = "SYNC_NO_MODULES"
	SYNC_COLLECTION_FAILED ErrorCode = "SYNC_COLLECTION_FAILED"
)

// SyncError represents a structured error with error code, message, and optional cause.
// It supports error wrapping and retryability hints for error handling logic.
type SyncError struct {
	Code      ErrorCode
	Message   string
	Retryable bool
	Cause     error
}

// Error implements the error interface, returning a formatted error message.
// Format: "[CODE] message" or "[CODE] message: cause" if cause exists.
func (e *SyncError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause error for error unwrapping chains.
// This enables using errors.Is() and errors.As() with wrapped errors.
func (e *SyncError) Unwrap() error {
	return e.Cause
}

// Is checks if the target error matches this error by error code.
// Returns true if target is a SyncError with the same Code.
func (e *SyncError) Is(target error) bool {
	var syncErr *SyncError
	if errors.As(target, &syncErr) {
		return e.Code == syncErr.Code
	}
	return false
}

// NewError creates a new non-retryable SyncError with the given code and message.
func NewError(code ErrorCode, message string) *SyncError {
	return &SyncError{
		Code:      code,
		Message:   message,
		Retryable: false,
		Cause:     nil,
	}
}

// NewRetryableError creates a new retryable SyncError with the given code and message.
// Use this for transient errors that may succeed on retry (e.g., network timeouts).
func NewRetryableError(code ErrorCode, message string) *SyncError {
	return &SyncError{
		Code:      code,
		Message:   message,
		Retryable: true,
		Cause:     nil,
	}
}

// WrapError creates a new non-retryable SyncError that wraps an existing error.
// The wrapped error is accessible via Unwrap() for error chain inspection.
func WrapError(code ErrorCode, message string, cause error) *SyncError {
	return &SyncError{
		Code:      code,
		Message:   message,
		Retryable: false,
		Cause:     cause,
	}
}

// WrapRetryableError creates a new retryable SyncError that wraps an existing error.
// Store failures use this so the orchestrator can re-run the whole batch.
func WrapRetryableError(code ErrorCode, message string, cause error) *SyncError {
	return &SyncError{
		Code:      code,
		Message:   message,
		Retryable: true,
		Cause:     cause,
	}
}

// IsRetryable reports whether err carries a retryable SyncError anywhere in
// its chain.
func IsRetryable(err error) bool {
	var syncErr *SyncError
	if errors.As(err, &syncErr) {
		return syncErr.Retryable
	}
	return false
}
