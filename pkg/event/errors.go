package event

import (
	"errors"
	"fmt"
)

// ErrNilEvent is returned by stores handed a nil event.
var ErrNilEvent = errors.New("event is nil")

// StorageError represents an error from a storage backend.
type StorageError struct {
	Backend   string // Backend type ("memory", "sqlite", "jsonl", ...)
	Operation string // Operation that failed ("save", "query", "delete", ...)
	Cause     error  // Underlying error
}

// Error implements the error interface.
func (e *StorageError) Error() string {
	return fmt.Sprintf("storage error [backend=%s, operation=%s]: %v", e.Backend, e.Operation, e.Cause)
}

// Unwrap returns the underlying cause error.
func (e *StorageError) Unwrap() error {
	return e.Cause
}

// NewStorageError creates a new StorageError.
func NewStorageError(backend, operation string, cause error) *StorageError {
	return &StorageError{
		Backend:   backend,
		Operation: operation,
		Cause:     cause,
	}
}

// QueryError represents a malformed or unsupported direct query. Unlike
// telemetry-path failures these surface synchronously to the caller.
type QueryError struct {
	Message string
	Cause   error
}

// Error implements the error interface.
func (e *QueryError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("query error: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("query error: %s", e.Message)
}

// Unwrap returns the underlying cause error.
func (e *QueryError) Unwrap() error {
	return e.Cause
}

// NewQueryError creates a new QueryError.
func NewQueryError(message string, cause error) *QueryError {
	return &QueryError{Message: message, Cause: cause}
}
