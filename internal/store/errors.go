package store

import (
	"errors"
	"fmt"
)

// Common store errors used across all repository implementations.
var (
	// ErrInvalidEntity is returned when an entity fails validation before
	// being stored. Check the wrapped error for specific validation details.
	ErrInvalidEntity = errors.New("invalid entity")

	// ErrBackendUnavailable is returned when the storage backend cannot be
	// reached or fails at the infrastructure level (connection refused,
	// I/O failure, driver error). Absence of an entity is never reported
	// through this error; lookups for missing IDs return nil results.
	ErrBackendUnavailable = errors.New("storage backend unavailable")

	// ErrUnknownBackend is returned when configuration names a repository
	// backend that does not exist. This is a configuration error and is
	// surfaced on first use rather than silently falling back to a default.
	ErrUnknownBackend = errors.New("unknown repository backend")
)

// IsValidationError checks if the error is any kind of validation error,
// including the domain sentinel errors wrapped by repositories.
func IsValidationError(err error) bool {
	return errors.Is(err, ErrInvalidEntity)
}

// IsUnavailableError checks if the error reports an unreachable or
// failing storage backend.
func IsUnavailableError(err error) bool {
	return errors.Is(err, ErrBackendUnavailable)
}

// StoreError is a custom error type for repository errors with additional
// context. Kind carries one of the sentinel errors above so callers can
// keep using errors.Is against the sentinels while the original driver
// error stays available through Unwrap.
type StoreError struct {
	Kind      error  // Sentinel classifying the failure (e.g., ErrBackendUnavailable)
	Entity    string // The entity type (e.g., "task")
	Operation string // The operation that failed (e.g., "create", "update")
	Err       error  // Original error
}

// Error implements the error interface for StoreError.
func (e *StoreError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf(
			"%s operation on %s failed: %v: %v",
			e.Operation,
			e.Entity,
			e.Kind,
			e.Err,
		)
	}
	return fmt.Sprintf("%s operation on %s failed: %v", e.Operation, e.Entity, e.Kind)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *StoreError) Unwrap() error {
	return e.Err
}

// Is reports whether the error matches the sentinel stored in Kind,
// so errors.Is(err, ErrBackendUnavailable) works on wrapped driver errors.
func (e *StoreError) Is(target error) bool {
	return errors.Is(e.Kind, target)
}

// NewStoreError creates a new StoreError with the given sentinel kind,
// entity, operation, and wrapped error.
func NewStoreError(kind error, entity, operation string, err error) *StoreError {
	return &StoreError{
		Kind:      kind,
		Entity:    entity,
		Operation: operation,
		Err:       err,
	}
}
