package services

import (
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/repairhub/repairhub-api/repositories"
)

// Error categories returned by the services. Callers match them with errors.Is.
var (
	ErrNotFound   = errors.New("not found")
	ErrConflict   = errors.New("conflict")
	ErrValidation = errors.New("validation failed")
	ErrPermission = errors.New("permission denied")
	ErrStorage    = errors.New("storage failure")
)

// NewStorageError wraps a persistence failure of op. A missing row becomes ErrNotFound.
func NewStorageError(op string, err error) error {
	if repositories.IsNotFound(err) {
		return fmt.Errorf("%w: %s", ErrNotFound, op)
	}
	return fmt.Errorf("%w: %s: %w", ErrStorage, op, err)
}

func notFoundError(entity string, id uuid.UUID) error {
	return fmt.Errorf("%w: %s %s", ErrNotFound, entity, id)
}

func conflictError(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrConflict, fmt.Sprintf(format, args...))
}

func validationError(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

func permissionError(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrPermission, fmt.Sprintf(format, args...))
}

// lookupError converts the error of a lookup by id into ErrNotFound or a storage error
func lookupError(entity string, id uuid.UUID, err error) error {
	if repositories.IsNotFound(err) {
		return notFoundError(entity, id)
	}
	return NewStorageError("load "+entity, err)
}
