package services

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
)

// ErrNotFound signals that the requested row does not exist or is not owned
// by the requesting user. Ownership failures are deliberately
// indistinguishable from absence.
var ErrNotFound = errors.New("not found")

// ValidationError reports a rejected input. No writes are issued once one is
// raised.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func invalidf(field, format string, args ...interface{}) error {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// StorageError wraps a failed store call so handlers can map it to a 500
// without inspecting driver-specific errors.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage: %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// storeErr classifies a gorm error: record-not-found becomes ErrNotFound,
// anything else becomes a StorageError tagged with the failing operation.
func storeErr(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return &StorageError{Op: op, Err: err}
}
