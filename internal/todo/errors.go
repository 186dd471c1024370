package todo

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when no task has the requested id.
	ErrNotFound = errors.New("task not found")
	// ErrCorruptStore matches any *CorruptStoreError.
	ErrCorruptStore = errors.New("corrupt task store")
	// ErrPersistence matches any *PersistenceError.
	ErrPersistence = errors.New("task store i/o failure")
	// ErrIDExhausted is returned by Add when the highest id is math.MaxInt.
	ErrIDExhausted = errors.New("task id space exhausted")
)

// CorruptStoreError reports a task document that exists but cannot be parsed.
type CorruptStoreError struct {
	Path string
	Err  error
}

func (e *CorruptStoreError) Error() string {
	return fmt.Sprintf("corrupt task file %s: %v", e.Path, e.Err)
}

// Unwrap returns the underlying error.
func (e *CorruptStoreError) Unwrap() error {
	return e.Err
}

// Is lets errors.Is match ErrCorruptStore.
func (e *CorruptStoreError) Is(target error) bool {
	return target == ErrCorruptStore
}

// PersistenceError reports an I/O failure while reading or writing the document.
type PersistenceError struct {
	Op   string // "read" or "write"
	Path string
	Err  error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s task file %s: %v", e.Op, e.Path, e.Err)
}

// Unwrap returns the underlying error.
func (e *PersistenceError) Unwrap() error {
	return e.Err
}

// Is lets errors.Is match ErrPersistence.
func (e *PersistenceError) Is(target error) bool {
	return target == ErrPersistence
}

// ValidationError represents a document invariant violation with context.
type ValidationError struct {
	Path string // JSON path to the offending value
	Err  error
}

func (e *ValidationError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("%s: %s", e.Path, e.Err)
	}
	return e.Err.Error()
}

// Unwrap returns the underlying error.
func (e *ValidationError) Unwrap() error {
	return e.Err
}

func notFound(id int) error {
	return fmt.Errorf("task %d: %w", id, ErrNotFound)
}
