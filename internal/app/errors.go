package app

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/hylla/tavla/internal/domain"
)

// ErrNotFound and related errors describe validation and runtime failures.
var (
	ErrNotFound     = errors.New("not found")
	ErrInvalidInput = errors.New("invalid input")
)

// StoreError reports a non-2xx response from the remote store.
type StoreError struct {
	Method string
	Path   string
	Status int
}

// Error returns the error text.
func (e *StoreError) Error() string {
	return fmt.Sprintf("remote store %s %s: status %d", e.Method, e.Path, e.Status)
}

// Is lets a 404 match ErrNotFound.
func (e *StoreError) Is(target error) bool {
	return target == ErrNotFound && e.Status == http.StatusNotFound
}

// ValidationError names the field that blocked an action.
type ValidationError struct {
	Field string
	Err   error
}

// Error returns the error text.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %v", e.Field, e.Err)
}

// Unwrap returns the domain error.
func (e *ValidationError) Unwrap() error {
	return e.Err
}

// validationError maps a domain validation error to the field it concerns.
func validationError(err error) error {
	field := ""
	switch {
	case errors.Is(err, domain.ErrInvalidTitle):
		field = "title"
	case errors.Is(err, domain.ErrInvalidDueDate):
		field = "dueDate"
	case errors.Is(err, domain.ErrInvalidCategory):
		field = "category"
	case errors.Is(err, domain.ErrInvalidPriority):
		field = "priority"
	case errors.Is(err, domain.ErrInvalidStatus):
		field = "status"
	case errors.Is(err, domain.ErrInvalidSubtaskIndex):
		field = "subtasks"
	default:
		return err
	}
	return &ValidationError{Field: field, Err: err}
}

func isNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
