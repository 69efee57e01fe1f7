package services

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"myflix/internal/repositories"
)

var (
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrConflict     = errors.New("already exists")
	ErrNotFound     = errors.New("not found")
	ErrUpstream     = errors.New("upstream failure")
)

// ValidationError lists every field that failed validation, keyed by the
// field's JSON name.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	names := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		names = append(names, name)
	}
	sort.Strings(names)

	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, fmt.Sprintf("%s %s", name, e.Fields[name]))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func newValidationError(field, msg string) *ValidationError {
	return &ValidationError{Fields: map[string]string{field: msg}}
}

// translateStoreError maps a repository error onto the service taxonomy.
// subject names the record for client-facing messages, e.g. "user alice123".
func translateStoreError(err error, subject string) error {
	switch {
	case errors.Is(err, repositories.ErrNotFound):
		return fmt.Errorf("%s %w", subject, ErrNotFound)
	case errors.Is(err, repositories.ErrDuplicate):
		return fmt.Errorf("%s %w", subject, ErrConflict)
	case errors.Is(err, repositories.ErrInvalidID):
		return newValidationError("MovieID", "is not a valid id")
	default:
		return fmt.Errorf("%w: %w", ErrUpstream, err)
	}
}
