package repositories

import "errors"

var (
	// ErrNotFound is returned when no document matches the lookup.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicate is returned when a unique constraint rejects a write.
	ErrDuplicate = errors.New("duplicate record")
	// ErrInvalidID is returned when an ID is not valid for the backend.
	ErrInvalidID = errors.New("invalid id")
)
