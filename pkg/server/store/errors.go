package store

import "errors"

var (
	// ErrNotFound indicates the referenced key resolves to no record
	ErrNotFound = errors.New("record not found")

	// ErrConflict indicates a uniqueness constraint was violated, either
	// by the pre-insert check or by the storage constraint itself
	ErrConflict = errors.New("duplicate value for unique field")

	// ErrNoFields indicates an update supplied nothing to change
	ErrNoFields = errors.New("no fields to update")
)
