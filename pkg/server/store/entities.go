package store

import (
	"context"

	"github.com/coursewarehq/courseware/pkg/resource"
)

// Record is one resource row as exposed by the API: column name to
// value, with list fields already decoded and secret fields absent.
type Record = map[string]interface{}

// ListQuery carries the optional listing inputs. Sort and Order are raw
// caller tokens; the store resolves them against the family descriptor
// and silently falls back to defaults.
type ListQuery struct {
	Search string
	Sort   string
	Order  string
}

// EntityStore abstracts persistence for all resource families. Every
// method takes the family descriptor; no per-family store exists.
type EntityStore interface {
	// List returns records matching the query, filtered and sorted
	List(ctx context.Context, d *resource.Descriptor, q ListQuery) ([]Record, error)

	// Get retrieves a single record by key, ErrNotFound when absent
	Get(ctx context.Context, d *resource.Descriptor, key string) (Record, error)

	// Exists reports whether a record with the key exists
	Exists(ctx context.Context, d *resource.Descriptor, key string) (bool, error)

	// DuplicateField returns the name of the first declared-unique field
	// whose value collides with an existing record, or "". excludeKey,
	// when non-empty, exempts the record being updated from the check.
	DuplicateField(ctx context.Context, d *resource.Descriptor, values map[string]string, excludeKey string) (string, error)

	// Create inserts rec and returns the stored record including any
	// database-assigned key. A storage uniqueness violation surfaces as
	// ErrConflict.
	Create(ctx context.Context, d *resource.Descriptor, rec Record) (Record, error)

	// Update applies the present-only changes to the record with the
	// key. Returns the rows-affected count for request logging; zero
	// rows (identical values) is not an error. ErrNoFields when changes
	// is empty, ErrConflict on a storage uniqueness violation.
	Update(ctx context.Context, d *resource.Descriptor, key string, changes Record) (int64, error)

	// Delete removes the record and all its dependent comments in one
	// transaction. ErrNotFound when the key does not resolve.
	Delete(ctx context.Context, d *resource.Descriptor, key string) error
}
