package store

import (
	"context"

	"github.com/coursewarehq/courseware/pkg/resource"
)

// CredentialStore reads and rewrites the stored secret hash of a
// credential-bearing family. Plaintext secrets never reach this layer;
// verification and hashing happen in the credential handler.
type CredentialStore interface {
	// Hash returns the stored hash for the record with the key,
	// ErrNotFound when the record does not exist
	Hash(ctx context.Context, d *resource.Descriptor, key string) (string, error)

	// SetHash overwrites the stored hash, ErrNotFound when the record
	// does not exist
	SetHash(ctx context.Context, d *resource.Descriptor, key string, hash string) error
}
