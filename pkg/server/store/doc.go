// Package store provides storage abstractions for the Courseware API.
//
// This package defines interfaces for database operations, allowing the
// gateway endpoints to be decoupled from the specific database
// implementation. This enables easier testing with mocks and potential
// support for different storage backends.
//
// # Available Stores
//
//   - EntityStore: generic per-family CRUD driven by resource.Descriptor
//   - CommentStore: dependent comment collections scoped to a parent
//   - CredentialStore: stored secret hashes for the credential flow
//
// # Errors
//
// Implementations report outcomes through the sentinel errors
// ErrNotFound, ErrConflict and ErrNoFields:
//
//	rec, err := entities.Get(ctx, resource.Students, "s123")
//	if errors.Is(err, store.ErrNotFound) {
//	    // 404
//	}
package store
