// Package gorm implements the store interfaces using GORM over
// PostgreSQL.
//
// The implementation builds SQL from descriptor constants (table names,
// column names, sort allow-map renderings) and binds every piece of
// caller input as a parameter. Uniqueness is ultimately enforced by the
// database's UNIQUE constraints; violation errors (code 23505) are
// translated to store.ErrConflict so racing creates behave like the
// pre-insert duplicate check.
package gorm
