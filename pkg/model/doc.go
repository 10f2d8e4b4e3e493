// Package model defines the typed database values shared across the
// gateway. Resource family rows travel as descriptor-driven store
// records; only the comment collection and list-valued columns need
// concrete types here.
//
//   - Comment: discussion comments scoped to a (parent_kind, parent_id)
//   - StringList: list-valued attribute encoding to JSON text on write
//     and decoding on read, so handlers only ever see []string
//
// The canonical DDL lives in pkg/db/schema.sql.
package model
