// Package resource defines the per-family descriptors that drive the
// generic CRUD gateway.
//
// The application serves four resource families (students, assignments,
// resources, weeks) that share one engine. A Descriptor captures
// everything that differs between them: the identifying key and how it
// is generated, the field list with validation kinds and uniqueness,
// the sort allow-map, the searchable columns, comment ownership, and
// the optional credential attribute. Adding a family means adding a
// descriptor, not handlers.
package resource
