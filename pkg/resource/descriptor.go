package resource

// FieldKind selects the validation applied to a field's value.
type FieldKind int

const (
	// Text is sanitized free text
	Text FieldKind = iota
	// Email must parse as a plain address
	Email
	// URL must be an absolute http(s) URL
	URL
	// Date must be a strict YYYY-MM-DD value
	Date
	// List is a JSON array of strings, serialized at the repository boundary
	List
	// Secret is write-only input hashed before storage, never listed
	Secret
)

// KeyGen describes how a family's identifying key comes to exist.
type KeyGen int

const (
	// KeyNatural keys are supplied by the caller at create time
	KeyNatural KeyGen = iota
	// KeyUUID keys are generated by the server before insert
	KeyUUID
	// KeySerial keys are assigned by the database on insert
	KeySerial
)

// Field describes one attribute of a resource family.
type Field struct {
	Name       string
	Kind       FieldKind
	Required   bool
	Unique     bool
	Searchable bool
}

// Key identifies records of a family. Column is both the body/query
// parameter name and the column name.
type Key struct {
	Column string
	Gen    KeyGen
}

// Comments marks a family as owning a dependent comment collection.
// Aliases lists legacy parent-parameter names still accepted alongside
// "parent" (e.g. "assignment_id").
type Comments struct {
	Aliases []string
}

// Credential marks a family as carrying a verified-change secret.
type Credential struct {
	HashColumn string
}

// Descriptor is the data-driven configuration of one resource family.
// The gateway engine is generic; everything family-specific lives here.
type Descriptor struct {
	// Name is the family token in URLs and the table name
	Name string

	Key    Key
	Fields []Field

	// SortFields maps each allow-listed sort token to the column literal
	// rendered into ORDER BY. Lookup through this map is mandatory even
	// after validation.
	SortFields   map[string]string
	DefaultSort  string
	DefaultOrder Order

	// RequireRole names the role required to touch this family, or ""
	RequireRole string

	// HasUpdatedAt marks families whose rows carry an updated_at column
	// maintained on every update.
	HasUpdatedAt bool

	Comments   *Comments
	Credential *Credential
}

// Field returns the named field, or nil.
func (d *Descriptor) Field(name string) *Field {
	for i := range d.Fields {
		if d.Fields[i].Name == name {
			return &d.Fields[i]
		}
	}
	return nil
}

// UniqueFields returns the declared-unique fields in declaration order.
func (d *Descriptor) UniqueFields() []Field {
	var out []Field
	for _, f := range d.Fields {
		if f.Unique {
			out = append(out, f)
		}
	}
	return out
}

// SearchColumns returns the columns matched by the free-text search
// predicate.
func (d *Descriptor) SearchColumns() []string {
	var out []string
	for _, f := range d.Fields {
		if f.Searchable {
			out = append(out, f.Name)
		}
	}
	return out
}

// ListColumns returns the columns included in list and get responses.
// Secret fields are excluded; the key column and created_at always
// appear, updated_at when the family maintains one.
func (d *Descriptor) ListColumns() []string {
	out := []string{}
	if d.Field(d.Key.Column) == nil {
		out = append(out, d.Key.Column)
	}
	for _, f := range d.Fields {
		if f.Kind == Secret {
			continue
		}
		out = append(out, f.Name)
	}
	out = append(out, "created_at")
	if d.HasUpdatedAt {
		out = append(out, "updated_at")
	}
	return out
}

// SortColumn resolves a caller-supplied sort token against the
// allow-map. ok is false for any token not in the map.
func (d *Descriptor) SortColumn(token string) (column string, ok bool) {
	column, ok = d.SortFields[token]
	return
}

// ResolveSort validates sort and order tokens, falling back to the
// family defaults. Listing never errors on bad sort input.
func (d *Descriptor) ResolveSort(sortToken, orderToken string) (column string, order Order) {
	column, ok := d.SortFields[sortToken]
	if !ok {
		column = d.SortFields[d.DefaultSort]
	}
	order, err := OrderString(orderToken)
	if err != nil {
		order = d.DefaultOrder
	}
	return column, order
}
