package resource

// The four resource families of the course-management application. Each
// concrete family is configuration, not code: the gateway engine reads
// these descriptors and nothing else.

// Students are keyed by the university-issued student_id and carry the
// only credential in the system. The admin frontend is the sole consumer.
var Students = &Descriptor{
	Name: "students",
	Key:  Key{Column: "student_id", Gen: KeyNatural},
	Fields: []Field{
		{Name: "student_id", Kind: Text, Required: true, Unique: true, Searchable: true},
		{Name: "name", Kind: Text, Required: true, Searchable: true},
		{Name: "email", Kind: Email, Required: true, Unique: true, Searchable: true},
		{Name: "password", Kind: Secret, Required: true},
	},
	SortFields: map[string]string{
		"name":       "name",
		"student_id": "student_id",
		"email":      "email",
	},
	DefaultSort:  "student_id",
	DefaultOrder: OrderAsc,
	RequireRole:  "admin",
	Credential:   &Credential{HashColumn: "password"},
}

// Assignments use a server-generated key and carry a files list.
var Assignments = &Descriptor{
	Name: "assignments",
	Key:  Key{Column: "id", Gen: KeyUUID},
	Fields: []Field{
		{Name: "title", Kind: Text, Required: true, Searchable: true},
		{Name: "description", Kind: Text, Required: true, Searchable: true},
		{Name: "due_date", Kind: Date, Required: true},
		{Name: "files", Kind: List},
	},
	SortFields: map[string]string{
		"title":      "title",
		"due_date":   "due_date",
		"created_at": "created_at",
	},
	DefaultSort:  "created_at",
	DefaultOrder: OrderAsc,
	HasUpdatedAt: true,
	Comments:     &Comments{Aliases: []string{"assignment_id"}},
}

// Resources are shared links with a database-assigned integer key.
var Resources = &Descriptor{
	Name: "resources",
	Key:  Key{Column: "id", Gen: KeySerial},
	Fields: []Field{
		{Name: "title", Kind: Text, Required: true, Searchable: true},
		{Name: "description", Kind: Text, Searchable: true},
		{Name: "link", Kind: URL, Required: true},
	},
	SortFields: map[string]string{
		"title":      "title",
		"created_at": "created_at",
	},
	DefaultSort:  "created_at",
	DefaultOrder: OrderDesc,
	Comments:     &Comments{Aliases: []string{"resource_id"}},
}

// Weeks hold weekly content keyed by a caller-supplied week_id.
var Weeks = &Descriptor{
	Name: "weeks",
	Key:  Key{Column: "week_id", Gen: KeyNatural},
	Fields: []Field{
		{Name: "week_id", Kind: Text, Required: true, Unique: true},
		{Name: "title", Kind: Text, Required: true, Searchable: true},
		{Name: "start_date", Kind: Date, Required: true},
		{Name: "description", Kind: Text, Required: true, Searchable: true},
		{Name: "links", Kind: List},
	},
	SortFields: map[string]string{
		"title":      "title",
		"start_date": "start_date",
		"created_at": "created_at",
	},
	DefaultSort:  "start_date",
	DefaultOrder: OrderAsc,
	HasUpdatedAt: true,
	Comments:     &Comments{Aliases: []string{"week_id"}},
}

var families = []*Descriptor{Students, Assignments, Resources, Weeks}

// Families returns every registered descriptor.
func Families() []*Descriptor {
	return families
}

// Lookup resolves a family token from a request path.
func Lookup(name string) (*Descriptor, bool) {
	for _, d := range families {
		if d.Name == name {
			return d, true
		}
	}
	return nil, false
}
