package resource

//go:generate go run github.com/dmarkham/enumer -type Order -trimprefix Order -transform lower -output order_enumer.go

// Order is a listing sort direction.
type Order int

const (
	OrderAsc Order = iota
	OrderDesc
)

// orderKeywords maps each direction to its SQL rendering. ORDER BY is
// always built from this table, never from caller-supplied text.
var orderKeywords = map[Order]string{
	OrderAsc:  "ASC",
	OrderDesc: "DESC",
}

// Keyword returns the SQL keyword for the direction.
func (i Order) Keyword() string {
	return orderKeywords[i]
}
