package types

// Operator compares a ticket field with a value in a search.
type Operator string

const (
	OpEqual       Operator = "="
	OpNotEqual    Operator = "!="
	OpGreaterThan Operator = ">"
	OpLessThan    Operator = "<"
	OpLike        Operator = " LIKE "
	OpNotLike     Operator = " NOT LIKE "
	OpIs          Operator = " IS "
	OpIsNot       Operator = " IS NOT "
)

// Condition is one field comparison of a ticket search. Set
// CustomField for custom field names; the query builders wrap them in
// the CF.{...} form RT requires.
type Condition struct {
	Field       string
	Op          Operator
	Value       string
	CustomField bool
}

// Eq is shorthand for an equality condition.
func Eq(field, value string) Condition {
	return Condition{Field: field, Op: OpEqual, Value: value}
}

// CF is shorthand for an equality condition on a custom field.
func CF(name, value string) Condition {
	return Condition{Field: name, Op: OpEqual, Value: value, CustomField: true}
}

// SearchOptions narrows and orders a ticket search. The zero value
// searches the legacy client's default queue, or every queue on
// REST 2.0.
type SearchOptions struct {
	// Queue restricts the search to one queue. AllQueues lifts the
	// restriction entirely.
	Queue     string
	AllQueues bool

	// RawQuery is a complete TicketSQL expression ANDed with the
	// generated conditions. Callers are responsible for quoting.
	RawQuery string

	Conditions []Condition

	// Order names the sort field, prefixed with - for descending
	// (e.g. "-Created").
	Order string

	// Fields lists extra fields to inline on each result, for the
	// interfaces that support sparse responses.
	Fields []string
}
