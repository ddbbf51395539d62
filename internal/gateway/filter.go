package gateway

import "strings"

// Filter is one query predicate. The backend guarantees nothing beyond
// equality and null-ness filtering, so only those are expressible.
type Filter struct {
	Column string
	pred   string
}

// Eq filters rows where column equals value.
func Eq(column, value string) Filter {
	return Filter{Column: column, pred: "eq." + value}
}

// In filters rows where column is one of values.
func In(column string, values []string) Filter {
	return Filter{Column: column, pred: "in.(" + strings.Join(values, ",") + ")"}
}

// IsNull filters rows where column is null.
func IsNull(column string) Filter {
	return Filter{Column: column, pred: "is.null"}
}

// Order is a single sort key. The backend orders by one column per key,
// ascending unless Desc is set.
type Order struct {
	Column string
	Desc   bool
}

func (o Order) encode() string {
	if o.Desc {
		return o.Column + ".desc"
	}
	return o.Column + ".asc"
}
