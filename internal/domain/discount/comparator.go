package discount

import "github.com/go-faster/errors"

// Comparator is a relational operator applied to the running total and a
// rule threshold.
type Comparator string

const (
	GreaterThan        Comparator = ">"
	GreaterThanOrEqual Comparator = ">="
	Equal              Comparator = "="
	LessThanOrEqual    Comparator = "<="
	LessThan           Comparator = "<"
	NotEqual           Comparator = "!="
	// NotEqualAlt is the SQL spelling of NotEqual.
	NotEqualAlt Comparator = "<>"
)

// ParseComparator validates s. The empty string yields the unset comparator.
func ParseComparator(s string) (Comparator, error) {
	c := Comparator(s)
	if c == "" || c.Valid() {
		return c, nil
	}
	return "", errors.Wrapf(ErrInvalidComparator, "%q", s)
}

// Valid reports whether c is one of the supported operators.
func (c Comparator) Valid() bool {
	switch c {
	case GreaterThan, GreaterThanOrEqual, Equal, LessThanOrEqual, LessThan, NotEqual, NotEqualAlt:
		return true
	}
	return false
}

// Evaluate applies the operator as "value <op> threshold".
// Operators are validated when rules are built, so an unknown one is false.
func (c Comparator) Evaluate(value, threshold int64) bool {
	switch c {
	case GreaterThan:
		return value > threshold
	case GreaterThanOrEqual:
		return value >= threshold
	case Equal:
		return value == threshold
	case LessThanOrEqual:
		return value <= threshold
	case LessThan:
		return value < threshold
	case NotEqual, NotEqualAlt:
		return value != threshold
	}
	return false
}

// Label returns a human-readable name.
func (c Comparator) Label() string {
	switch c {
	case GreaterThan:
		return "Greater Than"
	case GreaterThanOrEqual:
		return "Greater Than or Equal"
	case Equal:
		return "Equal"
	case LessThanOrEqual:
		return "Less Than or Equal"
	case LessThan:
		return "Less Than"
	case NotEqual, NotEqualAlt:
		return "Not Equal"
	}
	return string(c)
}
