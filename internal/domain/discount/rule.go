package discount

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// ValueType selects how a rule's Value is turned into a monetary amount.
type ValueType string

const (
	// ValuePercent treats Value as a fraction of the running total (0.20 = 20%).
	ValuePercent ValueType = "percent"
	// ValueAmount treats Value as a fixed amount in major currency units.
	ValueAmount ValueType = "amount"
)

// Valid reports whether t is a known value type.
func (t ValueType) Valid() bool {
	switch t {
	case ValuePercent, ValueAmount:
		return true
	}
	return false
}

// Label returns a human-readable name.
func (t ValueType) Label() string {
	switch t {
	case ValuePercent:
		return "Percentage"
	case ValueAmount:
		return "Fixed Amount"
	}
	return string(t)
}

// CustomerType distinguishes individual and company customers.
type CustomerType string

const (
	CustomerNormal  CustomerType = "normal"
	CustomerCompany CustomerType = "company"
)

// Valid reports whether c is a known customer type.
func (c CustomerType) Valid() bool {
	switch c {
	case CustomerNormal, CustomerCompany:
		return true
	}
	return false
}

// Label returns a human-readable name.
func (c CustomerType) Label() string {
	switch c {
	case CustomerNormal:
		return "Individual Customer"
	case CustomerCompany:
		return "Company Customer"
	}
	return string(c)
}

// ParseCustomerType parses s, defaulting to CustomerNormal when s is empty.
func ParseCustomerType(s string) (CustomerType, error) {
	if s == "" {
		return CustomerNormal, nil
	}
	c := CustomerType(s)
	if !c.Valid() {
		return "", errors.Wrapf(ErrInvalidCustomerType, "%q", s)
	}
	return c, nil
}

// DefaultPriority is assigned to rules created without an explicit priority.
const DefaultPriority = 100

var (
	// ErrUnknownValueType marks a rule whose value type the calculator does not handle.
	ErrUnknownValueType = errors.New("unknown discount value type")
	// ErrInvalidComparator is returned when parsing an unsupported operator token.
	ErrInvalidComparator = errors.New("invalid comparator")
	// ErrInvalidCustomerType is returned when parsing an unsupported customer type.
	ErrInvalidCustomerType = errors.New("invalid customer type")
	// ErrRuleNotFound is returned by stores when a rule id does not exist.
	ErrRuleNotFound = errors.New("discount rule not found")
	// ErrRuleExists is returned by stores when a rule name is already taken.
	ErrRuleExists = errors.New("discount rule already exists")
)

// Rule is an immutable snapshot of a discount rule record.
//
// Conditions (RequiredOptionID, Comparator+Threshold, RequiredCustomerType)
// are optional and combine with logical AND. A rule with none is global.
type Rule struct {
	ID        int64
	Name      string
	ValueType ValueType
	// Value is a fraction in [0,1] for percent rules and a major-unit
	// amount for fixed rules.
	Value decimal.Decimal

	RequiredOptionID     *int64
	Comparator           Comparator
	Threshold            *int64
	RequiredCustomerType CustomerType

	Active      bool
	Priority    int
	StopFurther bool
	ValidFrom   *time.Time
	ValidUntil  *time.Time
}

// AttributeBased reports whether the rule is tied to an attribute option.
func (r Rule) AttributeBased() bool {
	return r.RequiredOptionID != nil
}

// HasThreshold reports whether both halves of the order threshold are set.
func (r Rule) HasThreshold() bool {
	return r.Comparator != "" && r.Threshold != nil
}

// ActiveAt reports whether the rule is enabled and its validity window
// contains now. Both bounds are inclusive.
func (r Rule) ActiveAt(now time.Time) bool {
	if !r.Active {
		return false
	}
	if r.ValidFrom != nil && now.Before(*r.ValidFrom) {
		return false
	}
	if r.ValidUntil != nil && now.After(*r.ValidUntil) {
		return false
	}
	return true
}

// Less orders rules by ascending priority, then ascending id.
func Less(a, b Rule) bool {
	if a.Priority != b.Priority {
		return a.Priority < b.Priority
	}
	return a.ID < b.ID
}

// clone returns a deep copy so snapshots never share pointers with callers.
func (r Rule) clone() Rule {
	c := r
	if r.RequiredOptionID != nil {
		v := *r.RequiredOptionID
		c.RequiredOptionID = &v
	}
	if r.Threshold != nil {
		v := *r.Threshold
		c.Threshold = &v
	}
	if r.ValidFrom != nil {
		v := *r.ValidFrom
		c.ValidFrom = &v
	}
	if r.ValidUntil != nil {
		v := *r.ValidUntil
		c.ValidUntil = &v
	}
	return c
}

func cloneRules(rules []Rule) []Rule {
	if rules == nil {
		return nil
	}
	out := make([]Rule, len(rules))
	for i, r := range rules {
		out[i] = r.clone()
	}
	return out
}

// Repository supplies the active rule set from persistent storage.
type Repository interface {
	// FetchActive returns rules that are active and valid at now, ordered by
	// priority then id.
	FetchActive(ctx context.Context, now time.Time) ([]Rule, error)
}

// Store is the mutating side of rule persistence.
type Store interface {
	Create(ctx context.Context, r Rule) (int64, error)
	SetActive(ctx context.Context, id int64, active bool) error
	Delete(ctx context.Context, id int64) error
}
