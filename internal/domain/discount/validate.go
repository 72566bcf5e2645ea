package discount

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// MaxFixedAmount caps fixed-amount rules, in major units.
var MaxFixedAmount = decimal.NewFromInt(1000)

// ValidationError describes a rule field that failed validation.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid rule %s: %s", e.Field, e.Reason)
}

// Validate checks that r is well formed before it is persisted.
func Validate(r Rule) error {
	if r.Name == "" {
		return &ValidationError{Field: "name", Reason: "required"}
	}

	switch r.ValueType {
	case ValuePercent:
		if r.Value.IsNegative() || r.Value.GreaterThan(decimal.NewFromInt(1)) {
			return &ValidationError{Field: "value", Reason: "percent must be a fraction between 0 and 1"}
		}
	case ValueAmount:
		if r.Value.IsNegative() {
			return &ValidationError{Field: "value", Reason: "amount must not be negative"}
		}
		if r.Value.GreaterThan(MaxFixedAmount) {
			return &ValidationError{Field: "value", Reason: "amount exceeds " + MaxFixedAmount.String()}
		}
	default:
		return &ValidationError{Field: "valueType", Reason: fmt.Sprintf("unsupported %q", r.ValueType)}
	}

	if r.Comparator != "" && !r.Comparator.Valid() {
		return &ValidationError{Field: "comparator", Reason: fmt.Sprintf("unsupported %q", r.Comparator)}
	}
	if (r.Comparator == "") != (r.Threshold == nil) {
		return &ValidationError{Field: "threshold", Reason: "comparator and threshold must be set together"}
	}
	if r.Threshold != nil && *r.Threshold < 0 {
		return &ValidationError{Field: "threshold", Reason: "must not be negative"}
	}
	if r.RequiredCustomerType != "" && !r.RequiredCustomerType.Valid() {
		return &ValidationError{Field: "customerType", Reason: fmt.Sprintf("unsupported %q", r.RequiredCustomerType)}
	}
	if r.Priority < 0 {
		return &ValidationError{Field: "priority", Reason: "must not be negative"}
	}
	if r.ValidFrom != nil && r.ValidUntil != nil && r.ValidUntil.Before(*r.ValidFrom) {
		return &ValidationError{Field: "validUntil", Reason: "must not be before validFrom"}
	}
	return nil
}
