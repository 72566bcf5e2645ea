package discount

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate(t *testing.T) {
	from := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	until := from.Add(-time.Hour)

	valid := percentRule(1, 1, "0.20")
	mod := func(f func(*Rule)) Rule {
		r := valid
		f(&r)
		return r
	}

	tests := []struct {
		name  string
		rule  Rule
		field string
	}{
		{"valid percent", valid, ""},
		{"valid amount", amountRule(1, 1, "1000"), ""},
		{"valid threshold", mod(func(r *Rule) { r.Comparator = NotEqualAlt; r.Threshold = ptr(int64(0)) }), ""},
		{"missing name", mod(func(r *Rule) { r.Name = "" }), "name"},
		{"percent above one", mod(func(r *Rule) { r.Value = d("1.01") }), "value"},
		{"percent negative", mod(func(r *Rule) { r.Value = d("-0.1") }), "value"},
		{"amount too large", amountRule(1, 1, "1000.001"), "value"},
		{"amount negative", amountRule(1, 1, "-1"), "value"},
		{"unknown type", mod(func(r *Rule) { r.ValueType = "bogus" }), "valueType"},
		{"bad comparator", mod(func(r *Rule) { r.Comparator = "=="; r.Threshold = ptr(int64(1)) }), "comparator"},
		{"comparator only", mod(func(r *Rule) { r.Comparator = GreaterThan }), "threshold"},
		{"threshold only", mod(func(r *Rule) { r.Threshold = ptr(int64(1)) }), "threshold"},
		{"negative threshold", mod(func(r *Rule) { r.Comparator = GreaterThan; r.Threshold = ptr(int64(-1)) }), "threshold"},
		{"bad customer", mod(func(r *Rule) { r.RequiredCustomerType = "vip" }), "customerType"},
		{"negative priority", mod(func(r *Rule) { r.Priority = -1 }), "priority"},
		{"inverted window", mod(func(r *Rule) { r.ValidFrom = &from; r.ValidUntil = &until }), "validUntil"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.rule)
			if tt.field == "" {
				require.NoError(t, err)
				return
			}
			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.field, verr.Field)
		})
	}
}
