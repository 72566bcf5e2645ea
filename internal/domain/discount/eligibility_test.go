package discount

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/xenking/kart-discounts/internal/domain/cart"
)

func TestQualifies(t *testing.T) {
	selected := cart.OptionSet{7: {}, 42: {}}

	withOption := func(id int64) Rule {
		r := percentRule(1, 1, "0.10")
		r.RequiredOptionID = ptr(id)
		return r
	}
	withThreshold := func(op Comparator, v int64) Rule {
		r := percentRule(1, 1, "0.10")
		r.Comparator = op
		r.Threshold = ptr(v)
		return r
	}
	withCustomer := func(c CustomerType) Rule {
		r := percentRule(1, 1, "0.10")
		r.RequiredCustomerType = c
		return r
	}
	combined := withThreshold(GreaterThan, 1_000)
	combined.RequiredOptionID = ptr(int64(42))
	combined.RequiredCustomerType = CustomerCompany

	tests := []struct {
		name     string
		rule     Rule
		running  int64
		customer CustomerType
		want     bool
	}{
		{"global", percentRule(1, 1, "0.10"), 1, CustomerNormal, true},
		{"option selected", withOption(42), 1, CustomerNormal, true},
		{"option missing", withOption(8), 1, CustomerNormal, false},
		{"threshold met", withThreshold(GreaterThanOrEqual, 130_000), 130_000, CustomerNormal, true},
		{"threshold missed", withThreshold(GreaterThanOrEqual, 130_000), 129_999, CustomerNormal, false},
		{"comparator without threshold ignored", Rule{Comparator: GreaterThan, ValueType: ValuePercent}, 1, CustomerNormal, true},
		{"customer match", withCustomer(CustomerCompany), 1, CustomerCompany, true},
		{"customer mismatch", withCustomer(CustomerCompany), 1, CustomerNormal, false},
		{"all conditions", combined, 2_000, CustomerCompany, true},
		{"all but threshold", combined, 500, CustomerCompany, false},
		{"all but customer", combined, 2_000, CustomerNormal, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Qualifies(tt.rule, tt.running, tt.customer, selected))
		})
	}
}
