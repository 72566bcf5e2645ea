package discount

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAmount(t *testing.T) {
	tests := []struct {
		name    string
		rule    Rule
		running int64
		want    int64
	}{
		{"percent exact", percentRule(1, 1, "0.20"), 100_000, 20_000},
		{"percent rounds down", percentRule(1, 1, "0.05"), 1_005, 50},
		{"percent half rounds up", percentRule(1, 1, "0.05"), 1_010, 51},
		{"percent of cascaded total", percentRule(1, 1, "0.10"), 80_000, 8_000},
		{"percent full", percentRule(1, 1, "1"), 7_777, 7_777},
		{"fixed converts major units", amountRule(1, 1, "10.000"), 100_000, 10_000},
		{"fixed fractional", amountRule(1, 1, "2.5"), 100_000, 2_500},
		{"fixed capped", amountRule(1, 1, "10"), 5_000, 5_000},
		{"zero running", amountRule(1, 1, "10"), 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Amount(tt.rule, tt.running, DefaultMinorUnitExponent)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestAmount_UnknownValueType(t *testing.T) {
	r := percentRule(9, 1, "0.5")
	r.ValueType = "bogus"

	got, err := Amount(r, 1_000, DefaultMinorUnitExponent)
	require.ErrorIs(t, err, ErrUnknownValueType)
	assert.Zero(t, got)
}

func TestMinorUnitConversion(t *testing.T) {
	assert.Equal(t, int64(1_000_000), ToMinor(d("1000"), 3))
	assert.Equal(t, int64(1_235), ToMinor(d("1.2345"), 3))
	assert.Equal(t, "12.345", FromMinor(12_345, 3).String())
	assert.Equal(t, "1.5", FromMinor(150, 2).String())
}
