package main

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xenking/kart-discounts/db"
	"github.com/xenking/kart-discounts/internal/domain/discount"
)

func TestParsePack_Embedded(t *testing.T) {
	now := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

	rules, err := parsePack(db.SeedRules, now, discount.DefaultMinorUnitExponent)
	require.NoError(t, err)
	require.Len(t, rules, 11)

	flash := rules[0]
	assert.Equal(t, "Flash Sale - Limited Time", flash.Name)
	assert.True(t, flash.StopFurther)
	assert.Equal(t, discount.GreaterThanOrEqual, flash.Comparator)
	require.NotNil(t, flash.Threshold)
	assert.Equal(t, int64(275_000), *flash.Threshold)
	require.NotNil(t, flash.ValidUntil)
	assert.Equal(t, now.Add(7*24*time.Hour), *flash.ValidUntil)

	var bulk discount.Rule
	for _, r := range rules {
		if r.Name == "Bulk Order Discount" {
			bulk = r
		}
	}
	assert.False(t, bulk.Active)
}

func TestParsePack_Invalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"bad yaml", "rules: [\n"},
		{"bad value", "rules:\n  - name: X\n    type: percent\n    value: abc\n"},
		{"percent over one", "rules:\n  - name: X\n    type: percent\n    value: \"20\"\n"},
		{"bad comparator", "rules:\n  - name: X\n    type: percent\n    value: \"0.1\"\n    comparator: \"=>\"\n    threshold: \"1\"\n"},
		{"threshold without comparator", "rules:\n  - name: X\n    type: amount\n    value: \"1\"\n    threshold: \"1\"\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parsePack([]byte(tt.yaml), time.Now(), 3)
			assert.Error(t, err)
		})
	}
}
