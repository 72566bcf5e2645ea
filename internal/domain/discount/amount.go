package discount

import (
	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// DefaultMinorUnitExponent converts major units to minor units for
// three-decimal currencies (1 KWD = 1000 fils).
const DefaultMinorUnitExponent int32 = 3

// Amount computes the discount rule grants against runningTotal, in minor
// units. exponent is the number of minor-unit digits of the currency.
//
// Percent amounts are rounded half away from zero to the nearest minor
// unit. Fixed amounts are converted once and capped at runningTotal.
// An unknown value type yields zero and ErrUnknownValueType.
func Amount(rule Rule, runningTotal int64, exponent int32) (int64, error) {
	switch rule.ValueType {
	case ValuePercent:
		return decimal.NewFromInt(runningTotal).Mul(rule.Value).Round(0).IntPart(), nil
	case ValueAmount:
		return min(ToMinor(rule.Value, exponent), runningTotal), nil
	}
	return 0, errors.Wrapf(ErrUnknownValueType, "rule %d: %q", rule.ID, rule.ValueType)
}

// ToMinor converts a major-unit decimal into integer minor units.
func ToMinor(major decimal.Decimal, exponent int32) int64 {
	return major.Shift(exponent).Round(0).IntPart()
}

// FromMinor converts integer minor units into a major-unit decimal.
func FromMinor(minor int64, exponent int32) decimal.Decimal {
	return decimal.New(minor, -exponent)
}
