// Package wire encodes and decodes the JSON representations of rules, carts
// and results with go-faster/jx.
package wire

import (
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"github.com/shopspring/decimal"

	"github.com/xenking/kart-discounts/internal/domain/discount"
)

// EncodeRule writes r as a JSON object. Labels are informational and ignored
// by DecodeRule.
func EncodeRule(e *jx.Encoder, r discount.Rule) {
	e.ObjStart()
	e.FieldStart("id")
	e.Int64(r.ID)
	e.FieldStart("name")
	e.Str(r.Name)
	e.FieldStart("valueType")
	e.Str(string(r.ValueType))
	e.FieldStart("value")
	e.Str(r.Value.String())
	e.FieldStart("requiredOptionId")
	encodeOptInt64(e, r.RequiredOptionID)
	e.FieldStart("comparator")
	encodeOptStr(e, string(r.Comparator))
	e.FieldStart("threshold")
	encodeOptInt64(e, r.Threshold)
	e.FieldStart("customerType")
	encodeOptStr(e, string(r.RequiredCustomerType))
	e.FieldStart("active")
	e.Bool(r.Active)
	e.FieldStart("priority")
	e.Int(r.Priority)
	e.FieldStart("stopFurther")
	e.Bool(r.StopFurther)
	e.FieldStart("validFrom")
	encodeOptTime(e, r.ValidFrom)
	e.FieldStart("validUntil")
	encodeOptTime(e, r.ValidUntil)

	e.FieldStart("labels")
	e.ObjStart()
	e.FieldStart("valueType")
	e.Str(r.ValueType.Label())
	if r.HasThreshold() {
		e.FieldStart("comparator")
		e.Str(r.Comparator.Label())
	}
	if r.RequiredCustomerType != "" {
		e.FieldStart("customerType")
		e.Str(r.RequiredCustomerType.Label())
	}
	e.ObjEnd()

	e.ObjEnd()
}

// EncodeRules writes rules as a JSON array.
func EncodeRules(e *jx.Encoder, rules []discount.Rule) {
	e.ArrStart()
	for _, r := range rules {
		EncodeRule(e, r)
	}
	e.ArrEnd()
}

// DecodeRule reads a rule object. Unknown fields are skipped.
// Structural checks are left to discount.Validate.
func DecodeRule(d *jx.Decoder) (discount.Rule, error) {
	var r discount.Rule
	err := d.Obj(func(d *jx.Decoder, key string) error {
		var err error
		switch key {
		case "id":
			r.ID, err = d.Int64()
		case "name":
			r.Name, err = d.Str()
		case "valueType":
			var s string
			s, err = d.Str()
			r.ValueType = discount.ValueType(s)
		case "value":
			r.Value, err = decodeDecimal(d)
		case "requiredOptionId":
			r.RequiredOptionID, err = decodeOptInt64(d)
		case "comparator":
			var s string
			if s, err = decodeOptStr(d); err == nil {
				r.Comparator, err = discount.ParseComparator(s)
			}
		case "threshold":
			r.Threshold, err = decodeOptInt64(d)
		case "customerType":
			var s string
			s, err = decodeOptStr(d)
			r.RequiredCustomerType = discount.CustomerType(s)
		case "active":
			r.Active, err = d.Bool()
		case "priority":
			r.Priority, err = d.Int()
		case "stopFurther":
			r.StopFurther, err = d.Bool()
		case "validFrom":
			r.ValidFrom, err = decodeOptTime(d)
		case "validUntil":
			r.ValidUntil, err = decodeOptTime(d)
		default:
			return d.Skip()
		}
		return errors.Wrap(err, key)
	})
	if err != nil {
		return discount.Rule{}, errors.Wrap(err, "decode rule")
	}
	return r, nil
}

// DecodeRules reads a JSON array of rules.
func DecodeRules(d *jx.Decoder) ([]discount.Rule, error) {
	rules := []discount.Rule{}
	err := d.Arr(func(d *jx.Decoder) error {
		r, err := DecodeRule(d)
		if err != nil {
			return err
		}
		rules = append(rules, r)
		return nil
	})
	if err != nil {
		return nil, errors.Wrap(err, "decode rules")
	}
	return rules, nil
}

func encodeOptInt64(e *jx.Encoder, v *int64) {
	if v == nil {
		e.Null()
		return
	}
	e.Int64(*v)
}

func encodeOptStr(e *jx.Encoder, s string) {
	if s == "" {
		e.Null()
		return
	}
	e.Str(s)
}

func encodeOptTime(e *jx.Encoder, t *time.Time) {
	if t == nil {
		e.Null()
		return
	}
	e.Str(t.UTC().Format(time.RFC3339Nano))
}

func decodeOptInt64(d *jx.Decoder) (*int64, error) {
	if d.Next() == jx.Null {
		return nil, d.Null()
	}
	v, err := d.Int64()
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func decodeOptStr(d *jx.Decoder) (string, error) {
	if d.Next() == jx.Null {
		return "", d.Null()
	}
	return d.Str()
}

func decodeOptTime(d *jx.Decoder) (*time.Time, error) {
	s, err := decodeOptStr(d)
	if err != nil || s == "" {
		return nil, err
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// decodeDecimal accepts both "0.20" and 0.20.
func decodeDecimal(d *jx.Decoder) (decimal.Decimal, error) {
	switch d.Next() {
	case jx.String:
		s, err := d.Str()
		if err != nil {
			return decimal.Decimal{}, err
		}
		return decimal.NewFromString(s)
	case jx.Number:
		n, err := d.Num()
		if err != nil {
			return decimal.Decimal{}, err
		}
		return decimal.NewFromString(n.String())
	default:
		return decimal.Decimal{}, errors.Errorf("unexpected %s", d.Next())
	}
}
