package wire

import (
	"strconv"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"

	"github.com/xenking/kart-discounts/internal/domain/cart"
)

// CalculateRequest is the body of a discount calculation call.
type CalculateRequest struct {
	CustomerType string
	Lines        []cart.Line
}

// DecodeCalculateRequest reads
// {"customerType": "...", "items": [{"productId", "quantity", "amount", "selections"}]}.
func DecodeCalculateRequest(d *jx.Decoder) (CalculateRequest, error) {
	var req CalculateRequest
	err := d.Obj(func(d *jx.Decoder, key string) error {
		switch key {
		case "customerType":
			s, err := decodeOptStr(d)
			req.CustomerType = s
			return errors.Wrap(err, key)
		case "items":
			req.Lines = []cart.Line{}
			return errors.Wrap(d.Arr(func(d *jx.Decoder) error {
				l, err := decodeLine(d)
				if err != nil {
					return errors.Wrapf(err, "item %d", len(req.Lines))
				}
				req.Lines = append(req.Lines, l)
				return nil
			}), key)
		default:
			return d.Skip()
		}
	})
	if err != nil {
		return CalculateRequest{}, errors.Wrap(err, "decode calculate request")
	}
	return req, nil
}

func decodeLine(d *jx.Decoder) (cart.Line, error) {
	var l cart.Line
	err := d.Obj(func(d *jx.Decoder, key string) error {
		var err error
		switch key {
		case "productId":
			l.ProductID, err = d.Int64()
		case "quantity":
			l.Quantity, err = d.Int()
		case "amount":
			l.Amount, err = d.Int64()
		case "selections":
			l.Selections, err = decodeSelections(d)
		default:
			return d.Skip()
		}
		return errors.Wrap(err, key)
	})
	return l, err
}

// decodeSelections reads {"<attributeId>": optionId}.
func decodeSelections(d *jx.Decoder) (map[int64]int64, error) {
	if d.Next() == jx.Null {
		return nil, d.Null()
	}
	sel := make(map[int64]int64)
	err := d.Obj(func(d *jx.Decoder, key string) error {
		attr, err := strconv.ParseInt(key, 10, 64)
		if err != nil {
			return errors.Wrapf(err, "attribute id %q", key)
		}
		opt, err := d.Int64()
		if err != nil {
			return errors.Wrapf(err, "option for attribute %d", attr)
		}
		sel[attr] = opt
		return nil
	})
	return sel, err
}

// DecodeActive reads {"active": bool}.
func DecodeActive(d *jx.Decoder) (bool, error) {
	var (
		active bool
		seen   bool
	)
	err := d.Obj(func(d *jx.Decoder, key string) error {
		if key != "active" {
			return d.Skip()
		}
		seen = true
		v, err := d.Bool()
		active = v
		return err
	})
	if err != nil {
		return false, errors.Wrap(err, "decode active")
	}
	if !seen {
		return false, errors.New("decode active: field is required")
	}
	return active, nil
}
