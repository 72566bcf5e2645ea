package wire

import (
	"github.com/go-faster/jx"

	"github.com/xenking/kart-discounts/internal/domain/discount"
)

// EncodeResult writes a calculation result. Money fields are minor units.
func EncodeResult(e *jx.Encoder, res discount.Result) {
	e.ObjStart()
	e.FieldStart("subtotal")
	e.Int64(res.Subtotal)

	e.FieldStart("appliedRules")
	e.ArrStart()
	for _, a := range res.Applied {
		e.ObjStart()
		e.FieldStart("ruleId")
		e.Int64(a.Rule.ID)
		e.FieldStart("name")
		e.Str(a.Rule.Name)
		e.FieldStart("valueType")
		e.Str(string(a.Rule.ValueType))
		e.FieldStart("value")
		e.Str(a.Rule.Value.String())
		e.FieldStart("attributeBased")
		e.Bool(a.Rule.AttributeBased())
		e.FieldStart("amount")
		e.Int64(a.Amount)
		e.FieldStart("appliedTo")
		e.Int64(a.AppliedTo)
		e.ObjEnd()
	}
	e.ArrEnd()

	e.FieldStart("totalDiscount")
	e.Int64(res.TotalDiscount)
	e.FieldStart("finalTotal")
	e.Int64(res.FinalTotal)

	e.FieldStart("steps")
	e.ArrStart()
	for _, s := range res.Steps {
		e.ObjStart()
		e.FieldStart("step")
		e.Int(s.Index)
		e.FieldStart("description")
		e.Str(s.Description)
		e.FieldStart("total")
		e.Int64(s.Total)
		e.FieldStart("discount")
		e.Int64(s.Discount)
		e.FieldStart("appliedTo")
		e.Int64(s.AppliedTo)
		e.ObjEnd()
	}
	e.ArrEnd()

	e.FieldStart("outcome")
	e.Str(string(res.Outcome))
	if res.Error != "" {
		e.FieldStart("error")
		e.Str(res.Error)
	}
	e.ObjEnd()
}

// EncodeError writes {"code": code, "message": msg}.
func EncodeError(e *jx.Encoder, code, msg string) {
	e.ObjStart()
	e.FieldStart("code")
	e.Str(code)
	e.FieldStart("message")
	e.Str(msg)
	e.ObjEnd()
}

// EncodeID writes {"id": id}.
func EncodeID(e *jx.Encoder, id int64) {
	e.ObjStart()
	e.FieldStart("id")
	e.Int64(id)
	e.ObjEnd()
}
