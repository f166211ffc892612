package order

import (
	"strconv"
	"strings"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
)

// DecodeOrder parses a wire order from JSON. Amount and quantity are
// captured as loosely typed Fields preserving the literal number text, so
// "10.00" keeps both decimals and "2.0" stays a float-typed value. Malformed
// JSON is a decode error, distinct from a validation verdict.
func DecodeOrder(data []byte) (Order, error) {
	var o Order
	d := jx.DecodeBytes(data)
	if err := d.Obj(func(d *jx.Decoder, key string) error {
		switch key {
		case "id":
			return decodeOrderID(d, &o)
		case "items":
			return d.Arr(func(d *jx.Decoder) error {
				item, err := decodeItem(d)
				if err != nil {
					return err
				}
				o.Items = append(o.Items, item)
				return nil
			})
		default:
			return d.Skip()
		}
	}); err != nil {
		return Order{}, errors.Wrap(err, "decode order")
	}
	return o, nil
}

// decodeOrderID accepts the id as either a string or a number; it is opaque
// either way.
func decodeOrderID(d *jx.Decoder, o *Order) error {
	switch d.Next() {
	case jx.String:
		s, err := d.Str()
		if err != nil {
			return err
		}
		o.ID = s
		return nil
	case jx.Number:
		n, err := d.Num()
		if err != nil {
			return err
		}
		o.ID = string(n)
		return nil
	default:
		return errors.New("order id must be a string or number")
	}
}

func decodeItem(d *jx.Decoder) (Item, error) {
	var it Item
	err := d.Obj(func(d *jx.Decoder, key string) error {
		switch key {
		case "type":
			// A non-string kind is kept as its raw literal so the validator
			// can report it, rather than failing the whole decode.
			if d.Next() == jx.String {
				s, err := d.Str()
				if err != nil {
					return err
				}
				it.Kind = s
				return nil
			}
			raw, err := d.Raw()
			if err != nil {
				return err
			}
			it.Kind = string(raw)
			return nil
		case "description":
			s, err := d.Str()
			if err != nil {
				return err
			}
			it.Description = s
			return nil
		case "amount":
			f, err := decodeField(d)
			if err != nil {
				return err
			}
			it.Amount = f
			return nil
		case "quantity":
			f, err := decodeField(d)
			if err != nil {
				return err
			}
			it.Quantity = f
			return nil
		default:
			return d.Skip()
		}
	})
	return it, err
}

// decodeField captures a scalar exactly as written, tagging it with its
// syntactic wire type. Arrays and objects have no scalar form and come back
// as invalid fields for the validator to reject.
func decodeField(d *jx.Decoder) (Field, error) {
	switch d.Next() {
	case jx.Number:
		n, err := d.Num()
		if err != nil {
			return Field{}, err
		}
		text := string(n)
		t := TypeFloat
		if isIntLiteral(text) {
			t = TypeInt
		}
		return Field{Type: t, Text: text}, nil
	case jx.String:
		s, err := d.Str()
		if err != nil {
			return Field{}, err
		}
		return Field{Type: TypeString, Text: s}, nil
	case jx.Bool:
		b, err := d.Bool()
		if err != nil {
			return Field{}, err
		}
		return Field{Type: TypeBool, Text: strconv.FormatBool(b)}, nil
	case jx.Null:
		if err := d.Null(); err != nil {
			return Field{}, err
		}
		return Field{Type: TypeNull, Text: "null"}, nil
	default:
		if err := d.Skip(); err != nil {
			return Field{}, err
		}
		return Field{Type: TypeInvalid}, nil
	}
}

// isIntLiteral reports whether a JSON number literal is a true integer:
// no fraction, no exponent.
func isIntLiteral(s string) bool {
	return !strings.ContainsAny(s, ".eE")
}
