package order

import "strconv"

// Kind identifies the two legal line item variants. The set is closed:
// anything that does not parse onto it is a validation failure, never a
// third variant.
type Kind uint8

const (
	KindProduct Kind = iota + 1
	KindPayment
)

func (k Kind) String() string {
	switch k {
	case KindProduct:
		return "product"
	case KindPayment:
		return "payment"
	default:
		return "unknown"
	}
}

// ParseKind maps a wire item type onto the closed Kind set.
func ParseKind(s string) (Kind, bool) {
	switch s {
	case "product":
		return KindProduct, true
	case "payment":
		return KindPayment, true
	default:
		return 0, false
	}
}

// FieldType is the syntactic type observed for a scalar on the wire.
type FieldType uint8

const (
	TypeInvalid FieldType = iota
	TypeInt
	TypeFloat
	TypeString
	TypeBool
	TypeNull
)

func (t FieldType) String() string {
	switch t {
	case TypeInt:
		return "integer"
	case TypeFloat:
		return "float"
	case TypeString:
		return "string"
	case TypeBool:
		return "boolean"
	case TypeNull:
		return "null"
	default:
		return "invalid"
	}
}

// Field is a loosely typed scalar exactly as the caller supplied it: the
// syntactic type seen on the wire plus its textual form. Keeping the text
// is what lets amounts enter decimal arithmetic through their exact base-10
// rendering instead of a coerced binary value.
type Field struct {
	Type FieldType
	Text string
}

// IntField wraps a native integer quantity or amount.
func IntField(n int64) Field {
	return Field{Type: TypeInt, Text: strconv.FormatInt(n, 10)}
}

// FloatField wraps a native float. The text form is the shortest decimal
// string that round-trips to f, so the value contributes its exact decimal
// rendering. NaN and infinities keep their textual names and are rejected
// downstream.
func FloatField(f float64) Field {
	return Field{Type: TypeFloat, Text: strconv.FormatFloat(f, 'f', -1, 64)}
}

// StringField wraps a textual value.
func StringField(s string) Field {
	return Field{Type: TypeString, Text: s}
}

func (f Field) String() string {
	return f.Text
}

// Item is a single line within an Order: either a product charge or a
// payment. Amount and Quantity stay loosely typed until the validator
// normalizes them; Description is opaque and never interpreted.
type Item struct {
	Kind        string
	Description string
	Amount      Field
	Quantity    Field
}

// Order is a caller-owned request to reconcile product charges against
// payments. The ID is opaque and used only for reporting.
type Order struct {
	ID    string
	Items []Item
}
