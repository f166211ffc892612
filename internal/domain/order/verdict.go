package order

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Code enumerates every possible outcome of validating an order.
// The set is closed; callers can switch exhaustively on it.
type Code string

const (
	CodeInvalidItemType       Code = "invalid_item_type"
	CodeInvalidAmount         Code = "invalid_amount"
	CodeInvalidQuantityType   Code = "invalid_quantity_type"
	CodeQuantityOutOfRange    Code = "quantity_out_of_range"
	CodePaymentQuantityNotOne Code = "payment_quantity_not_one"
	CodeOrderCeilingExceeded  Code = "order_ceiling_exceeded"
	CodePaymentImbalance      Code = "payment_imbalance"
	CodeFullyPaid             Code = "fully_paid"
)

// Verdict is the result of validating a single Order. It is always returned
// as a value: validation failures are verdicts, not errors.
//
// ItemKind and Value describe the offending field for structural failures.
// Diff and the totals are populated only once every item passed structural
// validation, so a fail-fast verdict never leaks partial totals.
type Verdict struct {
	Code    Code
	OrderID string

	ItemKind string
	Value    Field

	Diff          decimal.Decimal
	TotalProducts decimal.Decimal
	TotalPayments decimal.Decimal
}

// OK reports whether the order settled in full.
func (v Verdict) OK() bool {
	return v.Code == CodeFullyPaid
}

// Settled reports whether the order passed structural validation and reached
// the settlement checks, meaning the totals on the verdict are meaningful.
func (v Verdict) Settled() bool {
	switch v.Code {
	case CodeOrderCeilingExceeded, CodePaymentImbalance, CodeFullyPaid:
		return true
	default:
		return false
	}
}

// String renders the caller-facing status message for the verdict.
func (v Verdict) String() string {
	switch v.Code {
	case CodeInvalidItemType:
		return fmt.Sprintf("Invalid item type: %s", v.ItemKind)
	case CodeInvalidAmount:
		return fmt.Sprintf("Invalid amount: %s", v.Value)
	case CodeInvalidQuantityType:
		return fmt.Sprintf("Invalid quantity type: %s (%s)", v.Value, v.Value.Type)
	case CodeQuantityOutOfRange:
		return fmt.Sprintf("Quantity out of range: %s", v.Value)
	case CodePaymentQuantityNotOne:
		return fmt.Sprintf("Payments must have quantity 1, got: %s", v.Value)
	case CodeOrderCeilingExceeded:
		return "Total amount payable for an order exceeded"
	case CodePaymentImbalance:
		return fmt.Sprintf("Order ID: %s - Payment imbalance: $%s", v.OrderID, v.Diff.StringFixed(2))
	case CodeFullyPaid:
		return fmt.Sprintf("Order ID: %s - Full payment received!", v.OrderID)
	default:
		return fmt.Sprintf("unknown verdict: %s", string(v.Code))
	}
}
