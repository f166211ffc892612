package order

import (
	"strconv"

	"github.com/shopspring/decimal"
)

// Limits holds the policy bounds applied during validation. They are bound
// once at Validator construction and never mutated afterwards, so alternate
// policies can be exercised without process-wide state.
type Limits struct {
	// MaxOrderTotal is the ceiling on the product total of a single order.
	MaxOrderTotal decimal.Decimal
	// MinQuantity and MaxQuantity bound product line quantities, inclusive.
	// MinQuantity of 1 also makes zero and negative quantities out of range.
	MinQuantity int64
	MaxQuantity int64
}

// DefaultLimits returns the standard policy: order ceiling 999999.99,
// product quantities 1 through 100.
func DefaultLimits() Limits {
	return Limits{
		MaxOrderTotal: decimal.RequireFromString("999999.99"),
		MinQuantity:   1,
		MaxQuantity:   100,
	}
}

// Validator decides whether an order is internally consistent and within
// policy limits. It is a pure function of its input and the bound Limits:
// no I/O, no state across calls, safe for concurrent use.
type Validator struct {
	limits Limits
}

// NewValidator creates a Validator bound to the given policy limits.
func NewValidator(limits Limits) *Validator {
	return &Validator{limits: limits}
}

// Validate walks the order items in sequence, normalizing each into exact
// decimal space and accumulating product and payment totals, then settles
// the totals against the policy limits. The first structurally invalid item
// aborts the scan.
//
// Every item that passes the structural checks contributes to its running
// total, negative values included. Excluding negative lines from one total
// but not the other would open an asymmetric accounting window.
func (v *Validator) Validate(o Order) Verdict {
	totalProducts := decimal.Zero
	totalPayments := decimal.Zero

	for _, item := range o.Items {
		kind, ok := ParseKind(item.Kind)
		if !ok {
			return Verdict{Code: CodeInvalidItemType, OrderID: o.ID, ItemKind: item.Kind}
		}

		amount, ok := parseAmount(item.Amount)
		if !ok {
			return Verdict{Code: CodeInvalidAmount, OrderID: o.ID, Value: item.Amount}
		}

		qty, ok := parseQuantity(item.Quantity)
		if !ok {
			return Verdict{Code: CodeInvalidQuantityType, OrderID: o.ID, Value: item.Quantity}
		}

		switch kind {
		case KindProduct:
			if qty < v.limits.MinQuantity || qty > v.limits.MaxQuantity {
				return Verdict{Code: CodeQuantityOutOfRange, OrderID: o.ID, Value: item.Quantity}
			}
			totalProducts = totalProducts.Add(amount.Mul(decimal.NewFromInt(qty)))
		case KindPayment:
			// Quantity on a payment is a structural field, not a multiplier.
			if qty != 1 {
				return Verdict{Code: CodePaymentQuantityNotOne, OrderID: o.ID, Value: item.Quantity}
			}
			totalPayments = totalPayments.Add(amount)
		}
	}

	if totalProducts.GreaterThan(v.limits.MaxOrderTotal) {
		return Verdict{
			Code:          CodeOrderCeilingExceeded,
			OrderID:       o.ID,
			TotalProducts: totalProducts,
			TotalPayments: totalPayments,
		}
	}

	// Exact equality on the decimal representation. An epsilon window here
	// would let crafted rounding error pass as a balanced order.
	if !totalPayments.Equal(totalProducts) {
		return Verdict{
			Code:          CodePaymentImbalance,
			OrderID:       o.ID,
			Diff:          totalPayments.Sub(totalProducts),
			TotalProducts: totalProducts,
			TotalPayments: totalPayments,
		}
	}

	return Verdict{
		Code:          CodeFullyPaid,
		OrderID:       o.ID,
		TotalProducts: totalProducts,
		TotalPayments: totalPayments,
	}
}

// parseAmount converts a wire amount into an exact decimal. Only the textual
// form is parsed, so a binary float contributes its exact decimal rendering.
// NaN, infinities and malformed text all fail to parse.
func parseAmount(f Field) (decimal.Decimal, bool) {
	switch f.Type {
	case TypeInt, TypeFloat, TypeString:
		d, err := decimal.NewFromString(f.Text)
		if err != nil {
			return decimal.Decimal{}, false
		}
		return d, true
	default:
		return decimal.Decimal{}, false
	}
}

// parseQuantity accepts only true integers. A float that merely looks
// integral and a numeric string are both rejected.
func parseQuantity(f Field) (int64, bool) {
	if f.Type != TypeInt {
		return 0, false
	}
	n, err := strconv.ParseInt(f.Text, 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}
