package order

import (
	"math"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func product(desc string, amount, qty Field) Item {
	return Item{Kind: "product", Description: desc, Amount: amount, Quantity: qty}
}

func payment(desc string, amount, qty Field) Item {
	return Item{Kind: "payment", Description: desc, Amount: amount, Quantity: qty}
}

func TestValidate_FullyPaid(t *testing.T) {
	v := NewValidator(DefaultLimits())

	verdict := v.Validate(Order{
		ID: "A1",
		Items: []Item{
			product("widget", FloatField(10.00), IntField(3)),
			payment("pay", FloatField(30.00), IntField(1)),
		},
	})

	require.Equal(t, CodeFullyPaid, verdict.Code)
	assert.True(t, verdict.OK())
	assert.Equal(t, "Order ID: A1 - Full payment received!", verdict.String())
	assert.True(t, decimal.RequireFromString("30").Equal(verdict.TotalProducts))
	assert.True(t, decimal.RequireFromString("30").Equal(verdict.TotalPayments))
}

func TestValidate_PaymentImbalance(t *testing.T) {
	v := NewValidator(DefaultLimits())

	verdict := v.Validate(Order{
		ID: "A1",
		Items: []Item{
			product("widget", FloatField(10.00), IntField(3)),
			payment("pay", FloatField(29.99), IntField(1)),
		},
	})

	require.Equal(t, CodePaymentImbalance, verdict.Code)
	assert.False(t, verdict.OK())
	assert.True(t, decimal.RequireFromString("-0.01").Equal(verdict.Diff))
	assert.Equal(t, "Order ID: A1 - Payment imbalance: $-0.01", verdict.String())
}

func TestValidate_StructuralFailures(t *testing.T) {
	v := NewValidator(DefaultLimits())

	tests := []struct {
		name    string
		item    Item
		code    Code
		message string
	}{
		{
			name:    "unknown kind",
			item:    Item{Kind: "refund", Amount: FloatField(5), Quantity: IntField(1)},
			code:    CodeInvalidItemType,
			message: "Invalid item type: refund",
		},
		{
			name:    "empty kind",
			item:    Item{Kind: "", Amount: FloatField(5), Quantity: IntField(1)},
			code:    CodeInvalidItemType,
			message: "Invalid item type: ",
		},
		{
			name:    "kind casing is strict",
			item:    Item{Kind: "Product", Amount: FloatField(5), Quantity: IntField(1)},
			code:    CodeInvalidItemType,
			message: "Invalid item type: Product",
		},
		{
			name:    "textual amount that is not a number",
			item:    product("w", StringField("ten dollars"), IntField(1)),
			code:    CodeInvalidAmount,
			message: "Invalid amount: ten dollars",
		},
		{
			name:    "NaN amount",
			item:    product("w", FloatField(math.NaN()), IntField(1)),
			code:    CodeInvalidAmount,
			message: "Invalid amount: NaN",
		},
		{
			name:    "infinite amount",
			item:    product("w", FloatField(math.Inf(1)), IntField(1)),
			code:    CodeInvalidAmount,
			message: "Invalid amount: +Inf",
		},
		{
			name: "null amount",
			item: product("w", Field{Type: TypeNull, Text: "null"}, IntField(1)),
			code: CodeInvalidAmount,
		},
		{
			name:    "stringly typed quantity",
			item:    product("w", FloatField(5.00), StringField("two")),
			code:    CodeInvalidQuantityType,
			message: "Invalid quantity type: two (string)",
		},
		{
			name:    "float quantity",
			item:    product("w", FloatField(5.00), Field{Type: TypeFloat, Text: "2.0"}),
			code:    CodeInvalidQuantityType,
			message: "Invalid quantity type: 2.0 (float)",
		},
		{
			name:    "boolean quantity",
			item:    payment("p", FloatField(5.00), Field{Type: TypeBool, Text: "true"}),
			code:    CodeInvalidQuantityType,
			message: "Invalid quantity type: true (boolean)",
		},
		{
			name:    "product quantity below range",
			item:    product("w", FloatField(5.00), IntField(0)),
			code:    CodeQuantityOutOfRange,
			message: "Quantity out of range: 0",
		},
		{
			name:    "product quantity above range",
			item:    product("w", FloatField(5.00), IntField(101)),
			code:    CodeQuantityOutOfRange,
			message: "Quantity out of range: 101",
		},
		{
			name:    "negative product quantity",
			item:    product("w", FloatField(5.00), IntField(-1)),
			code:    CodeQuantityOutOfRange,
			message: "Quantity out of range: -1",
		},
		{
			name:    "payment quantity above one",
			item:    payment("p", FloatField(5.00), IntField(2)),
			code:    CodePaymentQuantityNotOne,
			message: "Payments must have quantity 1, got: 2",
		},
		{
			name:    "payment quantity zero",
			item:    payment("p", FloatField(5.00), IntField(0)),
			code:    CodePaymentQuantityNotOne,
			message: "Payments must have quantity 1, got: 0",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			verdict := v.Validate(Order{ID: "X", Items: []Item{tt.item}})

			require.Equal(t, tt.code, verdict.Code)
			assert.False(t, verdict.OK())
			assert.False(t, verdict.Settled(), "structural failures must not report totals")
			if tt.message != "" {
				assert.Equal(t, tt.message, verdict.String())
			}
		})
	}
}

func TestValidate_QuantityBoundsAccepted(t *testing.T) {
	v := NewValidator(DefaultLimits())

	for _, qty := range []int64{1, 100} {
		verdict := v.Validate(Order{
			ID: "B1",
			Items: []Item{
				product("w", FloatField(1.00), IntField(qty)),
				payment("p", IntField(qty), IntField(1)),
			},
		})
		assert.Equal(t, CodeFullyPaid, verdict.Code, "quantity %d", qty)
	}
}

func TestValidate_FirstFailureWins(t *testing.T) {
	v := NewValidator(DefaultLimits())

	// The offending item has both a bad amount and a bad quantity; the
	// amount check runs first. A later item with a bad kind is never reached.
	verdict := v.Validate(Order{
		ID: "C1",
		Items: []Item{
			product("w", StringField("oops"), StringField("two")),
			{Kind: "subscription", Amount: FloatField(1), Quantity: IntField(1)},
		},
	})

	require.Equal(t, CodeInvalidAmount, verdict.Code)
}

func TestValidate_OrderCeiling(t *testing.T) {
	v := NewValidator(DefaultLimits())

	// Ceiling applies even when a matching payment would balance the order.
	verdict := v.Validate(Order{
		ID: "D1",
		Items: []Item{
			product("yacht", FloatField(1000000.00), IntField(1)),
			payment("wire", FloatField(1000000.00), IntField(1)),
		},
	})
	require.Equal(t, CodeOrderCeilingExceeded, verdict.Code)
	assert.Equal(t, "Total amount payable for an order exceeded", verdict.String())

	// Exactly at the ceiling is allowed.
	verdict = v.Validate(Order{
		ID: "D2",
		Items: []Item{
			product("yacht", StringField("999999.99"), IntField(1)),
			payment("wire", StringField("999999.99"), IntField(1)),
		},
	})
	assert.Equal(t, CodeFullyPaid, verdict.Code)
}

func TestValidate_ExactDecimalEquality(t *testing.T) {
	v := NewValidator(DefaultLimits())

	// In binary floating point 0.1+0.2 != 0.3; in exact decimal space the
	// payments balance the product.
	verdict := v.Validate(Order{
		ID: "E1",
		Items: []Item{
			product("w", FloatField(0.3), IntField(1)),
			payment("p1", FloatField(0.1), IntField(1)),
			payment("p2", FloatField(0.2), IntField(1)),
		},
	})
	require.Equal(t, CodeFullyPaid, verdict.Code)

	// The float artifact 0.30000000000000004 enters through its exact text
	// form and must NOT balance 0.3, even though it is well inside any
	// floating point epsilon window. The addition has to happen on runtime
	// float64 values: constant expressions are evaluated exactly and would
	// fold 0.1+0.2 into a clean 0.3.
	a, b := 0.1, 0.2
	artifact := FloatField(a + b)
	require.Equal(t, "0.30000000000000004", artifact.Text)

	verdict = v.Validate(Order{
		ID: "E2",
		Items: []Item{
			product("w", FloatField(0.3), IntField(1)),
			payment("p", artifact, IntField(1)),
		},
	})
	require.Equal(t, CodePaymentImbalance, verdict.Code)
	assert.True(t, decimal.RequireFromString("0.00000000000000004").Equal(verdict.Diff))
}

func TestValidate_NegativeAmountsCountTowardsTotals(t *testing.T) {
	v := NewValidator(DefaultLimits())

	// A negative product line reduces the product total; it is not silently
	// dropped from one ledger while remaining in the other.
	verdict := v.Validate(Order{
		ID: "F1",
		Items: []Item{
			product("item", FloatField(10.00), IntField(1)),
			product("adjustment", FloatField(-5.00), IntField(1)),
			payment("pay", FloatField(5.00), IntField(1)),
		},
	})
	require.Equal(t, CodeFullyPaid, verdict.Code)

	// Same for negative payments.
	verdict = v.Validate(Order{
		ID: "F2",
		Items: []Item{
			product("item", FloatField(5.00), IntField(1)),
			payment("pay", FloatField(10.00), IntField(1)),
			payment("chargeback", FloatField(-5.00), IntField(1)),
		},
	})
	require.Equal(t, CodeFullyPaid, verdict.Code)
}

func TestValidate_EmptyOrderIsBalanced(t *testing.T) {
	v := NewValidator(DefaultLimits())

	verdict := v.Validate(Order{ID: "G1"})

	assert.Equal(t, CodeFullyPaid, verdict.Code)
}

func TestValidate_Idempotent(t *testing.T) {
	v := NewValidator(DefaultLimits())
	o := Order{
		ID: "H1",
		Items: []Item{
			product("w", FloatField(12.34), IntField(2)),
			payment("p", FloatField(24.68), IntField(1)),
		},
	}

	first := v.Validate(o)
	second := v.Validate(o)

	assert.Equal(t, first, second)
}

func TestValidate_CustomLimits(t *testing.T) {
	v := NewValidator(Limits{
		MaxOrderTotal: decimal.RequireFromString("50.00"),
		MinQuantity:   2,
		MaxQuantity:   5,
	})

	verdict := v.Validate(Order{
		ID:    "I1",
		Items: []Item{product("w", FloatField(1.00), IntField(1))},
	})
	assert.Equal(t, CodeQuantityOutOfRange, verdict.Code)

	verdict = v.Validate(Order{
		ID: "I2",
		Items: []Item{
			product("w", FloatField(30.00), IntField(2)),
			payment("p", FloatField(60.00), IntField(1)),
		},
	})
	assert.Equal(t, CodeOrderCeilingExceeded, verdict.Code)
}

func TestValidate_StringAmountsParseExactly(t *testing.T) {
	v := NewValidator(DefaultLimits())

	verdict := v.Validate(Order{
		ID: "J1",
		Items: []Item{
			product("w", StringField("19.99"), IntField(2)),
			payment("p", StringField("39.98"), IntField(1)),
		},
	})

	assert.Equal(t, CodeFullyPaid, verdict.Code)
}
