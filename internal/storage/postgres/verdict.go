package postgres

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/xenking/order-settlement/internal/domain/order"
)

const insertVerdictSQL = `INSERT INTO verdicts
	(id, order_id, code, message, diff, total_products, total_payments)
	VALUES ($1, $2, $3, $4, $5, $6, $7)`

// VerdictRepository persists validation verdicts for auditing.
type VerdictRepository struct {
	pool *pgxpool.Pool
}

// NewVerdictRepository returns a VerdictRepository that uses the given pool.
func NewVerdictRepository(pool *pgxpool.Pool) *VerdictRepository {
	return &VerdictRepository{pool: pool}
}

// Record inserts one verdict row. Diff and the totals are NULL for verdicts
// that failed structural validation, since no totals exist for those.
func (r *VerdictRepository) Record(ctx context.Context, v order.Verdict) error {
	var diff, products, payments decimal.NullDecimal
	if v.Settled() {
		products = decimal.NullDecimal{Decimal: v.TotalProducts, Valid: true}
		payments = decimal.NullDecimal{Decimal: v.TotalPayments, Valid: true}
	}
	if v.Code == order.CodePaymentImbalance {
		diff = decimal.NullDecimal{Decimal: v.Diff, Valid: true}
	}

	_, err := r.pool.Exec(ctx, insertVerdictSQL,
		uuid.New().String(), v.OrderID, string(v.Code), v.String(),
		diff, products, payments,
	)
	if err != nil {
		return errors.Wrapf(err, "record verdict for order %q", v.OrderID)
	}

	return nil
}
