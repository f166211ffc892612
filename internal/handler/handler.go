package handler

import (
	"context"
	"net/http"

	"go.opentelemetry.io/otel/metric"

	"github.com/xenking/order-settlement/internal/domain/order"
)

// defaultMaxBodyBytes caps order payloads at 1 MiB.
const defaultMaxBodyBytes = 1 << 20

// VerdictRecorder persists validation outcomes for auditing.
type VerdictRecorder interface {
	Record(ctx context.Context, v order.Verdict) error
}

// Config holds non-dependency configuration for the Handler.
type Config struct {
	// MaxBodyBytes caps the request body size. Zero means the 1 MiB default.
	MaxBodyBytes int64
}

// Handler serves the order validation API. The validator itself is pure;
// everything with a side effect (audit writes, metrics) lives here.
type Handler struct {
	validator *order.Validator
	audit     VerdictRecorder
	verdicts  metric.Int64Counter
	maxBody   int64
}

// New constructs a Handler. audit and verdicts may be nil; recording and
// metrics are then skipped.
func New(cfg Config, validator *order.Validator, audit VerdictRecorder, verdicts metric.Int64Counter) *Handler {
	maxBody := cfg.MaxBodyBytes
	if maxBody <= 0 {
		maxBody = defaultMaxBodyBytes
	}
	return &Handler{
		validator: validator,
		audit:     audit,
		verdicts:  verdicts,
		maxBody:   maxBody,
	}
}

// Routes registers the API endpoints on mux.
func (h *Handler) Routes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/orders/validate", h.ValidateOrder)
}
