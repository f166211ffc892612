package handler

import (
	"io"
	"net/http"

	"github.com/go-faster/jx"
	"github.com/go-faster/sdk/zctx"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/xenking/order-settlement/internal/domain/order"
)

// ValidateOrder decodes the submitted order, runs settlement validation, and
// renders the verdict. Verdicts are data, not transport errors: a
// structurally invalid order still gets a 200 with valid=false. Only an
// undecodable payload is a client error.
func (h *Handler) ValidateOrder(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	body, err := io.ReadAll(io.LimitReader(r.Body, h.maxBody+1))
	if err != nil {
		writeError(w, http.StatusBadRequest, "cannot read request body")
		return
	}
	if int64(len(body)) > h.maxBody {
		writeError(w, http.StatusRequestEntityTooLarge, "request body too large")
		return
	}

	o, err := order.DecodeOrder(body)
	if err != nil {
		zctx.From(ctx).Debug("Malformed order payload", zap.Error(err))
		writeError(w, http.StatusBadRequest, "malformed order payload")
		return
	}

	verdict := h.validator.Validate(o)

	trace.SpanFromContext(ctx).SetAttributes(
		attribute.String("order.id", verdict.OrderID),
		attribute.String("order.verdict", string(verdict.Code)),
	)
	if h.verdicts != nil {
		h.verdicts.Add(ctx, 1, metric.WithAttributes(
			attribute.String("code", string(verdict.Code)),
		))
	}

	// Audit writes are best-effort: the verdict is already decided and must
	// not depend on storage health.
	if h.audit != nil {
		if err := h.audit.Record(ctx, verdict); err != nil {
			zctx.From(ctx).Error("Recording verdict", zap.Error(err))
		}
	}

	writeVerdict(w, verdict)
}

func writeVerdict(w http.ResponseWriter, v order.Verdict) {
	var e jx.Encoder
	e.Obj(func(e *jx.Encoder) {
		e.Field("orderId", func(e *jx.Encoder) { e.Str(v.OrderID) })
		e.Field("valid", func(e *jx.Encoder) { e.Bool(v.OK()) })
		e.Field("code", func(e *jx.Encoder) { e.Str(string(v.Code)) })
		e.Field("status", func(e *jx.Encoder) { e.Str(v.String()) })
		if v.Settled() {
			e.Field("totalProducts", func(e *jx.Encoder) { e.Str(v.TotalProducts.String()) })
			e.Field("totalPayments", func(e *jx.Encoder) { e.Str(v.TotalPayments.String()) })
		}
		if v.Code == order.CodePaymentImbalance {
			e.Field("diff", func(e *jx.Encoder) { e.Str(v.Diff.StringFixed(2)) })
		}
	})

	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write(e.Bytes())
}

func writeError(w http.ResponseWriter, code int, message string) {
	var e jx.Encoder
	e.Obj(func(e *jx.Encoder) {
		e.Field("code", func(e *jx.Encoder) { e.Int(code) })
		e.Field("message", func(e *jx.Encoder) { e.Str(message) })
	})

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_, _ = w.Write(e.Bytes())
}
