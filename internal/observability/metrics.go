// internal/observability/metrics.go
package observability

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// LendingMetrics counts borrow and return outcomes by result kind.
// Counters are no-ops until a meter provider is installed.
type LendingMetrics struct {
	borrows metric.Int64Counter
	returns metric.Int64Counter
}

func NewLendingMetrics() *LendingMetrics {
	meter := otel.Meter("libris/circulation")

	borrows, _ := meter.Int64Counter("circulation.borrows",
		metric.WithDescription("Borrow operations by outcome"))
	returns, _ := meter.Int64Counter("circulation.returns",
		metric.WithDescription("Return operations by outcome"))

	return &LendingMetrics{borrows: borrows, returns: returns}
}

func (m *LendingMetrics) RecordBorrow(ctx context.Context, outcome string) {
	if m == nil {
		return
	}
	m.borrows.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", outcome)))
}

func (m *LendingMetrics) RecordReturn(ctx context.Context, outcome string) {
	if m == nil {
		return
	}
	m.returns.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", outcome)))
}
