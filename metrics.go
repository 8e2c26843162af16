package toolreg

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metrics records invocation counts and durations. Install it with
// WithOnAfterInvoke(m.Record) so NotFound and Validation failures are counted too.
type Metrics struct {
	invocations metric.Int64Counter
	duration    metric.Float64Histogram
}

// NewMetrics creates the instruments on meter.
func NewMetrics(meter metric.Meter) (*Metrics, error) {
	invocations, err := meter.Int64Counter(
		"toolreg.invocations",
		metric.WithDescription("Number of tool invocations"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return nil, fmt.Errorf("create invocation counter: %w", err)
	}
	duration, err := meter.Float64Histogram(
		"toolreg.invocation.duration",
		metric.WithDescription("Tool invocation duration in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, fmt.Errorf("create duration histogram: %w", err)
	}
	return &Metrics{invocations: invocations, duration: duration}, nil
}

// Record matches the WithOnAfterInvoke hook signature.
func (m *Metrics) Record(ctx context.Context, req InvocationRequest, res InvocationResult, dur time.Duration) {
	outcome := "ok"
	if res.Err != nil {
		outcome = string(res.Err.Kind)
	}
	opts := metric.WithAttributes(
		attribute.String("tool", req.Tool),
		attribute.String("outcome", outcome),
	)
	m.invocations.Add(ctx, 1, opts)
	m.duration.Record(ctx, float64(dur.Microseconds())/1000, opts)
}
