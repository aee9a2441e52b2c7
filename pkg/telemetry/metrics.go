package telemetry

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// ClientMetrics implements CallRecorder on top of otel metric instruments
type ClientMetrics struct {
	calls   metric.Int64Counter
	latency metric.Float64Histogram
}

// NewClientMetrics creates the instruments on meter. A nil meter uses the
// global provider, which is a no-op until an SDK is installed.
func NewClientMetrics(meter metric.Meter) (*ClientMetrics, error) {
	if meter == nil {
		meter = otel.Meter("campusbite/gateway")
	}

	calls, err := meter.Int64Counter(
		"campusbite_api_calls_total",
		metric.WithDescription("Backend calls by operation and outcome"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create call counter: %w", err)
	}

	latency, err := meter.Float64Histogram(
		"campusbite_api_call_duration_seconds",
		metric.WithDescription("Backend call latency"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create latency histogram: %w", err)
	}

	return &ClientMetrics{calls: calls, latency: latency}, nil
}

// RecordCall adds one call to the counter and histogram
func (m *ClientMetrics) RecordCall(ctx context.Context, op string, status int, duration time.Duration, err error) {
	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	attrs := metric.WithAttributes(
		attribute.String("operation", op),
		attribute.Int("http.status_code", status),
		attribute.String("outcome", outcome),
	)
	m.calls.Add(ctx, 1, attrs)
	m.latency.Record(ctx, duration.Seconds(), attrs)
}
