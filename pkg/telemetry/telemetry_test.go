package telemetry_test

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/itsneelabh/campusbite/pkg/telemetry"
)

func TestCorrelationMiddlewareGeneratesIDs(t *testing.T) {
	var seenCorrelation, seenRequest string
	handler := telemetry.CorrelationMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seenCorrelation = telemetry.GetCorrelationID(r.Context())
		seenRequest = telemetry.GetRequestID(r.Context())
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/vendors", nil))

	assert.NotEmpty(t, seenCorrelation)
	assert.NotEmpty(t, seenRequest)
	assert.Equal(t, seenCorrelation, rec.Header().Get(telemetry.HeaderCorrelationID))
	assert.Equal(t, seenRequest, rec.Header().Get(telemetry.HeaderRequestID))
}

func TestCorrelationMiddlewareKeepsIncomingIDs(t *testing.T) {
	var seenSession string
	handler := telemetry.CorrelationMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seenSession = telemetry.GetSessionID(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/orders", nil)
	req.Header.Set(telemetry.HeaderCorrelationID, "corr-1")
	req.Header.Set(telemetry.HeaderSessionID, "sess-1")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, "corr-1", rec.Header().Get(telemetry.HeaderCorrelationID))
	assert.Equal(t, "sess-1", seenSession)
}

func TestInjectAndEnrich(t *testing.T) {
	ctx := telemetry.WithCorrelationID(context.Background(), "")
	ctx = telemetry.WithRequestID(ctx, "req-7")

	headers := http.Header{}
	telemetry.InjectCorrelationHeaders(ctx, headers)
	assert.NotEmpty(t, headers.Get(telemetry.HeaderCorrelationID))
	assert.Equal(t, "req-7", headers.Get(telemetry.HeaderRequestID))
	assert.Empty(t, headers.Get(telemetry.HeaderSessionID))

	fields := telemetry.EnrichLogFields(ctx, nil)
	assert.Equal(t, "req-7", fields["request_id"])
	assert.Contains(t, fields, "correlation_id")
	assert.NotContains(t, fields, "trace_id")
}

func TestEnrichLogFieldsAddsTraceIDs(t *testing.T) {
	tp := sdktrace.NewTracerProvider()
	defer tp.Shutdown(context.Background())

	ctx, span := tp.Tracer("test").Start(context.Background(), "op")
	defer span.End()

	fields := telemetry.EnrichLogFields(ctx, map[string]interface{}{"k": "v"})
	assert.Equal(t, span.SpanContext().TraceID().String(), fields["trace_id"])
	assert.Equal(t, "v", fields["k"])
}

func TestSetupDisabled(t *testing.T) {
	p, err := telemetry.Setup(context.Background(), telemetry.Config{Enabled: false})
	require.NoError(t, err)
	assert.False(t, p.Enabled())
	assert.NoError(t, p.Shutdown(context.Background()))
}

func TestSetupStdoutExporter(t *testing.T) {
	prev := otel.GetTracerProvider()
	defer otel.SetTracerProvider(prev)

	var buf bytes.Buffer
	p, err := telemetry.Setup(context.Background(), telemetry.Config{
		Enabled:     true,
		Exporter:    telemetry.ExporterStdout,
		ServiceName: "campusbite-test",
		Writer:      &buf,
	})
	require.NoError(t, err)
	require.True(t, p.Enabled())

	_, span := otel.Tracer("test").Start(context.Background(), "gateway.ListVendors")
	span.End()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, p.Shutdown(ctx))

	assert.Contains(t, buf.String(), "gateway.ListVendors")
	assert.Contains(t, buf.String(), "campusbite-test")
}

func TestSetupRejectsUnknownExporter(t *testing.T) {
	_, err := telemetry.Setup(context.Background(), telemetry.Config{Enabled: true, Exporter: "zipkin"})
	assert.Error(t, err)
}

func TestTracedClientPropagates(t *testing.T) {
	var traceparent string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		traceparent = r.Header.Get("traceparent")
	}))
	defer srv.Close()

	_, err := telemetry.Setup(context.Background(), telemetry.Config{})
	require.NoError(t, err)

	tp := sdktrace.NewTracerProvider()
	defer tp.Shutdown(context.Background())
	ctx, span := tp.Tracer("test").Start(context.Background(), "parent")
	defer span.End()

	client := telemetry.NewTracedHTTPClient(nil, time.Second)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL, nil)
	require.NoError(t, err)
	resp, err := client.Do(req)
	require.NoError(t, err)
	resp.Body.Close()

	assert.Contains(t, traceparent, span.SpanContext().TraceID().String())
}

func TestMiddlewareServes(t *testing.T) {
	h := telemetry.Middleware("test", "/health")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusTeapot, rec.Code)
}

func TestClientMetricsRecord(t *testing.T) {
	m, err := telemetry.NewClientMetrics(noop.NewMeterProvider().Meter("test"))
	require.NoError(t, err)

	var rec telemetry.CallRecorder = m
	rec.RecordCall(context.Background(), "ListVendors", 200, 15*time.Millisecond, nil)
}

func TestClientMetricsCollected(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = provider.Shutdown(context.Background()) })

	m, err := telemetry.NewClientMetrics(provider.Meter("test"))
	require.NoError(t, err)

	ctx := context.Background()
	m.RecordCall(ctx, "PlaceOrder", 200, 20*time.Millisecond, nil)
	m.RecordCall(ctx, "PlaceOrder", 409, 5*time.Millisecond, assert.AnError)

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(ctx, &rm))
	require.Len(t, rm.ScopeMetrics, 1)

	found := map[string]metricdata.Metrics{}
	for _, metrics := range rm.ScopeMetrics[0].Metrics {
		found[metrics.Name] = metrics
	}

	calls, ok := found["campusbite_api_calls_total"].Data.(metricdata.Sum[int64])
	require.True(t, ok)
	require.Len(t, calls.DataPoints, 2)
	var total int64
	for _, dp := range calls.DataPoints {
		total += dp.Value
	}
	assert.Equal(t, int64(2), total)

	latency, ok := found["campusbite_api_call_duration_seconds"].Data.(metricdata.Histogram[float64])
	require.True(t, ok)
	assert.Len(t, latency.DataPoints, 2)
}
