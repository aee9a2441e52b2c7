// Package telemetry provides tracing, metrics and correlation ids for campusbite
// using OpenTelemetry.
//
// # Traces
//
// Setup installs an sdk TracerProvider with either the OTLP gRPC exporter or
// the stdout exporter, plus the W3C TraceContext and Baggage propagators:
//
//	provider, err := telemetry.Setup(ctx, telemetry.Config{
//	    Enabled:  true,
//	    Exporter: telemetry.ExporterOTLP,
//	    Endpoint: "localhost:4317",
//	    Insecure: true,
//	})
//	defer provider.Shutdown(ctx)
//
// When disabled the global no-op provider stays in place, so instrumented code
// never has to check whether tracing is on.
//
// # HTTP
//
// NewTracedHTTPClient wraps a transport with otelhttp so outbound calls carry
// traceparent headers. Middleware does the same for server handlers, which the
// development backend uses.
//
// # Metrics
//
// ClientMetrics records a call counter and a latency histogram per backend
// operation. It implements CallRecorder, which the gateway client accepts.
//
// # Correlation
//
// Correlation, request and session ids travel in the context and in the
// X-Correlation-ID, X-Request-ID and X-Session-ID headers. EnrichLogFields
// copies them, along with trace and span ids, into log fields.
package telemetry
