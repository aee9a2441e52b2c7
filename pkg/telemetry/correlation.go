package telemetry

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// ContextKey type for context keys
type ContextKey string

// Context keys for the ids carried between the CLI, the gateway and the backend
const (
	CorrelationIDKey ContextKey = "correlation_id"
	RequestIDKey     ContextKey = "request_id"
	SessionIDKey     ContextKey = "session_id"
)

// Headers the ids travel in
const (
	HeaderCorrelationID = "X-Correlation-ID"
	HeaderRequestID     = "X-Request-ID"
	HeaderSessionID     = "X-Session-ID"
)

// carriedID ties one context key to its header and its log field name.
// generate marks ids the backend mints when a caller sent none.
type carriedID struct {
	key      ContextKey
	header   string
	generate bool
}

var carriedIDs = []carriedID{
	{key: CorrelationIDKey, header: HeaderCorrelationID, generate: true},
	{key: RequestIDKey, header: HeaderRequestID, generate: true},
	{key: SessionIDKey, header: HeaderSessionID},
}

// WithCorrelationID returns a context carrying id. An empty id generates one.
func WithCorrelationID(ctx context.Context, id string) context.Context {
	if id == "" {
		id = uuid.New().String()
	}
	return context.WithValue(ctx, CorrelationIDKey, id)
}

// WithRequestID returns a context carrying a request id
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, RequestIDKey, id)
}

// WithSessionID returns a context carrying a session id
func WithSessionID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, SessionIDKey, id)
}

// CorrelationMiddleware reads the correlation headers of an incoming request
// into its context, minting correlation and request ids when absent, and
// echoes them on the response.
func CorrelationMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		span := trace.SpanFromContext(ctx)

		for _, id := range carriedIDs {
			value := r.Header.Get(id.header)
			if value == "" && id.generate {
				value = uuid.New().String()
			}
			if value == "" {
				continue
			}
			ctx = context.WithValue(ctx, id.key, value)
			if id.generate {
				w.Header().Set(id.header, value)
			}
			if span.IsRecording() {
				span.SetAttributes(attribute.String(string(id.key), value))
			}
		}

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetCorrelationID returns the correlation id in ctx, or ""
func GetCorrelationID(ctx context.Context) string { return stringValue(ctx, CorrelationIDKey) }

// GetRequestID returns the request id in ctx, or ""
func GetRequestID(ctx context.Context) string { return stringValue(ctx, RequestIDKey) }

// GetSessionID returns the session id in ctx, or ""
func GetSessionID(ctx context.Context) string { return stringValue(ctx, SessionIDKey) }

func stringValue(ctx context.Context, key ContextKey) string {
	v, _ := ctx.Value(key).(string)
	return v
}

// InjectCorrelationHeaders copies every id present in ctx onto headers
func InjectCorrelationHeaders(ctx context.Context, headers http.Header) {
	for _, id := range carriedIDs {
		if v := stringValue(ctx, id.key); v != "" {
			headers.Set(id.header, v)
		}
	}
}

// EnrichLogFields adds the ids in ctx and the active trace/span ids to fields.
// A nil map is allocated.
func EnrichLogFields(ctx context.Context, fields map[string]interface{}) map[string]interface{} {
	if fields == nil {
		fields = make(map[string]interface{}, len(carriedIDs)+2)
	}
	for _, id := range carriedIDs {
		if v := stringValue(ctx, id.key); v != "" {
			fields[string(id.key)] = v
		}
	}
	if sc := trace.SpanContextFromContext(ctx); sc.IsValid() {
		fields["trace_id"] = sc.TraceID().String()
		fields["span_id"] = sc.SpanID().String()
	}
	return fields
}
