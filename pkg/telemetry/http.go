package telemetry

import (
	"net/http"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// Middleware wraps a server handler with otelhttp spans named
// "HTTP <method> <path>". Paths in excluded are not traced.
func Middleware(serviceName string, excluded ...string) func(http.Handler) http.Handler {
	skip := make(map[string]bool, len(excluded))
	for _, p := range excluded {
		skip[p] = true
	}

	opts := []otelhttp.Option{
		otelhttp.WithSpanNameFormatter(func(_ string, r *http.Request) string {
			return "HTTP " + r.Method + " " + r.URL.Path
		}),
	}
	if len(skip) > 0 {
		opts = append(opts, otelhttp.WithFilter(func(r *http.Request) bool {
			return !skip[r.URL.Path]
		}))
	}

	return func(next http.Handler) http.Handler {
		return otelhttp.NewHandler(next, serviceName, opts...)
	}
}

// NewTracedHTTPClient creates an HTTP client whose transport propagates trace
// context. A nil base uses http.DefaultTransport.
func NewTracedHTTPClient(base http.RoundTripper, timeout time.Duration) *http.Client {
	if base == nil {
		base = http.DefaultTransport
	}
	return &http.Client{
		Transport: otelhttp.NewTransport(base),
		Timeout:   timeout,
	}
}
