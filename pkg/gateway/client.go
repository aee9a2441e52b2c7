package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"

	"github.com/itsneelabh/campusbite/pkg/logger"
	"github.com/itsneelabh/campusbite/pkg/models"
	"github.com/itsneelabh/campusbite/pkg/telemetry"
)

// DefaultTimeout bounds every backend call
const DefaultTimeout = 10 * time.Second

// maxResponseBytes caps how much of a response body is read
const maxResponseBytes = 4 << 20

// Credentials is the session the client authenticates with.
// *session.Session satisfies it.
type Credentials interface {
	Token(ctx context.Context) (string, error)
	User(ctx context.Context) (*models.User, error)
	Begin(ctx context.Context, token string, user models.User) error
	End(ctx context.Context) error
}

// Client talks to the ordering backend. Every call is a single attempt:
// network and backend errors are returned to the caller as they happen.
type Client struct {
	baseURL    string
	creds      Credentials
	httpClient *http.Client
	logger     logger.Logger
	tracer     trace.Tracer
	recorder   telemetry.CallRecorder
}

// Option configures a Client
type Option func(*Client)

// WithHTTPClient replaces the traced default HTTP client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithTimeout sets the per-call timeout on the default HTTP client
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.httpClient.Timeout = d }
}

// WithLogger sets the logger
func WithLogger(l logger.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// WithTracerProvider sets where spans are created; defaults to the global provider
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(c *Client) { c.tracer = tp.Tracer("campusbite.gateway") }
}

// WithRecorder sets the call metrics recorder
func WithRecorder(r telemetry.CallRecorder) Option {
	return func(c *Client) { c.recorder = r }
}

// New creates a client for the backend at baseURL
func New(baseURL string, creds Credentials, opts ...Option) (*Client, error) {
	if _, err := url.ParseRequestURI(baseURL); err != nil {
		return nil, fmt.Errorf("gateway: invalid base URL %q: %w", baseURL, err)
	}
	if creds == nil {
		return nil, fmt.Errorf("gateway: credentials are required")
	}

	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		creds:      creds,
		httpClient: telemetry.NewTracedHTTPClient(nil, DefaultTimeout),
		logger:     logger.NewNopLogger(),
		tracer:     otel.Tracer("campusbite.gateway"),
	}
	for _, opt := range opts {
		opt(c)
	}

	if c.recorder == nil {
		m, err := telemetry.NewClientMetrics(nil)
		if err != nil {
			return nil, fmt.Errorf("gateway: %w", err)
		}
		c.recorder = m
	}

	return c, nil
}

// request describes one backend call
type request struct {
	op     string
	method string
	path   string
	query  url.Values
	body   interface{}
	// public calls go out without the bearer token
	public bool
}

// do runs a call inside a span and decodes a 2xx JSON body into out
func (c *Client) do(ctx context.Context, r request, out interface{}) error {
	ctx, span := c.tracer.Start(ctx, "gateway."+r.op,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("http.method", r.method),
			attribute.String("http.route", r.path),
		),
	)
	defer span.End()

	start := time.Now()
	status, err := c.send(ctx, r, out)
	elapsed := time.Since(start)
	c.recorder.RecordCall(ctx, r.op, status, elapsed, err)

	if status != 0 {
		span.SetAttributes(attribute.Int("http.status_code", status))
	}

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		c.logger.Warn("Backend call failed", telemetry.EnrichLogFields(ctx, map[string]interface{}{
			"operation":   r.op,
			"status":      status,
			"duration_ms": elapsed.Milliseconds(),
			"error":       err,
		}))
		return err
	}

	span.SetStatus(codes.Ok, "")
	c.logger.Debug("Backend call succeeded", telemetry.EnrichLogFields(ctx, map[string]interface{}{
		"operation":   r.op,
		"status":      status,
		"duration_ms": elapsed.Milliseconds(),
	}))
	return nil
}

func (c *Client) send(ctx context.Context, r request, out interface{}) (int, error) {
	var reader io.Reader
	if r.body != nil {
		data, err := json.Marshal(r.body)
		if err != nil {
			return 0, fmt.Errorf("%s: encode request: %w", r.op, err)
		}
		reader = bytes.NewReader(data)
	}

	target := c.baseURL + r.path
	if len(r.query) > 0 {
		target += "?" + r.query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, r.method, target, reader)
	if err != nil {
		return 0, &NetworkError{Op: r.op, Err: err}
	}
	req.Header.Set("Accept", "application/json")
	if r.body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	if !r.public {
		token, err := c.creds.Token(ctx)
		if err != nil {
			return 0, fmt.Errorf("%s: %w", r.op, err)
		}
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	telemetry.InjectCorrelationHeaders(ctx, req.Header)
	if req.Header.Get(telemetry.HeaderRequestID) == "" {
		req.Header.Set(telemetry.HeaderRequestID, uuid.New().String())
	}
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(req.Header))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, &NetworkError{Op: r.op, Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return resp.StatusCode, &NetworkError{Op: r.op, Err: err}
	}

	if resp.StatusCode == http.StatusUnauthorized {
		c.expireSession(ctx, r.op)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return resp.StatusCode, newAPIError(r.op, resp.StatusCode, data)
	}

	if out != nil && len(bytes.TrimSpace(data)) > 0 {
		if err := json.Unmarshal(data, out); err != nil {
			return resp.StatusCode, fmt.Errorf("%s: decode response: %w", r.op, err)
		}
	}
	return resp.StatusCode, nil
}

// expireSession clears the stored credential after a 401. The original error
// is still returned to the caller, so a failure here is only logged.
func (c *Client) expireSession(ctx context.Context, op string) {
	if err := c.creds.End(ctx); err != nil {
		c.logger.Error("Failed to clear expired session", map[string]interface{}{
			"operation": op,
			"error":     err,
		})
		return
	}
	c.logger.Info("Session expired, credentials cleared", telemetry.EnrichLogFields(ctx, map[string]interface{}{
		"operation": op,
	}))
}

func escape(id string) string {
	return url.PathEscape(id)
}
