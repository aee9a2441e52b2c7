// Package gateway is the HTTP client for the campus food-ordering backend.
//
// # Authentication
//
// RequestOTP and VerifyOTP are public calls. Every other call carries
// "Authorization: Bearer <token>" read from the Credentials passed to New,
// normally a *session.Session. Whenever the backend answers 401, the client
// ends the session (clearing token and profile) and then returns the
// *APIError, so errors.Is(err, ErrUnauthorized) tells the caller to sign in
// again.
//
//	sess := session.New(store, log)
//	client, err := gateway.New("http://localhost:8000", sess,
//	    gateway.WithLogger(log),
//	)
//	if _, err := client.RequestOTP(ctx, "9876543210"); err != nil { ... }
//	auth, err := client.VerifyOTP(ctx, "9876543210", "123456")
//
// # Failures
//
// Each call is made exactly once. There is no retry and no backoff:
//   - *ValidationError: rejected locally, nothing was sent
//   - *NetworkError: no response arrived (DNS, refused, timeout)
//   - *APIError: the backend answered with a non-2xx status
//
// # Concurrency
//
// LoadVendor issues the vendor detail and menu list requests in parallel
// with errgroup and fails as a whole if either fails.
//
// # Observability
//
// Every call runs in a client span named "gateway.<Operation>", propagates
// W3C trace context and correlation ids, and is counted by the configured
// telemetry.CallRecorder.
package gateway
