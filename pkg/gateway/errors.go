package gateway

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Sentinel errors. Backend failures are *APIError values that match
// ErrUnauthorized or ErrNotFound through errors.Is.
var (
	ErrUnauthorized = errors.New("unauthorized")
	ErrNotFound     = errors.New("not found")

	ErrInvalidPhone = errors.New("phone number must be 10 digits starting with 6-9")
	ErrInvalidOTP   = errors.New("OTP must be exactly 6 digits")
	ErrEmptyOrder   = errors.New("order has no items")
	ErrMissingSlot  = errors.New("order has no pickup slot")
	ErrInvalidQty   = errors.New("item quantity must be positive")
)

// ValidationError is a request rejected before any network call
type ValidationError struct {
	Op    string
	Field string
	Err   error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: invalid %s: %v", e.Op, e.Field, e.Err)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// NetworkError is a transport failure: no HTTP response was received
type NetworkError struct {
	Op  string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("%s: network error: %v", e.Op, e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// APIError is a non-2xx response from the backend
type APIError struct {
	Op         string
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s: backend returned %d: %s", e.Op, e.StatusCode, e.Message)
}

// Is matches the status-based sentinels
func (e *APIError) Is(target error) bool {
	switch target {
	case ErrUnauthorized:
		return e.StatusCode == http.StatusUnauthorized
	case ErrNotFound:
		return e.StatusCode == http.StatusNotFound
	}
	return false
}

// newAPIError extracts the backend's message from a JSON error body.
// Recognised shapes: {"message": ...}, {"error": ...}, {"detail": "..."} and
// {"detail": [{"msg": ...}]}.
func newAPIError(op string, status int, body []byte) *APIError {
	return &APIError{Op: op, StatusCode: status, Message: errorMessage(status, body)}
}

func errorMessage(status int, body []byte) string {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err == nil {
		for _, key := range []string{"message", "error", "detail"} {
			raw, ok := fields[key]
			if !ok {
				continue
			}
			var s string
			if json.Unmarshal(raw, &s) == nil && s != "" {
				return s
			}
			var details []struct {
				Msg string `json:"msg"`
			}
			if json.Unmarshal(raw, &details) == nil && len(details) > 0 {
				msgs := make([]string, 0, len(details))
				for _, d := range details {
					msgs = append(msgs, d.Msg)
				}
				return strings.Join(msgs, "; ")
			}
		}
	}

	if text := strings.TrimSpace(string(body)); text != "" && len(text) <= 200 && !strings.HasPrefix(text, "{") {
		return text
	}
	return http.StatusText(status)
}
