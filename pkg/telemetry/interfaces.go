package telemetry

import (
	"context"
	"time"
)

// CallRecorder records the outcome of one outbound backend call.
// status is the HTTP status code, or 0 when no response arrived.
type CallRecorder interface {
	RecordCall(ctx context.Context, op string, status int, duration time.Duration, err error)
}
