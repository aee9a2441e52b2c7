// Package logger provides structured logging for campusbite.
//
// Every component receives a Logger through its constructor instead of reaching
// for a package-level logger, so tests can swap in NewNopLogger or an observed
// zap core.
//
// # Logger Interface
//
//	type Logger interface {
//	    Debug(msg string, fields map[string]interface{})
//	    Info(msg string, fields map[string]interface{})
//	    Warn(msg string, fields map[string]interface{})
//	    Error(msg string, fields map[string]interface{})
//	    SetLevel(level string)
//	    With(fields map[string]interface{}) Logger
//	}
//
// # Zap Implementation
//
// ZapLogger is backed by go.uber.org/zap. The "json" format uses the
// production encoder with ISO8601 timestamps; any other format uses the
// human-readable console encoder. The level is held in a zap.AtomicLevel so
// SetLevel can change it at runtime.
//
//	log := logger.NewZapLogger("debug", "console")
//	log.Info("Placing order", map[string]interface{}{
//	    "vendor_id": vendorID,
//	    "items":     3,
//	})
//
// Values implementing error are encoded with zap.NamedError, everything else
// with zap.Any.
//
// # Configuration
//
//   - LOG_LEVEL: Minimum log level (debug, info, warn, error)
//   - LOG_FORMAT: Output format (json, console)
//
// # Contextual Logging
//
//	checkoutLog := log.With(map[string]interface{}{
//	    "component": "checkout",
//	    "vendor_id": vendorID,
//	})
//
// Never log bearer tokens or OTP codes.
package logger
