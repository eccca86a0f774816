package logging

import (
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"strings"
)

// Common log attribute keys for consistent naming across the codebase.
const (
	KeyOperation = "operation"
	KeyCalendar  = "calendar"
	KeySource    = "source"
	KeyReason    = "reason"
	KeyRequestID = "request_id"
	KeyDuration  = "duration"
	KeyStatus    = "status"
	KeyError     = "error"
	KeyTool      = "tool"
)

// Status values for consistent logging.
// Note: These are intentionally duplicated from instrumentation package
// to avoid circular dependencies.
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// Output formats accepted by New.
const (
	FormatText = "text"
	FormatJSON = "json"
)

// New builds a logger writing to w at the given level ("debug", "info",
// "warn", "error") in text or JSON format.
func New(w io.Writer, level, format string) (*slog.Logger, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}

	opts := &slog.HandlerOptions{Level: lvl}
	switch strings.ToLower(format) {
	case "", FormatText:
		return slog.New(slog.NewTextHandler(w, opts)), nil
	case FormatJSON:
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	default:
		return nil, fmt.Errorf("invalid log format %q, must be one of: text, json", format)
	}
}

// WithOperation returns a logger with the operation attribute set.
func WithOperation(logger *slog.Logger, operation string) *slog.Logger {
	return logger.With(slog.String(KeyOperation, operation))
}

// WithTool returns a logger with the tool attribute set.
func WithTool(logger *slog.Logger, tool string) *slog.Logger {
	return logger.With(slog.String(KeyTool, tool))
}

// Operation returns a slog attribute for the operation name.
func Operation(op string) slog.Attr {
	return slog.String(KeyOperation, op)
}

// Calendar returns a slog attribute for a calendar id. URL ids are redacted.
func Calendar(id string) slog.Attr {
	return slog.String(KeyCalendar, RedactCalendarID(id))
}

// Source returns a slog attribute for the calendar source kind.
func Source(kind string) slog.Attr {
	return slog.String(KeySource, kind)
}

// Reason returns a slog attribute for a failure class.
func Reason(reason string) slog.Attr {
	return slog.String(KeyReason, reason)
}

// RequestID returns a slog attribute for the inbound request id.
func RequestID(id string) slog.Attr {
	return slog.String(KeyRequestID, id)
}

// Status returns a slog attribute for the status.
func Status(status string) slog.Attr {
	return slog.String(KeyStatus, status)
}

// Err returns a slog attribute for an error.
// If err is nil, returns an empty Group attribute that will be omitted from output.
//
// Usage:
//
//	logger.Info("operation", logging.Err(err))  // Safe even if err is nil
func Err(err error) slog.Attr {
	if err == nil {
		return slog.Group("")
	}
	return slog.String(KeyError, err.Error())
}

// RedactCalendarID strips credentials, query and fragment from URL ids.
// Private ICS feed URLs usually carry their secret in the path or query, so
// only the scheme, host and the last path segment survive. Plain calendar
// ids are returned unchanged.
func RedactCalendarID(id string) string {
	if !strings.Contains(id, "://") {
		return id
	}
	u, err := url.Parse(id)
	if err != nil || u.Host == "" {
		return "<invalid-url>"
	}
	last := ""
	if i := strings.LastIndex(strings.TrimSuffix(u.Path, "/"), "/"); i >= 0 {
		last = u.Path[i:]
	}
	return u.Scheme + "://" + u.Host + "/..." + last
}
