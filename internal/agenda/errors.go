package agenda

import (
	"context"
	"errors"
	"fmt"
)

// Provider failure classes. Calendar clients wrap these so callers can test
// with errors.Is.
var (
	ErrAuth      = errors.New("authentication failed")
	ErrRateLimit = errors.New("rate limit exceeded")
	ErrNotFound  = errors.New("calendar not found")
)

// Reason labels returned by ErrorReason.
const (
	ReasonAuth      = "auth"
	ReasonRateLimit = "rate_limit"
	ReasonNotFound  = "not_found"
	ReasonTimeout   = "timeout"
	ReasonConfig    = "config"
	ReasonOther     = "other"
)

// FetchError is a failure of one calendar. It never aborts sibling fetches.
type FetchError struct {
	CalendarID string
	Cause      error
}

func (e *FetchError) Error() string {
	if e.Cause == nil {
		return e.CalendarID + ": unknown error"
	}
	return e.CalendarID + ": " + e.Cause.Error()
}

func (e *FetchError) Unwrap() error {
	return e.Cause
}

// ConfigurationError aborts a whole request before any fetch is made.
type ConfigurationError struct {
	Reason string
}

func (e *ConfigurationError) Error() string {
	return "configuration error: " + e.Reason
}

// NewConfigurationError formats a ConfigurationError.
func NewConfigurationError(format string, args ...any) *ConfigurationError {
	return &ConfigurationError{Reason: fmt.Sprintf(format, args...)}
}

// IsConfigurationError reports whether err is or wraps a ConfigurationError.
func IsConfigurationError(err error) bool {
	var cfgErr *ConfigurationError
	return errors.As(err, &cfgErr)
}

// ErrorReason maps err to a low-cardinality label for metrics and logs.
func ErrorReason(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrAuth):
		return ReasonAuth
	case errors.Is(err, ErrRateLimit):
		return ReasonRateLimit
	case errors.Is(err, ErrNotFound):
		return ReasonNotFound
	case IsConfigurationError(err):
		return ReasonConfig
	case isTimeout(err):
		return ReasonTimeout
	default:
		return ReasonOther
	}
}

func isTimeout(err error) bool {
	var te interface{ Timeout() bool }
	if errors.As(err, &te) && te.Timeout() {
		return true
	}
	return errors.Is(err, context.DeadlineExceeded)
}
