// Package logging provides structured logging utilities for calboard.
//
// This package centralizes logging patterns to ensure consistent, structured logging
// throughout the codebase using the standard library's slog package.
//
// # Usage Patterns
//
// Build the process logger once and derive scoped loggers from it:
//
//	logger, err := logging.New(os.Stderr, "info", logging.FormatText)
//	if err != nil {
//	    return err
//	}
//	logger = logging.WithOperation(logger, "aggregate")
//	logger.Warn("calendar fetch failed",
//	    logging.Calendar(id),
//	    logging.Err(err))
//
// # Security Considerations
//
// ICS feed URLs often embed a private token. Calendar and RedactCalendarID
// never log more than scheme, host and the last path segment of a URL id.
package logging
