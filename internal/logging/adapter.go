package logging

import (
	"log/slog"
)

// CronLogger adapts an slog.Logger to the logger interface expected by
// github.com/robfig/cron/v3 (Info and Error with key/value pairs).
type CronLogger struct {
	logger *slog.Logger
}

// NewCronLogger creates a CronLogger wrapping the given slog.Logger.
// If logger is nil, slog.Default() is used.
func NewCronLogger(logger *slog.Logger) *CronLogger {
	if logger == nil {
		logger = slog.Default()
	}
	return &CronLogger{logger: logger}
}

// Info logs routine scheduler messages. The scheduler is chatty, so these go
// to debug level.
func (a *CronLogger) Info(msg string, keysAndValues ...interface{}) {
	a.logger.Debug(msg, keysAndValues...)
}

// Error logs scheduler errors, such as a recovered job panic.
func (a *CronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	args := make([]interface{}, 0, len(keysAndValues)+1)
	args = append(args, Err(err))
	args = append(args, keysAndValues...)
	a.logger.Error(msg, args...)
}

// Logger returns the underlying slog.Logger for direct access when needed.
func (a *CronLogger) Logger() *slog.Logger {
	return a.logger
}
