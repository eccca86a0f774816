package sources

import (
	"context"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/teemow/calboard/internal/agenda"
	"github.com/teemow/calboard/internal/instrumentation"
	"github.com/teemow/calboard/internal/logging"
)

type instrumented struct {
	next    agenda.Lister
	source  string
	metrics *instrumentation.Metrics
	logger  *slog.Logger
}

// Instrument wraps next so that every list call gets a calendar.<source>.list
// span, a calendar_fetch_total sample and a debug log line. metrics and
// logger may be nil.
func Instrument(next agenda.Lister, source string, metrics *instrumentation.Metrics, logger *slog.Logger) agenda.Lister {
	if next == nil {
		return nil
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &instrumented{
		next:    next,
		source:  source,
		metrics: metrics,
		logger:  logging.WithOperation(logger, "list_events"),
	}
}

func (l *instrumented) ListEvents(ctx context.Context, calendarID string, timeMin, timeMax time.Time) ([]agenda.RawEvent, error) {
	attrs := instrumentation.NewSpanAttributeBuilder().
		WithSource(l.source).
		WithCalendar(calendarID).
		WithWindow(timeMin, timeMax).
		Build()
	ctx, span := instrumentation.StartCalendarSpan(ctx, l.source, attrs...)
	defer span.End()

	start := time.Now()
	raws, err := l.next.ListEvents(ctx, calendarID, timeMin, timeMax)
	duration := time.Since(start)

	reason := agenda.ErrorReason(err)
	l.metrics.RecordCalendarFetch(ctx, l.source, calendarID, reason, len(raws), duration)

	if err != nil {
		span.SetAttributes(attribute.String(instrumentation.SpanAttrReason, reason))
		instrumentation.SetSpanError(span, err)
		l.logger.Debug("calendar fetch failed",
			logging.Source(l.source),
			logging.Calendar(calendarID),
			logging.Reason(reason),
			slog.Duration(logging.KeyDuration, duration),
			logging.Err(err))
		return nil, err
	}

	span.SetAttributes(attribute.Int(instrumentation.SpanAttrEventCount, len(raws)))
	instrumentation.SetSpanSuccess(span)
	l.logger.Debug("calendar fetched",
		logging.Source(l.source),
		logging.Calendar(calendarID),
		slog.Int("events", len(raws)),
		slog.Duration(logging.KeyDuration, duration))
	return raws, nil
}
