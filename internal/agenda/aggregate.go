package agenda

import (
	"context"
	"log/slog"
	"sort"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/teemow/calboard/internal/instrumentation"
	"github.com/teemow/calboard/internal/logging"
)

// Engine fans a time window out over many calendars and merges the results.
type Engine struct {
	fetcher *Fetcher
	logger  *slog.Logger
}

// NewEngine creates an Engine. A nil logger falls back to slog.Default().
func NewEngine(fetcher *Fetcher, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{
		fetcher: fetcher,
		logger:  logging.WithOperation(logger, "aggregate"),
	}
}

type outcome struct {
	index  int
	events []Event
	err    *FetchError
}

// Aggregate fetches every calendar concurrently and waits for all of them
// to settle. A failing calendar is recorded in the result and never affects
// the others. The only error returned is a *ConfigurationError.
//
// Fetches run detached from ctx cancellation; values (trace spans, request
// ids) still flow through.
func (e *Engine) Aggregate(ctx context.Context, calendarIDs []string, timeMin, timeMax time.Time) (*Result, error) {
	if len(calendarIDs) == 0 {
		return nil, NewConfigurationError("no calendar ids configured")
	}

	ctx, span := instrumentation.StartSpan(ctx, "aggregate",
		attribute.Int("calendar.count", len(calendarIDs)),
	)
	defer span.End()

	fetchCtx := context.WithoutCancel(ctx)
	outcomes := make(chan outcome, len(calendarIDs))
	for i, id := range calendarIDs {
		go func() {
			events, err := e.fetcher.Fetch(fetchCtx, id, timeMin, timeMax)
			o := outcome{index: i, events: events}
			if err != nil {
				o.err = asFetchError(id, err)
			}
			outcomes <- o
		}()
	}

	res := &Result{
		CalendarsRequested: append([]string(nil), calendarIDs...),
		CalendarsSucceeded: []string{},
		Errors:             []string{},
	}

	perCalendar := make([][]Event, len(calendarIDs))
	for range calendarIDs {
		o := <-outcomes
		id := calendarIDs[o.index]
		if o.err != nil {
			res.Errors = append(res.Errors, o.err.Error())
			res.Failures = append(res.Failures, o.err)
			e.logger.Warn("calendar fetch failed",
				logging.Calendar(id),
				logging.Reason(ErrorReason(o.err)),
				logging.Err(o.err.Cause),
			)
			continue
		}
		res.CalendarsSucceeded = append(res.CalendarsSucceeded, id)
		perCalendar[o.index] = o.events
		e.logger.Debug("calendar fetched", logging.Calendar(id), slog.Int("events", len(o.events)))
	}

	res.Events = merge(perCalendar)

	span.SetAttributes(
		attribute.Int("calendar.succeeded", len(res.CalendarsSucceeded)),
		attribute.Int("calendar.failed", len(res.Failures)),
		attribute.Int("event.count", len(res.Events)),
	)
	if len(res.CalendarsSucceeded) == 0 {
		span.SetAttributes(attribute.Bool("aggregate.all_failed", true))
	}
	instrumentation.SetSpanSuccess(span)

	return res, nil
}

// merge flattens per-calendar events in request order and sorts them by
// start, compared as plain strings. Date-only starts therefore precede
// timestamps on the same day. Events without a start go last.
func merge(perCalendar [][]Event) []Event {
	total := 0
	for _, events := range perCalendar {
		total += len(events)
	}

	merged := make([]Event, 0, total)
	for _, events := range perCalendar {
		merged = append(merged, events...)
	}

	sort.SliceStable(merged, func(i, j int) bool {
		return startLess(merged[i], merged[j])
	})
	return merged
}

func startLess(a, b Event) bool {
	switch {
	case !a.HasStart():
		return false
	case !b.HasStart():
		return true
	default:
		return a.Start < b.Start
	}
}

func asFetchError(id string, err error) *FetchError {
	if fe, ok := err.(*FetchError); ok {
		return fe
	}
	return &FetchError{CalendarID: id, Cause: err}
}
