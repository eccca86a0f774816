package server

import (
	"context"

	"github.com/teemow/calboard/internal/agenda"
	"github.com/teemow/calboard/internal/instrumentation"
)

// FlatReport aggregates all configured calendars over [now, now+days) and
// returns the merged list. days is clamped to [1, agenda.FlatMaxDays]; zero
// or less selects the configured default.
func (sc *ServerContext) FlatReport(ctx context.Context, days int) (*agenda.FlatReport, error) {
	if days <= 0 {
		days = sc.cfg.FlatDefaultDays
	}
	window := agenda.FlatWindow(sc.now().In(sc.loc), agenda.ClampDays(days, agenda.FlatMaxDays))

	res, err := sc.aggregate(ctx, instrumentation.ModeFlat, window)
	if err != nil {
		return nil, err
	}
	report := agenda.BuildFlat(res, sc.loc.String(), window.Range())
	return &report, nil
}

// WallReport aggregates all configured calendars from the start of today in
// the display time zone and splits the events into today and upcoming.
func (sc *ServerContext) WallReport(ctx context.Context, days int) (*agenda.WallReport, error) {
	if days <= 0 {
		days = sc.cfg.WallDefaultDays
	}
	now := sc.now()
	window := agenda.WallWindow(now, sc.loc, agenda.ClampDays(days, agenda.WallMaxDays))

	res, err := sc.aggregate(ctx, instrumentation.ModeWall, window)
	if err != nil {
		return nil, err
	}
	report := agenda.BuildWall(res, sc.loc, sc.loc.String(), window.Range(), now)
	return &report, nil
}

// Aggregate runs one aggregation over an explicit window. The probe uses it.
func (sc *ServerContext) Aggregate(ctx context.Context, mode string, window agenda.Window) (*agenda.Result, error) {
	return sc.aggregate(ctx, mode, window)
}

func (sc *ServerContext) aggregate(ctx context.Context, mode string, window agenda.Window) (*agenda.Result, error) {
	metrics := sc.Metrics()

	engine, err := sc.Engine()
	if err != nil {
		metrics.RecordAggregation(ctx, mode, instrumentation.OutcomeFailed)
		return nil, err
	}

	res, err := engine.Aggregate(ctx, sc.cfg.CalendarIDs, window.Min, window.Max)
	if err != nil {
		metrics.RecordAggregation(ctx, mode, instrumentation.OutcomeFailed)
		return nil, err
	}

	metrics.RecordAggregation(ctx, mode, instrumentation.AggregationOutcome(len(res.CalendarsSucceeded), len(res.Failures)))
	return res, nil
}
