package agenda

import (
	"context"
	"time"
)

// Lister is the read capability of an external calendar client.
//
// Implementations must request single (recurrence-expanded) events ordered
// by start time and capped at MaxResults.
type Lister interface {
	ListEvents(ctx context.Context, calendarID string, timeMin, timeMax time.Time) ([]RawEvent, error)
}

// ListerFunc adapts a function to the Lister interface.
type ListerFunc func(ctx context.Context, calendarID string, timeMin, timeMax time.Time) ([]RawEvent, error)

// ListEvents calls f.
func (f ListerFunc) ListEvents(ctx context.Context, calendarID string, timeMin, timeMax time.Time) ([]RawEvent, error) {
	return f(ctx, calendarID, timeMin, timeMax)
}

// Fetcher retrieves and normalizes the events of a single calendar.
type Fetcher struct {
	lister  Lister
	timeout time.Duration
}

// NewFetcher returns a Fetcher backed by lister. A zero timeout means the
// fetch runs until the lister returns.
func NewFetcher(lister Lister, timeout time.Duration) *Fetcher {
	return &Fetcher{lister: lister, timeout: timeout}
}

// Fetch lists calendarID over [timeMin, timeMax) and normalizes the result.
// Any failure is returned as a *FetchError; there is no retry here.
func (f *Fetcher) Fetch(ctx context.Context, calendarID string, timeMin, timeMax time.Time) ([]Event, error) {
	if f.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, f.timeout)
		defer cancel()
	}

	raws, err := f.lister.ListEvents(ctx, calendarID, timeMin, timeMax)
	if err != nil {
		return nil, &FetchError{CalendarID: calendarID, Cause: err}
	}

	events := make([]Event, 0, len(raws))
	for _, raw := range raws {
		events = append(events, Normalize(raw, calendarID))
	}
	return events, nil
}
