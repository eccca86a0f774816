package calendar

import (
	"context"
	"fmt"
	"net/http"
	"time"

	calendar "google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"

	"github.com/teemow/calboard/internal/agenda"
)

// Client wraps the Google Calendar service
type Client struct {
	svc *calendar.Service
}

var _ agenda.Lister = (*Client)(nil)

// NewClient creates a Calendar client on top of an already authenticated
// HTTP client. A non-empty endpoint overrides the API base URL, which is how
// tests point the client at a fake server.
func NewClient(ctx context.Context, httpClient *http.Client, endpoint ...string) (*Client, error) {
	opts := []option.ClientOption{option.WithHTTPClient(httpClient)}
	if len(endpoint) > 0 && endpoint[0] != "" {
		opts = append(opts, option.WithEndpoint(endpoint[0]))
	}

	svc, err := calendar.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create Calendar service: %w", err)
	}

	return &Client{svc: svc}, nil
}

// ListEvents lists the single (recurrence-expanded) events of calendarID that
// overlap [timeMin, timeMax), ordered by start time.
//
// Only the first page is read. Calendars with more than agenda.MaxResults
// events in the window are truncated.
func (c *Client) ListEvents(ctx context.Context, calendarID string, timeMin, timeMax time.Time) ([]agenda.RawEvent, error) {
	events, err := c.svc.Events.List(calendarID).
		TimeMin(timeMin.UTC().Format(time.RFC3339)).
		TimeMax(timeMax.UTC().Format(time.RFC3339)).
		SingleEvents(true).
		OrderBy("startTime").
		MaxResults(agenda.MaxResults).
		Context(ctx).
		Do()
	if err != nil {
		return nil, classify(err)
	}

	raws := make([]agenda.RawEvent, 0, len(events.Items))
	for _, event := range events.Items {
		if event == nil || event.Status == "cancelled" {
			continue
		}
		raws = append(raws, toRawEvent(event))
	}
	return raws, nil
}

func toRawEvent(event *calendar.Event) agenda.RawEvent {
	return agenda.RawEvent{
		ID:          event.Id,
		Summary:     event.Summary,
		Location:    event.Location,
		Description: event.Description,
		Start:       toEventTime(event.Start),
		End:         toEventTime(event.End),
	}
}

func toEventTime(dt *calendar.EventDateTime) *agenda.EventTime {
	if dt == nil {
		return nil
	}
	return &agenda.EventTime{Date: dt.Date, DateTime: dt.DateTime}
}
