package agenda

import (
	"time"
)

const (
	dateLayout = "2006-01-02"
	// clockLayout renders e.g. "9:05 AM".
	clockLayout = "3:04 PM"

	// AllDayLabel is the displayTime of all-day events.
	AllDayLabel = "All day"
)

// FlatReport is the flat list response.
type FlatReport struct {
	Timezone           string   `json:"timezone"`
	Range              Range    `json:"range"`
	Count              int      `json:"count"`
	Events             []Event  `json:"events"`
	CalendarsRequested []string `json:"calendarsRequested"`
	CalendarsSucceeded []string `json:"calendarsSucceeded"`
	Errors             []string `json:"errors"`
}

// WallEvent is an Event with its wall-view display time.
type WallEvent struct {
	Event
	DisplayTime string `json:"displayTime"`
}

// WallReport is the today/upcoming partitioned response.
type WallReport struct {
	Timezone           string      `json:"timezone"`
	Range              Range       `json:"range"`
	TodayKey           string      `json:"todayKey"`
	Today              []WallEvent `json:"today"`
	Upcoming           []WallEvent `json:"upcoming"`
	TodayCount         int         `json:"todayCount"`
	UpcomingCount      int         `json:"upcomingCount"`
	CalendarsRequested []string    `json:"calendarsRequested"`
	CalendarsSucceeded []string    `json:"calendarsSucceeded"`
	Errors             []string    `json:"errors"`
}

// BuildFlat passes the merged events through with request metadata.
func BuildFlat(res *Result, timezone string, r Range) FlatReport {
	events := nonNil(res.Events)
	return FlatReport{
		Timezone:           timezone,
		Range:              r,
		Count:              len(events),
		Events:             events,
		CalendarsRequested: nonNil(res.CalendarsRequested),
		CalendarsSucceeded: nonNil(res.CalendarsSucceeded),
		Errors:             nonNil(res.Errors),
	}
}

// BuildWall splits the merged events into today and upcoming relative to
// now in loc. Order within each bucket is the merged order.
func BuildWall(res *Result, loc *time.Location, timezone string, r Range, now time.Time) WallReport {
	todayKey := now.In(loc).Format(dateLayout)

	report := WallReport{
		Timezone:           timezone,
		Range:              r,
		TodayKey:           todayKey,
		Today:              []WallEvent{},
		Upcoming:           []WallEvent{},
		CalendarsRequested: nonNil(res.CalendarsRequested),
		CalendarsSucceeded: nonNil(res.CalendarsSucceeded),
		Errors:             nonNil(res.Errors),
	}

	for _, ev := range res.Events {
		we := WallEvent{Event: ev, DisplayTime: DisplayTime(ev, loc)}
		if key, ok := DateKey(ev, loc); ok && key == todayKey {
			report.Today = append(report.Today, we)
		} else {
			report.Upcoming = append(report.Upcoming, we)
		}
	}

	report.TodayCount = len(report.Today)
	report.UpcomingCount = len(report.Upcoming)
	return report
}

// DisplayTime formats the start of ev for a wall display.
func DisplayTime(ev Event, loc *time.Location) string {
	if ev.AllDay {
		return AllDayLabel
	}
	t, err := time.Parse(time.RFC3339, ev.Start)
	if err != nil {
		return ""
	}
	return t.In(loc).Format(clockLayout)
}

// DateKey returns the calendar date of ev's start in loc. All-day starts are
// used as-is. ok is false when the start is missing or unparseable.
func DateKey(ev Event, loc *time.Location) (string, bool) {
	if !ev.HasStart() {
		return "", false
	}
	if ev.AllDay {
		if _, err := time.Parse(dateLayout, ev.Start); err != nil {
			return "", false
		}
		return ev.Start, true
	}
	t, err := time.Parse(time.RFC3339, ev.Start)
	if err != nil {
		return "", false
	}
	return t.In(loc).Format(dateLayout), true
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
