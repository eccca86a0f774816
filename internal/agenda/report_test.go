package agenda

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustLoad(t *testing.T, name string) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation(name)
	require.NoError(t, err)
	return loc
}

func TestDisplayTime(t *testing.T) {
	berlin := mustLoad(t, "Europe/Berlin")

	tests := []struct {
		name string
		ev   Event
		loc  *time.Location
		want string
	}{
		{"all day", Event{AllDay: true, Start: "2024-03-01"}, time.UTC, AllDayLabel},
		{"utc morning", Event{Start: "2024-03-01T09:05:00Z"}, time.UTC, "9:05 AM"},
		{"converted to zone", Event{Start: "2024-03-01T13:30:00Z"}, berlin, "2:30 PM"},
		{"offset input", Event{Start: "2024-03-01T00:00:00-05:00"}, time.UTC, "5:00 AM"},
		{"unparseable", Event{Start: "tomorrow"}, time.UTC, ""},
		{"missing", Event{}, time.UTC, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DisplayTime(tt.ev, tt.loc))
		})
	}
}

func TestBuildWall_Partition(t *testing.T) {
	ny := mustLoad(t, "America/New_York")
	// 2024-03-01 23:30 in New York.
	now := time.Date(2024, 3, 2, 4, 30, 0, 0, time.UTC)

	res := &Result{
		CalendarsRequested: []string{"A"},
		CalendarsSucceeded: []string{"A"},
		Errors:             []string{},
		Events: []Event{
			{ID: "A::allday-today", AllDay: true, Start: "2024-03-01"},
			{ID: "A::timed-today-local", Start: "2024-03-02T02:00:00Z"},
			{ID: "A::allday-tomorrow", AllDay: true, Start: "2024-03-02"},
			{ID: "A::timed-tomorrow-local", Start: "2024-03-02T06:00:00Z"},
			{ID: "A::bad", Start: "not-a-date"},
			{ID: "A::missing"},
		},
	}

	report := BuildWall(res, ny, "America/New_York", Range{Days: 7}, now)

	assert.Equal(t, "2024-03-01", report.TodayKey)
	assert.Equal(t, []string{"A::allday-today", "A::timed-today-local"}, wallIDs(report.Today))
	assert.Equal(t, []string{"A::allday-tomorrow", "A::timed-tomorrow-local", "A::bad", "A::missing"}, wallIDs(report.Upcoming))
	assert.Equal(t, 2, report.TodayCount)
	assert.Equal(t, 4, report.UpcomingCount)
	assert.Equal(t, "9:00 PM", report.Today[1].DisplayTime)
	assert.Equal(t, AllDayLabel, report.Today[0].DisplayTime)
	assert.Equal(t, "", report.Upcoming[2].DisplayTime)
}

func TestBuildWall_PartitionMatchesZoneDate(t *testing.T) {
	tokyo := mustLoad(t, "Asia/Tokyo")
	now := time.Date(2024, 6, 10, 12, 0, 0, 0, tokyo)

	starts := []string{
		"2024-06-09T14:59:59Z", // 23:59:59 on the 9th in Tokyo
		"2024-06-09T15:00:00Z", // midnight on the 10th in Tokyo
		"2024-06-10T14:59:59Z",
		"2024-06-10T15:00:00Z",
	}

	for _, s := range starts {
		t.Run(s, func(t *testing.T) {
			parsed, err := time.Parse(time.RFC3339, s)
			require.NoError(t, err)
			wantToday := parsed.In(tokyo).Format("2006-01-02") == now.Format("2006-01-02")

			report := BuildWall(&Result{Events: []Event{{ID: "x", Start: s}}}, tokyo, "Asia/Tokyo", Range{}, now)
			assert.Equal(t, wantToday, report.TodayCount == 1)
			assert.Equal(t, !wantToday, report.UpcomingCount == 1)
		})
	}
}

func TestBuildFlat(t *testing.T) {
	res := &Result{
		CalendarsRequested: []string{"A", "B"},
		CalendarsSucceeded: []string{"B"},
		Errors:             []string{"A: boom"},
		Events: []Event{
			{ID: "B::1", Start: "2024-03-01"},
		},
	}
	r := Range{Days: 30, TimeMin: "2024-03-01T00:00:00Z", TimeMax: "2024-03-31T00:00:00Z"}

	report := BuildFlat(res, "UTC", r)

	assert.Equal(t, 1, report.Count)
	assert.Equal(t, "UTC", report.Timezone)
	assert.Equal(t, r, report.Range)
	assert.Equal(t, []string{"B"}, report.CalendarsSucceeded)
	assert.Equal(t, []string{"A: boom"}, report.Errors)
}

func TestReports_EmptySlicesSerializeAsArrays(t *testing.T) {
	res := &Result{}

	flat, err := json.Marshal(BuildFlat(res, "UTC", Range{}))
	require.NoError(t, err)
	wall, err := json.Marshal(BuildWall(res, time.UTC, "UTC", Range{}, time.Now()))
	require.NoError(t, err)

	var flatOut map[string]any
	require.NoError(t, json.Unmarshal(flat, &flatOut))
	for _, key := range []string{"events", "calendarsRequested", "calendarsSucceeded", "errors"} {
		assert.Equal(t, []any{}, flatOut[key], key)
	}

	var wallOut map[string]any
	require.NoError(t, json.Unmarshal(wall, &wallOut))
	for _, key := range []string{"today", "upcoming", "calendarsRequested", "calendarsSucceeded", "errors"} {
		assert.Equal(t, []any{}, wallOut[key], key)
	}
}

func TestWallEvent_JSONFields(t *testing.T) {
	we := WallEvent{
		Event:       Event{ID: "A::1", SourceCalendarID: "A", Title: "t", Start: "2024-03-01"},
		DisplayTime: "",
	}
	data, err := json.Marshal(we)
	require.NoError(t, err)

	var out map[string]any
	require.NoError(t, json.Unmarshal(data, &out))
	for _, key := range []string{"id", "sourceCalendarId", "title", "location", "description", "allDay", "start", "end", "displayTime"} {
		assert.Contains(t, out, key)
	}
}

func TestWindows(t *testing.T) {
	ny := mustLoad(t, "America/New_York")
	now := time.Date(2024, 3, 2, 4, 30, 0, 0, time.UTC)

	flat := FlatWindow(now, 30)
	assert.Equal(t, now, flat.Min)
	assert.Equal(t, now.AddDate(0, 0, 30), flat.Max)

	wall := WallWindow(now, ny, 7)
	assert.Equal(t, time.Date(2024, 3, 1, 0, 0, 0, 0, ny), wall.Min)
	assert.Equal(t, time.Date(2024, 3, 8, 0, 0, 0, 0, ny), wall.Max)

	r := wall.Range()
	assert.Equal(t, 7, r.Days)
	assert.Equal(t, "2024-03-01T05:00:00Z", r.TimeMin)
}

func TestParseDays(t *testing.T) {
	tests := []struct {
		in   string
		def  int
		max  int
		want int
	}{
		{"", FlatDefaultDays, FlatMaxDays, 30},
		{"abc", FlatDefaultDays, FlatMaxDays, 30},
		{"10", FlatDefaultDays, FlatMaxDays, 10},
		{"0", FlatDefaultDays, FlatMaxDays, 1},
		{"-4", FlatDefaultDays, FlatMaxDays, 1},
		{"1000", FlatDefaultDays, FlatMaxDays, 365},
		{"", WallDefaultDays, WallMaxDays, 7},
		{"60", WallDefaultDays, WallMaxDays, 31},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseDays(tt.in, tt.def, tt.max))
		})
	}
}

func TestEndToEnd_AllDayBeforeTimed(t *testing.T) {
	lister := &fakeLister{
		events: map[string][]RawEvent{
			"A": {{ID: "t", Summary: "Timed", Start: &EventTime{DateTime: "2024-03-01T09:00:00Z"}}},
			"B": {{ID: "d", Summary: "Day", Start: &EventTime{Date: "2024-03-01"}}},
		},
	}
	res, err := newTestEngine(lister).Aggregate(t.Context(), []string{"A", "B"}, testMin, testMax)
	require.NoError(t, err)

	report := BuildFlat(res, "UTC", Range{Days: 7})
	assert.Equal(t, 2, report.Count)
	assert.Equal(t, "2024-03-01", report.Events[0].Start)
	assert.Equal(t, "2024-03-01T09:00:00Z", report.Events[1].Start)
	assert.Empty(t, report.Errors)
	assert.ElementsMatch(t, []string{"A", "B"}, report.CalendarsSucceeded)
}

func wallIDs(events []WallEvent) []string {
	ids := make([]string, 0, len(events))
	for _, ev := range events {
		ids = append(ids, ev.ID)
	}
	return ids
}
