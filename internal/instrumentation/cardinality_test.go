package instrumentation

import "testing"

func TestCalendarLabel(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"primary", "primary"},
		{"abc123@group.calendar.google.com", "group.calendar.google.com"},
		{"jane@example.com", "example.com"},
		{"trailing@", "unknown"},
		{"https://calendar.google.com/calendar/ical/x/private-y/basic.ics", "ics:calendar.google.com"},
		{"webcal://example.com:8443/feed.ics?token=1", "ics:example.com"},
		{"https://", "unknown"},
		{"", "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := CalendarLabel(tt.input); got != tt.expected {
				t.Errorf("CalendarLabel(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}
