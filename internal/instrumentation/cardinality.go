package instrumentation

import (
	"net/url"
	"strings"
)

// CalendarLabel reduces a calendar id to a bounded label value for metrics.
//
// Google calendar ids keep their domain, ICS URLs keep their host. Nothing
// user-specific (local part, path, token) reaches the metrics backend.
//
// Example:
//
//	CalendarLabel("primary")                           // "primary"
//	CalendarLabel("abc123@group.calendar.google.com")  // "group.calendar.google.com"
//	CalendarLabel("https://example.com/private/x.ics") // "ics:example.com"
//	CalendarLabel("")                                  // "unknown"
func CalendarLabel(calendarID string) string {
	if calendarID == "" {
		return "unknown"
	}

	if strings.Contains(calendarID, "://") {
		u, err := url.Parse(calendarID)
		if err != nil || u.Hostname() == "" {
			return "unknown"
		}
		return "ics:" + u.Hostname()
	}

	if i := strings.LastIndex(calendarID, "@"); i >= 0 {
		if domain := calendarID[i+1:]; domain != "" {
			return domain
		}
		return "unknown"
	}

	return calendarID
}
