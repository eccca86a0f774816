package google

import calendar "google.golang.org/api/calendar/v3"

// DefaultScopes are the OAuth scopes requested for the service account.
//
// Only read access to Calendar is needed; the service never writes events.
var DefaultScopes = []string{
	calendar.CalendarReadonlyScope,
}
