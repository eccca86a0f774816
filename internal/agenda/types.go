package agenda

// MaxResults is the per-calendar cap requested from providers. Anything a
// provider truncates beyond this is dropped without retry.
const MaxResults = 2500

// IDSeparator joins the source calendar id and the provider event id.
const IDSeparator = "::"

// UntitledPlaceholder is used when a provider event has no summary.
const UntitledPlaceholder = "(No title)"

// EventTime is a provider start or end value. Exactly one of Date
// (all-day, "2006-01-02") or DateTime (RFC 3339) is normally set.
type EventTime struct {
	Date     string
	DateTime string
}

// RawEvent is a provider-native event record before normalization.
type RawEvent struct {
	ID          string
	Summary     string
	Location    string
	Description string
	Start       *EventTime
	End         *EventTime
}

// Event is the canonical, provider-agnostic event.
type Event struct {
	ID               string `json:"id"`
	SourceCalendarID string `json:"sourceCalendarId"`
	Title            string `json:"title"`
	Location         string `json:"location"`
	Description      string `json:"description"`
	AllDay           bool   `json:"allDay"`
	Start            string `json:"start"`
	End              string `json:"end"`
}

// HasStart reports whether the event carries any start value.
func (e Event) HasStart() bool {
	return e.Start != ""
}

// Result is the outcome of one aggregation run.
type Result struct {
	CalendarsRequested []string `json:"calendarsRequested"`
	// CalendarsSucceeded and Errors are in completion order.
	CalendarsSucceeded []string `json:"calendarsSucceeded"`
	Errors             []string `json:"errors"`
	Events             []Event  `json:"events"`

	// Failures holds the typed errors behind Errors, same order.
	Failures []*FetchError `json:"-"`
}

// Partial reports whether some, but not all, calendars failed.
func (r *Result) Partial() bool {
	return len(r.Failures) > 0 && len(r.CalendarsSucceeded) > 0
}
