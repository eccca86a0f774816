package agenda

import "strings"

// Normalize converts a provider record into the canonical Event. It never
// fails: absent fields fall back to defaults.
func Normalize(raw RawEvent, sourceCalendarID string) Event {
	title := raw.Summary
	if strings.TrimSpace(title) == "" {
		title = UntitledPlaceholder
	}

	return Event{
		ID:               sourceCalendarID + IDSeparator + raw.ID,
		SourceCalendarID: sourceCalendarID,
		Title:            title,
		Location:         raw.Location,
		Description:      raw.Description,
		AllDay:           isDateOnly(raw.Start),
		Start:            timeValue(raw.Start),
		End:              timeValue(raw.End),
	}
}

func isDateOnly(t *EventTime) bool {
	return t != nil && t.DateTime == "" && t.Date != ""
}

// timeValue prefers the timestamp over the date.
func timeValue(t *EventTime) string {
	if t == nil {
		return ""
	}
	if t.DateTime != "" {
		return t.DateTime
	}
	return t.Date
}
