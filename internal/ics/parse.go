package ics

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	ical "github.com/arran4/golang-ical"

	"github.com/teemow/calboard/internal/agenda"
)

const (
	icsDateLayout  = "20060102"
	jsonDateLayout = "2006-01-02"
)

// feedEvent is a parsed VEVENT together with the values used for window
// filtering. For all-day events start and end are calendar dates held as UTC
// midnight, with end exclusive.
type feedEvent struct {
	raw    agenda.RawEvent
	start  time.Time
	end    time.Time
	allDay bool
}

// overlaps reports whether the event intersects [timeMin, timeMax). All-day
// events are compared by calendar date in the window's own location.
func (e feedEvent) overlaps(timeMin, timeMax time.Time) bool {
	if e.allDay {
		first := civilDate(timeMin)
		last := civilDate(timeMax.Add(-time.Nanosecond))
		return !e.start.After(last) && e.end.After(first)
	}
	if !e.start.Before(timeMax) {
		return false
	}
	if e.end.After(e.start) {
		return e.end.After(timeMin)
	}
	return !e.start.Before(timeMin)
}

// parseFeed reads an iCalendar stream and returns its events. VEVENTs without a
// usable DTSTART and cancelled VEVENTs are skipped.
func parseFeed(r io.Reader) ([]feedEvent, error) {
	cal, err := ical.ParseCalendar(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse feed: %w", err)
	}

	vevents := cal.Events()
	events := make([]feedEvent, 0, len(vevents))
	for i, ve := range vevents {
		if strings.EqualFold(propertyValue(ve, ical.ComponentPropertyStatus), "CANCELLED") {
			continue
		}
		ev, ok := parseVEvent(ve, i)
		if !ok {
			continue
		}
		events = append(events, ev)
	}
	return events, nil
}

func parseVEvent(ve *ical.VEvent, index int) (feedEvent, bool) {
	dtStart := ve.GetProperty(ical.ComponentPropertyDtStart)
	if dtStart == nil || strings.TrimSpace(dtStart.Value) == "" {
		return feedEvent{}, false
	}

	out := feedEvent{
		raw: agenda.RawEvent{
			ID:          eventID(ve, index),
			Summary:     unescapeText(propertyValue(ve, ical.ComponentPropertySummary)),
			Location:    unescapeText(propertyValue(ve, ical.ComponentPropertyLocation)),
			Description: unescapeText(propertyValue(ve, ical.ComponentPropertyDescription)),
		},
		allDay: isDateValue(dtStart),
	}

	if out.allDay {
		start, err := time.Parse(icsDateLayout, dateDigits(dtStart.Value))
		if err != nil {
			return feedEvent{}, false
		}
		out.start = start
		out.raw.Start = &agenda.EventTime{Date: start.Format(jsonDateLayout)}

		if dtEnd := ve.GetProperty(ical.ComponentPropertyDtEnd); dtEnd != nil {
			if end, err := time.Parse(icsDateLayout, dateDigits(dtEnd.Value)); err == nil {
				out.end = end
				out.raw.End = &agenda.EventTime{Date: end.Format(jsonDateLayout)}
			}
		}
		// RFC 5545: a date-only DTSTART without DTEND lasts one day.
		if !out.end.After(out.start) {
			out.end = out.start.AddDate(0, 0, 1)
		}
		return out, true
	}

	start, err := ve.GetStartAt()
	if err != nil {
		return feedEvent{}, false
	}
	out.start = start
	out.raw.Start = &agenda.EventTime{DateTime: start.Format(time.RFC3339)}

	if ve.GetProperty(ical.ComponentPropertyDtEnd) != nil {
		if end, err := ve.GetEndAt(); err == nil {
			out.end = end
			out.raw.End = &agenda.EventTime{DateTime: end.Format(time.RFC3339)}
		}
	}
	return out, true
}

// eventID is the UID, suffixed with RECURRENCE-ID for overridden instances
// so that they do not collide with their master. Events without a UID get a
// positional id.
func eventID(ve *ical.VEvent, index int) string {
	uid := strings.TrimSpace(propertyValue(ve, ical.ComponentPropertyUniqueId))
	if uid == "" {
		uid = "vevent-" + strconv.Itoa(index)
	}
	if rid := strings.TrimSpace(propertyValue(ve, ical.ComponentProperty("RECURRENCE-ID"))); rid != "" {
		uid += "/" + rid
	}
	return uid
}

// civilDate returns the calendar date of t in its own location as UTC
// midnight.
func civilDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func isDateValue(prop *ical.IANAProperty) bool {
	if vs, ok := prop.ICalParameters["VALUE"]; ok && len(vs) > 0 && strings.EqualFold(vs[0], "DATE") {
		return true
	}
	return !strings.Contains(prop.Value, "T")
}

func dateDigits(value string) string {
	value = strings.TrimSpace(value)
	if len(value) > len(icsDateLayout) {
		return value[:len(icsDateLayout)]
	}
	return value
}

func propertyValue(ve *ical.VEvent, prop ical.ComponentProperty) string {
	if p := ve.GetProperty(prop); p != nil {
		return p.Value
	}
	return ""
}

var textUnescaper = strings.NewReplacer(`\n`, "\n", `\N`, "\n", `\,`, ",", `\;`, ";", `\\`, `\`)

// unescapeText decodes RFC 5545 TEXT escapes.
func unescapeText(s string) string {
	if !strings.Contains(s, `\`) {
		return s
	}
	return textUnescaper.Replace(s)
}
