package agenda

import (
	"strconv"
	"time"
)

// Day limits for the two report shapes.
const (
	FlatDefaultDays = 30
	FlatMaxDays     = 365
	WallDefaultDays = 7
	WallMaxDays     = 31
	MinDays         = 1
)

// Range is the requested window as echoed back in reports.
type Range struct {
	Days    int    `json:"days"`
	TimeMin string `json:"timeMin"`
	TimeMax string `json:"timeMax"`
}

// Window is a half-open time window [Min, Max).
type Window struct {
	Days int
	Min  time.Time
	Max  time.Time
}

// Range renders the window in UTC RFC 3339.
func (w Window) Range() Range {
	return Range{
		Days:    w.Days,
		TimeMin: w.Min.UTC().Format(time.RFC3339),
		TimeMax: w.Max.UTC().Format(time.RFC3339),
	}
}

// ParseDays reads a days query value. Empty or non-numeric input yields def;
// the result is clamped to [MinDays, max].
func ParseDays(s string, def, max int) int {
	n := def
	if s != "" {
		if parsed, err := strconv.Atoi(s); err == nil {
			n = parsed
		}
	}
	return ClampDays(n, max)
}

// ClampDays bounds days to [MinDays, max].
func ClampDays(days, max int) int {
	if days < MinDays {
		return MinDays
	}
	if days > max {
		return max
	}
	return days
}

// FlatWindow starts at now and spans days.
func FlatWindow(now time.Time, days int) Window {
	return Window{
		Days: days,
		Min:  now,
		Max:  now.AddDate(0, 0, days),
	}
}

// WallWindow starts at local midnight of now in loc and spans days.
func WallWindow(now time.Time, loc *time.Location, days int) Window {
	local := now.In(loc)
	start := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
	return Window{
		Days: days,
		Min:  start,
		Max:  start.AddDate(0, 0, days),
	}
}
