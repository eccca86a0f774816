// Package calendartest provides a fake Google Calendar API server for tests.
// It implements the read side of the Calendar API v3 Events endpoint.
package calendartest

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	calendar "google.golang.org/api/calendar/v3"
)

// Server is a fake Google Calendar API server.
type Server struct {
	*httptest.Server

	mu       sync.RWMutex
	events   map[string][]*calendar.Event // calendarID -> events
	failures map[string]apiFailure        // calendarID -> canned error
	delays   map[string]time.Duration
	queries  map[string]url.Values // last list query per calendar
	nextID   int
}

type apiFailure struct {
	code   int
	reason string
}

// NewServer starts a fake Calendar API server. Close it when done.
func NewServer() *Server {
	s := &Server{}
	s.reset()

	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleRequest)
	s.Server = httptest.NewServer(mux)
	return s
}

// Endpoint is the base URL to pass to calendar.NewClient.
func (s *Server) Endpoint() string {
	return s.URL + "/"
}

// AddEvent adds an event to calendarID. An empty event Id is generated.
func (s *Server) AddEvent(calendarID string, event *calendar.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if event.Id == "" {
		event.Id = fmt.Sprintf("event%d", s.nextID)
		s.nextID++
	}
	s.events[calendarID] = append(s.events[calendarID], event)
}

// AddTimedEvent is a shorthand for an event with RFC 3339 start and end.
func (s *Server) AddTimedEvent(calendarID, id, summary string, start, end time.Time) {
	s.AddEvent(calendarID, &calendar.Event{
		Id:      id,
		Summary: summary,
		Start:   &calendar.EventDateTime{DateTime: start.Format(time.RFC3339)},
		End:     &calendar.EventDateTime{DateTime: end.Format(time.RFC3339)},
	})
}

// AddAllDayEvent is a shorthand for a date-only event spanning one day.
func (s *Server) AddAllDayEvent(calendarID, id, summary, date string) {
	end := date
	if d, err := time.Parse("2006-01-02", date); err == nil {
		end = d.AddDate(0, 0, 1).Format("2006-01-02")
	}
	s.AddEvent(calendarID, &calendar.Event{
		Id:      id,
		Summary: summary,
		Start:   &calendar.EventDateTime{Date: date},
		End:     &calendar.EventDateTime{Date: end},
	})
}

// FailCalendar makes every list call on calendarID answer with an API error.
// reason is placed in the error item, e.g. "rateLimitExceeded".
func (s *Server) FailCalendar(calendarID string, code int, reason string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[calendarID] = apiFailure{code: code, reason: reason}
}

// DelayCalendar holds list responses for calendarID for d.
func (s *Server) DelayCalendar(calendarID string, d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.delays[calendarID] = d
}

// LastQuery returns the query parameters of the last list call on calendarID.
func (s *Server) LastQuery(calendarID string) url.Values {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.queries[calendarID]
}

// Reset clears events, failures and recorded queries.
func (s *Server) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reset()
}

func (s *Server) reset() {
	s.events = make(map[string][]*calendar.Event)
	s.failures = make(map[string]apiFailure)
	s.delays = make(map[string]time.Duration)
	s.queries = make(map[string]url.Values)
	s.nextID = 1
}

// handleRequest serves GET .../calendars/{calendarId}/events.
func (s *Server) handleRequest(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Path
	idx := strings.Index(path, "/calendars/")
	if idx == -1 || !strings.HasSuffix(path, "/events") {
		http.Error(w, "unsupported endpoint", http.StatusNotFound)
		return
	}
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	calendarID := strings.TrimSuffix(path[idx+len("/calendars/"):], "/events")
	s.listEvents(w, r, calendarID)
}

func (s *Server) listEvents(w http.ResponseWriter, r *http.Request, calendarID string) {
	query := r.URL.Query()

	s.mu.Lock()
	s.queries[calendarID] = query
	failure, failing := s.failures[calendarID]
	delay := s.delays[calendarID]
	stored := append([]*calendar.Event(nil), s.events[calendarID]...)
	s.mu.Unlock()

	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-r.Context().Done():
			return
		}
	}

	if failing {
		writeAPIError(w, failure)
		return
	}

	timeMin, _ := time.Parse(time.RFC3339, query.Get("timeMin"))
	timeMax, _ := time.Parse(time.RFC3339, query.Get("timeMax"))

	var events []*calendar.Event
	for _, evt := range stored {
		if overlaps(evt, timeMin, timeMax) {
			events = append(events, evt)
		}
	}

	if query.Get("orderBy") == "startTime" {
		sort.SliceStable(events, func(i, j int) bool {
			return startValue(events[i]) < startValue(events[j])
		})
	}

	if n, err := strconv.Atoi(query.Get("maxResults")); err == nil && n >= 0 && n < len(events) {
		events = events[:n]
	}

	resp := &calendar.Events{
		Kind:    "calendar#events",
		Summary: calendarID,
		Items:   events,
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(resp)
}

func writeAPIError(w http.ResponseWriter, f apiFailure) {
	message := http.StatusText(f.code)
	body := map[string]any{
		"error": map[string]any{
			"code":    f.code,
			"message": message,
			"errors": []map[string]string{
				{"reason": f.reason, "message": message, "domain": "global"},
			},
		},
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(f.code)
	_ = json.NewEncoder(w).Encode(body)
}

func startValue(evt *calendar.Event) string {
	if evt.Start == nil {
		return ""
	}
	if evt.Start.DateTime != "" {
		return evt.Start.DateTime
	}
	return evt.Start.Date
}

// overlaps applies the API window filter: end after timeMin, start before
// timeMax. Zero bounds are open.
func overlaps(evt *calendar.Event, timeMin, timeMax time.Time) bool {
	start, ok := parseEventTime(evt.Start)
	if !ok {
		return true
	}
	end, ok := parseEventTime(evt.End)
	if !ok {
		end = start
	}

	if !timeMax.IsZero() && !start.Before(timeMax) {
		return false
	}
	if timeMin.IsZero() {
		return true
	}
	if end.Equal(start) {
		return !start.Before(timeMin)
	}
	return end.After(timeMin)
}

func parseEventTime(dt *calendar.EventDateTime) (time.Time, bool) {
	if dt == nil {
		return time.Time{}, false
	}
	if dt.DateTime != "" {
		t, err := time.Parse(time.RFC3339, dt.DateTime)
		return t, err == nil
	}
	if dt.Date != "" {
		t, err := time.Parse("2006-01-02", dt.Date)
		return t, err == nil
	}
	return time.Time{}, false
}
