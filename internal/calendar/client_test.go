package calendar

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	calendar "google.golang.org/api/calendar/v3"
	"google.golang.org/api/googleapi"

	"github.com/teemow/calboard/internal/agenda"
	"github.com/teemow/calboard/internal/calendar/calendartest"
)

var (
	windowMin = time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	windowMax = windowMin.AddDate(0, 0, 7)
)

func newTestClient(t *testing.T) (*Client, *calendartest.Server) {
	t.Helper()
	server := calendartest.NewServer()
	t.Cleanup(server.Close)

	client, err := NewClient(context.Background(), &http.Client{}, server.Endpoint())
	require.NoError(t, err)
	return client, server
}

func TestClient_ListEvents(t *testing.T) {
	client, server := newTestClient(t)

	server.AddTimedEvent("team", "late", "Retro", windowMin.Add(50*time.Hour), windowMin.Add(51*time.Hour))
	server.AddAllDayEvent("team", "holiday", "Holiday", "2024-03-02")
	server.AddEvent("team", &calendar.Event{
		Id:          "early",
		Summary:     "Standup",
		Location:    "Room 1",
		Description: "daily",
		Start:       &calendar.EventDateTime{DateTime: "2024-03-01T09:00:00Z"},
		End:         &calendar.EventDateTime{DateTime: "2024-03-01T09:15:00Z"},
	})
	server.AddTimedEvent("team", "outside", "Next month", windowMax.Add(time.Hour), windowMax.Add(2*time.Hour))
	server.AddEvent("team", &calendar.Event{
		Id:     "gone",
		Status: "cancelled",
		Start:  &calendar.EventDateTime{DateTime: "2024-03-01T10:00:00Z"},
	})

	raws, err := client.ListEvents(context.Background(), "team", windowMin, windowMax)
	require.NoError(t, err)

	ids := make([]string, 0, len(raws))
	for _, raw := range raws {
		ids = append(ids, raw.ID)
	}
	assert.Equal(t, []string{"early", "holiday", "late"}, ids)

	assert.Equal(t, agenda.RawEvent{
		ID:          "early",
		Summary:     "Standup",
		Location:    "Room 1",
		Description: "daily",
		Start:       &agenda.EventTime{DateTime: "2024-03-01T09:00:00Z"},
		End:         &agenda.EventTime{DateTime: "2024-03-01T09:15:00Z"},
	}, raws[0])
	assert.Equal(t, &agenda.EventTime{Date: "2024-03-02"}, raws[1].Start)
}

func TestClient_ListEvents_Query(t *testing.T) {
	client, server := newTestClient(t)

	_, err := client.ListEvents(context.Background(), "abc@group.calendar.google.com", windowMin, windowMax)
	require.NoError(t, err)

	query := server.LastQuery("abc@group.calendar.google.com")
	require.NotNil(t, query)
	assert.Equal(t, "true", query.Get("singleEvents"))
	assert.Equal(t, "startTime", query.Get("orderBy"))
	assert.Equal(t, "2500", query.Get("maxResults"))
	assert.Equal(t, "2024-03-01T00:00:00Z", query.Get("timeMin"))
	assert.Equal(t, "2024-03-08T00:00:00Z", query.Get("timeMax"))
}

func TestClient_ListEvents_Errors(t *testing.T) {
	tests := []struct {
		name   string
		code   int
		reason string
		want   error
	}{
		{"unauthorized", http.StatusUnauthorized, "authError", agenda.ErrAuth},
		{"forbidden", http.StatusForbidden, "forbidden", agenda.ErrAuth},
		{"rate limited", http.StatusTooManyRequests, "rateLimitExceeded", agenda.ErrRateLimit},
		{"forbidden rate limit", http.StatusForbidden, "userRateLimitExceeded", agenda.ErrRateLimit},
		{"not found", http.StatusNotFound, "notFound", agenda.ErrNotFound},
		{"gone", http.StatusGone, "deleted", agenda.ErrNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, server := newTestClient(t)
			server.FailCalendar("broken", tt.code, tt.reason)

			_, err := client.ListEvents(context.Background(), "broken", windowMin, windowMax)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.want)

			var apiErr *googleapi.Error
			assert.True(t, errors.As(err, &apiErr), "underlying API error should stay reachable")
		})
	}
}

func TestClient_ListEvents_ServerErrorUnclassified(t *testing.T) {
	client, server := newTestClient(t)
	server.FailCalendar("flaky", http.StatusInternalServerError, "backendError")

	_, err := client.ListEvents(context.Background(), "flaky", windowMin, windowMax)
	require.Error(t, err)
	assert.Equal(t, agenda.ReasonOther, agenda.ErrorReason(err))
}

func TestClient_ListEvents_ContextDeadline(t *testing.T) {
	client, server := newTestClient(t)
	server.DelayCalendar("slow", time.Second)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := client.ListEvents(ctx, "slow", windowMin, windowMax)
	require.Error(t, err)
	assert.Equal(t, agenda.ReasonTimeout, agenda.ErrorReason(err))
}

func TestClassify_PassesThroughTransportErrors(t *testing.T) {
	err := errors.New("dial tcp: connection refused")
	assert.Same(t, err, classify(err))
}

func TestToEventTime_Nil(t *testing.T) {
	assert.Nil(t, toEventTime(nil))
	raw := toRawEvent(&calendar.Event{Id: "x"})
	assert.Nil(t, raw.Start)
	assert.Nil(t, raw.End)
}
