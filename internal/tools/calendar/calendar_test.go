package calendar

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gcal "google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"

	"github.com/soyeahso/reactor/internal/agent"
	"github.com/soyeahso/reactor/internal/logging"
)

var fixedNow = time.Date(2026, 5, 4, 8, 0, 0, 0, time.UTC)

func newTestCalendar(t *testing.T, handler http.HandlerFunc) *agent.ToolRegistry {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	svc, err := gcal.NewService(context.Background(), option.WithHTTPClient(srv.Client()), option.WithEndpoint(srv.URL+"/"))
	require.NoError(t, err)

	c := New(svc, "", time.UTC, logging.New(nil, "silent"))
	c.now = func() time.Time { return fixedNow }

	reg, err := agent.NewToolRegistry(c.Tools()...)
	require.NoError(t, err)
	return reg
}

func TestListEvents(t *testing.T) {
	reg := newTestCalendar(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.True(t, strings.HasSuffix(r.URL.Path, "/calendars/primary/events"), r.URL.Path)
		q := r.URL.Query()
		assert.Equal(t, "2026-05-04T08:00:00Z", q.Get("timeMin"))
		assert.Equal(t, "2026-05-11T08:00:00Z", q.Get("timeMax"))
		assert.Equal(t, "true", q.Get("singleEvents"))
		assert.Equal(t, "startTime", q.Get("orderBy"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"items":[
			{"summary":"Dentist","start":{"dateTime":"2026-05-05T14:00:00Z"},"end":{"dateTime":"2026-05-05T15:00:00Z"}},
			{"summary":"Holiday","start":{"date":"2026-05-08"},"end":{"date":"2026-05-09"}}
		]}`))
	})

	out, err := reg.Invoke(context.Background(), "list_events", []string{"7"})
	require.NoError(t, err)
	assert.Equal(t, "Tue May 5 14:00 - 15:00: Dentist\n2026-05-08 (all day): Holiday", out)
}

func TestListEvents_Empty(t *testing.T) {
	reg := newTestCalendar(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"items":[]}`))
	})

	out, err := reg.Invoke(context.Background(), "list_events", []string{"3"})
	require.NoError(t, err)
	assert.Equal(t, "No events in the next 3 days.", out)
}

func TestListEvents_InvalidDays(t *testing.T) {
	reg := newTestCalendar(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request expected")
	})

	out, err := reg.Invoke(context.Background(), "list_events", []string{"soon"})
	require.NoError(t, err)
	assert.Equal(t, `Invalid number of days "soon". Expected a positive number.`, out)
}

func TestListEvents_APIError(t *testing.T) {
	reg := newTestCalendar(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		w.Write([]byte(`{"error":{"code":403,"message":"insufficient scopes"}}`))
	})

	_, err := reg.Invoke(context.Background(), "list_events", []string{"1"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "listing events")
}

func TestCreateEvent(t *testing.T) {
	var got gcal.Event
	reg := newTestCalendar(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		got.Id = "ev1"
		got.HtmlLink = "https://calendar.google.com/event?eid=ev1"
		json.NewEncoder(w).Encode(got)
	})

	out, err := reg.Invoke(context.Background(), "create_event", []string{"Team sync", "2026-05-06 10:00", "", "weekly"})
	require.NoError(t, err)
	assert.Equal(t, "2026-05-06T10:00:00Z", got.Start.DateTime)
	assert.Equal(t, "2026-05-06T11:00:00Z", got.End.DateTime)
	assert.Equal(t, "weekly", got.Description)
	assert.Equal(t, "Event created: Team sync (Wed May 6 10:00 - 11:00)\nhttps://calendar.google.com/event?eid=ev1", out)
}

func TestCreateEvent_AllDay(t *testing.T) {
	var got gcal.Event
	reg := newTestCalendar(t, func(w http.ResponseWriter, r *http.Request) {
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		json.NewEncoder(w).Encode(got)
	})

	out, err := reg.Invoke(context.Background(), "create_event", []string{"Conference", "2026-06-01", "2026-06-03"})
	require.NoError(t, err)
	assert.Equal(t, "2026-06-01", got.Start.Date)
	assert.Equal(t, "2026-06-04", got.End.Date)
	assert.Equal(t, "Event created: Conference (2026-06-01 (all day))", out)
}

func TestCreateEvent_InvalidInput(t *testing.T) {
	reg := newTestCalendar(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request expected")
	})

	tests := []struct {
		name string
		args []string
		want string
	}{
		{"no start", []string{"Lunch"}, "Please provide a start time for the event."},
		{"bad start", []string{"Lunch", "tomorrow noon"}, `Invalid start time "tomorrow noon". Expected YYYY-MM-DD HH:MM.`},
		{"bad end", []string{"Lunch", "2026-05-06 12:00", "later"}, `Invalid end time "later". Expected YYYY-MM-DD HH:MM.`},
		{"end before start", []string{"Lunch", "2026-05-06 12:00", "2026-05-06 11:00"}, "The event must end after it starts."},
		{"empty summary", []string{" ", "2026-05-06 12:00"}, "Please provide a summary for the event."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := reg.Invoke(context.Background(), "create_event", tt.args)
			require.NoError(t, err)
			assert.Equal(t, tt.want, out)
		})
	}
}
