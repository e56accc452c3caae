// Package calendar implements the list_events and create_event tools on
// Google Calendar.
package calendar

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	gcal "google.golang.org/api/calendar/v3"

	"github.com/soyeahso/reactor/internal/agent"
	"github.com/soyeahso/reactor/internal/logging"
)

const (
	maxDays       = 31
	maxEvents     = 50
	defaultLength = time.Hour
)

// inputLayouts are the time formats create_event accepts, most specific first.
var inputLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04",
}

// Calendar exposes one Google calendar to the agent.
type Calendar struct {
	svc        *gcal.Service
	calendarID string
	loc        *time.Location
	now        func() time.Time
	log        *logging.Logger
}

// New creates the calendar tools for calendarID ("primary" when empty).
// Times without a zone are interpreted in loc (local time when nil).
func New(svc *gcal.Service, calendarID string, loc *time.Location, log *logging.Logger) *Calendar {
	if calendarID == "" {
		calendarID = "primary"
	}
	if loc == nil {
		loc = time.Local
	}
	return &Calendar{svc: svc, calendarID: calendarID, loc: loc, now: time.Now, log: log.Sub("calendar")}
}

// Tools returns list_events and create_event.
func (c *Calendar) Tools() []agent.Tool {
	return []agent.Tool{
		agent.ToolFunc{
			Desc: agent.ToolDescriptor{
				Name:          "list_events",
				ArgumentNames: []string{"days"},
				Description:   fmt.Sprintf("Lists calendar events from now until the given number of days ahead (1 to %d).", maxDays),
			},
			Fn: c.listEvents,
		},
		agent.ToolFunc{
			Desc: agent.ToolDescriptor{
				Name:          "create_event",
				ArgumentNames: []string{"summary", "start", "end", "description"},
				Description: "Creates a calendar event. start and end are 'YYYY-MM-DD HH:MM' or a date 'YYYY-MM-DD' for an all-day event. " +
					"end defaults to one hour after start.",
			},
			Fn: c.createEvent,
		},
	}
}

func (c *Calendar) listEvents(ctx context.Context, args []string) (string, error) {
	raw := ""
	if len(args) > 0 {
		raw = strings.TrimSpace(args[0])
	}
	days, err := strconv.Atoi(raw)
	if err != nil || days < 1 {
		return fmt.Sprintf("Invalid number of days %q. Expected a positive number.", raw), nil
	}
	days = min(days, maxDays)

	now := c.now().In(c.loc)
	events, err := c.svc.Events.List(c.calendarID).
		TimeMin(now.Format(time.RFC3339)).
		TimeMax(now.AddDate(0, 0, days).Format(time.RFC3339)).
		SingleEvents(true).
		OrderBy("startTime").
		MaxResults(maxEvents).
		Context(ctx).
		Do()
	if err != nil {
		return "", fmt.Errorf("listing events: %w", err)
	}
	if len(events.Items) == 0 {
		return fmt.Sprintf("No events in the next %d days.", days), nil
	}

	c.log.Debug().Int("days", days).Int("count", len(events.Items)).Msg("events listed")
	lines := make([]string, 0, len(events.Items))
	for _, ev := range events.Items {
		lines = append(lines, fmt.Sprintf("%s: %s", c.formatWhen(ev.Start, ev.End), ev.Summary))
	}
	return strings.Join(lines, "\n"), nil
}

func (c *Calendar) createEvent(ctx context.Context, args []string) (string, error) {
	get := func(i int) string {
		if i < len(args) {
			return strings.TrimSpace(args[i])
		}
		return ""
	}
	summary, startRaw, endRaw, description := get(0), get(1), get(2), get(3)
	if summary == "" {
		return "Please provide a summary for the event.", nil
	}
	if startRaw == "" {
		return "Please provide a start time for the event.", nil
	}

	ev := &gcal.Event{Summary: summary, Description: description}
	if day, err := time.ParseInLocation(time.DateOnly, startRaw, c.loc); err == nil {
		end := day.AddDate(0, 0, 1)
		if endRaw != "" {
			e, err := time.ParseInLocation(time.DateOnly, endRaw, c.loc)
			if err != nil {
				return fmt.Sprintf("Invalid end date %q. Expected YYYY-MM-DD for an all-day event.", endRaw), nil
			}
			end = e.AddDate(0, 0, 1)
		}
		if !end.After(day) {
			return "The event must end after it starts.", nil
		}
		ev.Start = &gcal.EventDateTime{Date: day.Format(time.DateOnly)}
		ev.End = &gcal.EventDateTime{Date: end.Format(time.DateOnly)}
	} else {
		start, ok := c.parseTime(startRaw)
		if !ok {
			return fmt.Sprintf("Invalid start time %q. Expected YYYY-MM-DD HH:MM.", startRaw), nil
		}
		end := start.Add(defaultLength)
		if endRaw != "" {
			if end, ok = c.parseTime(endRaw); !ok {
				return fmt.Sprintf("Invalid end time %q. Expected YYYY-MM-DD HH:MM.", endRaw), nil
			}
		}
		if !end.After(start) {
			return "The event must end after it starts.", nil
		}
		ev.Start = &gcal.EventDateTime{DateTime: start.Format(time.RFC3339)}
		ev.End = &gcal.EventDateTime{DateTime: end.Format(time.RFC3339)}
	}

	created, err := c.svc.Events.Insert(c.calendarID, ev).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("creating event: %w", err)
	}

	c.log.Info().Str("id", created.Id).Str("summary", created.Summary).Msg("event created")
	out := fmt.Sprintf("Event created: %s (%s)", created.Summary, c.formatWhen(created.Start, created.End))
	if created.HtmlLink != "" {
		out += "\n" + created.HtmlLink
	}
	return out, nil
}

func (c *Calendar) parseTime(s string) (time.Time, bool) {
	for _, layout := range inputLayouts {
		if t, err := time.ParseInLocation(layout, s, c.loc); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func (c *Calendar) formatWhen(start, end *gcal.EventDateTime) string {
	if start == nil {
		return "unscheduled"
	}
	if start.Date != "" {
		return start.Date + " (all day)"
	}
	s, err := time.Parse(time.RFC3339, start.DateTime)
	if err != nil {
		return start.DateTime
	}
	s = s.In(c.loc)
	out := s.Format("Mon Jan 2 15:04")
	if end != nil {
		if e, err := time.Parse(time.RFC3339, end.DateTime); err == nil {
			e = e.In(c.loc)
			if e.YearDay() == s.YearDay() && e.Year() == s.Year() {
				out += " - " + e.Format("15:04")
			} else {
				out += " - " + e.Format("Mon Jan 2 15:04")
			}
		}
	}
	return out
}
