package store

import (
	"context"
	"time"

	"ops-dashboard/models"
)

type EventRemote = Remote[models.CalendarEvent, models.NewCalendarEvent, models.CalendarEventPatch]

// EventStore orders calendar events by start time.
type EventStore struct {
	*Collection[models.CalendarEvent, models.NewCalendarEvent, models.CalendarEventPatch]
}

func NewEventStore(remote EventRemote, opts ...Option) *EventStore {
	return &EventStore{
		Collection: NewCollection(models.TableEvents, remote,
			func(e models.CalendarEvent) string { return e.ID },
			func(a, b models.CalendarEvent) bool { return a.StartAt.Before(b.StartAt) },
			opts...),
	}
}

// FetchRange fetches events starting in [from, to). Zero bounds are open.
func (s *EventStore) FetchRange(ctx context.Context, from, to time.Time) error {
	s.SetQuery(models.Query{From: from, To: to})
	return s.Fetch(ctx)
}

// MarkAlertFired records that the reminder for an event went off.
func (s *EventStore) MarkAlertFired(ctx context.Context, id string) error {
	return s.Update(ctx, id, models.CalendarEventPatch{AlertFired: models.Ptr(true)})
}

// DueAlerts returns events that start within lead of now and whose alert has
// not fired. Completed events never alert.
func (s *EventStore) DueAlerts(now time.Time, lead time.Duration) []models.CalendarEvent {
	var out []models.CalendarEvent
	for _, e := range s.Items() {
		if e.AlertFired || e.Status == models.EventCompleted {
			continue
		}
		if !e.StartAt.Before(now) && !e.StartAt.After(now.Add(lead)) {
			out = append(out, e)
		}
	}
	return out
}

// On returns the events that overlap the day containing t, in t's location.
func (s *EventStore) On(t time.Time) []models.CalendarEvent {
	start := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	end := start.AddDate(0, 0, 1)

	var out []models.CalendarEvent
	for _, e := range s.Items() {
		if e.StartAt.Before(end) && !e.EndAt.Before(start) {
			out = append(out, e)
		}
	}
	return out
}
