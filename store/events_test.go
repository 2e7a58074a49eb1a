package store

import (
	"context"
	"testing"
	"time"

	"ops-dashboard/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func event(id string, start time.Time) models.CalendarEvent {
	return models.CalendarEvent{ID: id, Title: id, StartAt: start, EndAt: start.Add(time.Hour), Status: models.EventPending}
}

func newEvents(t *testing.T, rows ...models.CalendarEvent) (*EventStore, *fakeRemote[models.CalendarEvent, models.NewCalendarEvent, models.CalendarEventPatch]) {
	t.Helper()
	remote := newFakeRemote[models.CalendarEvent, models.NewCalendarEvent, models.CalendarEventPatch](
		func(e models.CalendarEvent) string { return e.ID },
		func(id string, n models.NewCalendarEvent) models.CalendarEvent {
			return models.CalendarEvent{ID: id, Title: n.Title, StartAt: n.StartAt, EndAt: n.EndAt}
		},
		rows...)
	s := NewEventStore(remote, WithLogger(quietLogger()))
	require.NoError(t, s.Fetch(context.Background()))
	return s, remote
}

func TestEventStoreOrder(t *testing.T) {
	s, _ := newEvents(t, event("late", base.Add(2*time.Hour)), event("early", base))
	assert.Equal(t, []string{"early", "late"}, ids(s.Items(), func(e models.CalendarEvent) string { return e.ID }))
}

func TestDueAlerts(t *testing.T) {
	fired := event("fired", base.Add(5*time.Minute))
	fired.AlertFired = true
	done := event("done", base.Add(5*time.Minute))
	done.Status = models.EventCompleted

	s, _ := newEvents(t,
		event("past", base.Add(-time.Minute)),
		event("now", base),
		event("soon", base.Add(10*time.Minute)),
		event("later", base.Add(11*time.Minute)),
		fired, done,
	)

	due := s.DueAlerts(base, 10*time.Minute)
	assert.Equal(t, []string{"now", "soon"}, ids(due, func(e models.CalendarEvent) string { return e.ID }))

	require.NoError(t, s.MarkAlertFired(context.Background(), "soon"))
	due = s.DueAlerts(base, 10*time.Minute)
	assert.Equal(t, []string{"now"}, ids(due, func(e models.CalendarEvent) string { return e.ID }))
}

func TestFetchRangeAndDay(t *testing.T) {
	s, remote := newEvents(t,
		event("morning", base),
		event("tomorrow", base.Add(24*time.Hour)),
	)

	require.NoError(t, s.FetchRange(context.Background(), base, base.Add(48*time.Hour)))
	assert.Equal(t, models.Query{From: base, To: base.Add(48 * time.Hour)}, remote.queries[len(remote.queries)-1])

	today := s.On(base)
	require.Len(t, today, 1)
	assert.Equal(t, "morning", today[0].ID)
}
