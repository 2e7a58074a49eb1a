package sync

import (
	"context"
	"errors"
	"time"
)

// ==================== CALENDAR IMPORT ====================

// importWindow bounds how many upcoming Google events are pulled in.
const importWindow = 250

var errNotConnected = errors.New("google calendar not connected")

// ImportFromCalendar copies upcoming Google Calendar events into the events
// table as already synced. Events linked earlier are skipped.
func (w *Worker) ImportFromCalendar(ctx context.Context, userID string) (int, error) {
	w.logger.Info("starting calendar import", "user_id", userID)

	user, err := w.repo.GetUser(userID)
	if err != nil {
		return 0, err
	}
	if !user.CalendarConnected() {
		return 0, errNotConnected
	}

	token := userToken(user)
	provider, err := w.calendarFactory(ctx, token, user.CalendarID)
	if err != nil {
		return 0, err
	}

	remote, err := provider.ListUpcoming(ctx, w.now().Add(-24*time.Hour), importWindow)
	if err != nil {
		return 0, err
	}

	imported := 0
	for _, r := range remote {
		created, err := w.repo.ImportEvent(userID, r.Event, r.GoogleID)
		if err != nil {
			w.logger.Error("failed to import event", "gcal_event_id", r.GoogleID, "error", err)
			continue
		}
		if created {
			imported++
		}
	}

	w.persistRefreshedToken(provider, token, userID)

	w.logger.Info("calendar import finished", "user_id", userID, "imported", imported, "seen", len(remote))
	return imported, nil
}
