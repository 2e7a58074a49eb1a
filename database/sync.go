package database

import (
	"database/sql"
	"time"

	"ops-dashboard/models"

	"github.com/google/uuid"
)

// ==================== SYNC OPERATIONS ====================

// EventWithMeta is an event plus the bookkeeping the sync worker needs.
type EventWithMeta struct {
	models.CalendarEvent
	GCalEventID string
	Deleted     bool
}

// GetPendingSyncEvents retrieves events that need to be exported, oldest edit
// first.
func (r *Repository) GetPendingSyncEvents(limit int) ([]EventWithMeta, error) {
	rows, err := r.db.Query(`
		SELECT `+eventColumns+`, gcal_event_id, deleted
		FROM events
		WHERE sync_pending = 1
		ORDER BY updated_at ASC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []EventWithMeta
	for rows.Next() {
		var ev EventWithMeta
		var gcalID sql.NullString
		var scanned *models.CalendarEvent
		scanned, err = scanEvent(scanRowFunc(func(dest ...any) error {
			return rows.Scan(append(dest, &gcalID, &ev.Deleted)...)
		}))
		if err != nil {
			return nil, err
		}
		ev.CalendarEvent = *scanned
		ev.GCalEventID = gcalID.String
		events = append(events, ev)
	}

	return events, rows.Err()
}

// scanRowFunc adapts a closure to rowScanner so extra columns can be appended
// to a shared scan helper.
type scanRowFunc func(dest ...any) error

func (f scanRowFunc) Scan(dest ...any) error { return f(dest...) }

// GetEventMeta loads an event with sync metadata, including soft-deleted ones.
func (r *Repository) GetEventMeta(userID, id string) (*EventWithMeta, error) {
	var ev EventWithMeta
	var gcalID sql.NullString
	scanned, err := scanEvent(scanRowFunc(func(dest ...any) error {
		return r.db.QueryRow(`
			SELECT `+eventColumns+`, gcal_event_id, deleted
			FROM events WHERE id = ? AND user_id = ?
		`, id, userID).Scan(append(dest, &gcalID, &ev.Deleted)...)
	}))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	ev.CalendarEvent = *scanned
	ev.GCalEventID = gcalID.String
	return &ev, nil
}

// MarkEventSynced marks an event as successfully exported.
func (r *Repository) MarkEventSynced(eventID, gcalEventID string) error {
	now := r.now()
	_, err := r.db.Exec(`
		UPDATE events SET
			gcal_event_id = ?,
			sync_pending = 0,
			sync_status = ?,
			sync_retry_count = 0,
			sync_error = NULL,
			sync_last_attempt_at = ?,
			synced_at = ?
		WHERE id = ?
	`, gcalEventID, string(models.SyncStatusSynced), now, now, eventID)
	return err
}

// MarkEventSyncing marks an event as currently being exported.
func (r *Repository) MarkEventSyncing(eventID string) error {
	_, err := r.db.Exec(`
		UPDATE events SET
			sync_status = ?,
			sync_last_attempt_at = ?
		WHERE id = ?
	`, string(models.SyncStatusSyncing), r.now(), eventID)
	return err
}

// MarkEventSyncFailed increments the retry count and abandons the event once
// models.MaxSyncRetries is reached.
func (r *Repository) MarkEventSyncFailed(eventID string, errorMsg string) error {
	_, err := r.db.Exec(`
		UPDATE events SET
			sync_status = CASE
				WHEN sync_retry_count + 1 >= ? THEN ?
				ELSE ?
			END,
			sync_retry_count = sync_retry_count + 1,
			sync_error = ?,
			sync_last_attempt_at = ?,
			sync_pending = CASE
				WHEN sync_retry_count + 1 >= ? THEN 0
				ELSE 1
			END
		WHERE id = ?
	`, models.MaxSyncRetries, string(models.SyncStatusAbandoned),
		string(models.SyncStatusFailed), errorMsg, r.now(),
		models.MaxSyncRetries, eventID)
	return err
}

// MarkEventAsNotPending stops retrying an event that can never be exported.
func (r *Repository) MarkEventAsNotPending(eventID string) error {
	_, err := r.db.Exec(`
		UPDATE events SET
			sync_pending = 0,
			sync_status = ?
		WHERE id = ?
	`, string(models.SyncStatusAbandoned), eventID)
	return err
}

// GetFailedSyncEvents returns the user's failed or abandoned exports.
func (r *Repository) GetFailedSyncEvents(userID string, limit int) ([]models.CalendarEvent, error) {
	rows, err := r.db.Query(`
		SELECT `+eventColumns+`
		FROM events
		WHERE user_id = ? AND sync_status IN (?, ?)
		ORDER BY sync_last_attempt_at DESC
		LIMIT ?
	`, userID, string(models.SyncStatusFailed), string(models.SyncStatusAbandoned), limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	events := make([]models.CalendarEvent, 0)
	for rows.Next() {
		ev, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, *ev)
	}
	return events, rows.Err()
}

// CountPendingSyncEvents returns how many of the user's events await export.
func (r *Repository) CountPendingSyncEvents(userID string) (int, error) {
	var n int
	err := r.db.QueryRow(
		`SELECT COUNT(*) FROM events WHERE user_id = ? AND sync_pending = 1`, userID,
	).Scan(&n)
	return n, err
}

// RetrySyncEvent gives a failed export a fresh start.
func (r *Repository) RetrySyncEvent(userID, eventID string) error {
	res, err := r.db.Exec(`
		UPDATE events SET
			sync_pending = 1,
			sync_status = ?,
			sync_retry_count = 0,
			sync_error = NULL
		WHERE id = ? AND user_id = ?
	`, string(models.SyncStatusPending), eventID, userID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// MarkUserEventsPending queues every live event of a user for export, used
// right after a calendar is connected.
func (r *Repository) MarkUserEventsPending(userID string) (int64, error) {
	res, err := r.db.Exec(`
		UPDATE events SET
			sync_pending = 1,
			sync_status = ?,
			sync_retry_count = 0,
			sync_error = NULL
		WHERE user_id = ? AND deleted = 0
	`, string(models.SyncStatusPending), userID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// HardDeleteEvent removes an event row once its remote copy is gone.
func (r *Repository) HardDeleteEvent(eventID string) error {
	_, err := r.db.Exec(`DELETE FROM events WHERE id = ?`, eventID)
	return err
}

// ImportEvent stores an event pulled from Google Calendar as already synced.
// Events whose Google id is already linked are skipped and report false.
func (r *Repository) ImportEvent(userID string, ev models.CalendarEvent, gcalEventID string) (bool, error) {
	var n int
	if err := r.db.QueryRow(
		`SELECT COUNT(*) FROM events WHERE user_id = ? AND gcal_event_id = ?`, userID, gcalEventID,
	).Scan(&n); err != nil {
		return false, err
	}
	if n > 0 {
		return false, nil
	}

	now := r.now()
	if ev.ID == "" {
		ev.ID = uuid.New().String()
	}
	_, err := r.db.Exec(`
		INSERT INTO events (id, user_id, title, description, start_at, end_at, type, priority,
			status, alert_fired, notes, gcal_event_id, sync_pending, sync_status, synced_at,
			created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, 0, ?, ?, 0, ?, ?, ?, ?)
	`,
		ev.ID, userID, ev.Title, ev.Description, ev.StartAt.UTC(), ev.EndAt.UTC(),
		string(ev.Type), string(ev.Priority), string(ev.Status), ev.Notes, gcalEventID,
		string(models.SyncStatusSynced), now, now, now,
	)
	if err != nil {
		return false, err
	}
	r.publish(models.TableEvents, models.ChangeInsert, userID, ev.ID)
	return true, nil
}

// SetClock overrides the repository clock. Tests use it to age rows.
func (r *Repository) SetClock(now func() time.Time) {
	r.now = now
}
