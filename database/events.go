package database

import (
	"database/sql"

	"ops-dashboard/models"

	"github.com/google/uuid"
)

// ==================== CALENDAR EVENT OPERATIONS ====================

const eventColumns = `id, user_id, title, description, start_at, end_at, type, priority, status,
	alert_fired, notes, sync_status, sync_retry_count, sync_last_attempt_at, sync_error,
	created_at, updated_at`

func scanEvent(row rowScanner) (*models.CalendarEvent, error) {
	var ev models.CalendarEvent
	var typ, priority, status, syncStatus string
	var syncLastAttemptAt sql.NullTime
	var syncError sql.NullString
	err := row.Scan(
		&ev.ID, &ev.UserID, &ev.Title, &ev.Description, &ev.StartAt, &ev.EndAt,
		&typ, &priority, &status, &ev.AlertFired, &ev.Notes,
		&syncStatus, &ev.SyncRetryCount, &syncLastAttemptAt, &syncError,
		&ev.CreatedAt, &ev.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	ev.Type = models.EventType(typ)
	ev.Priority = models.EventPriority(priority)
	ev.Status = models.EventStatus(status)
	ev.SyncStatus = models.SyncStatus(syncStatus)
	if syncLastAttemptAt.Valid {
		ev.SyncLastAttemptAt = &syncLastAttemptAt.Time
	}
	if syncError.Valid {
		ev.SyncError = syncError.String
	}
	return &ev, nil
}

// ListEvents returns the user's events ordered by start time. Events waiting
// for a remote delete are hidden.
func (r *Repository) ListEvents(userID string, q models.Query) ([]models.CalendarEvent, error) {
	query := `SELECT ` + eventColumns + ` FROM events WHERE user_id = ? AND deleted = 0`
	args := []any{userID}
	if !q.From.IsZero() {
		query += ` AND start_at >= ?`
		args = append(args, q.From.UTC())
	}
	if !q.To.IsZero() {
		query += ` AND start_at < ?`
		args = append(args, q.To.UTC())
	}
	query += ` ORDER BY start_at ASC`

	rows, err := r.db.Query(query, args...)
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

func (r *Repository) GetEvent(userID, id string) (*models.CalendarEvent, error) {
	ev, err := scanEvent(r.db.QueryRow(
		`SELECT `+eventColumns+` FROM events WHERE id = ? AND user_id = ? AND deleted = 0`, id, userID,
	))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return ev, err
}

// CreateEvent inserts an event and queues it for export when the user has a
// connected calendar.
func (r *Repository) CreateEvent(userID string, in models.NewCalendarEvent) (*models.CalendarEvent, error) {
	connected, err := r.calendarConnected(userID)
	if err != nil {
		return nil, err
	}

	now := r.now()
	ev := &models.CalendarEvent{
		ID:          uuid.New().String(),
		UserID:      userID,
		Title:       in.Title,
		Description: in.Description,
		StartAt:     in.StartAt.UTC(),
		EndAt:       in.EndAt.UTC(),
		Type:        in.Type,
		Priority:    in.Priority,
		Status:      in.Status,
		Notes:       in.Notes,
		SyncStatus:  models.SyncStatusDisabled,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if ev.Type == "" {
		ev.Type = models.EventCore
	}
	if ev.Priority == "" {
		ev.Priority = models.EventMedium
	}
	if ev.Status == "" {
		ev.Status = models.EventPending
	}
	if connected {
		ev.SyncStatus = models.SyncStatusPending
	}

	_, err = r.db.Exec(`
		INSERT INTO events (id, user_id, title, description, start_at, end_at, type, priority,
			status, alert_fired, notes, sync_pending, sync_status, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, 0, ?, ?, ?, ?, ?)
	`,
		ev.ID, userID, ev.Title, ev.Description, ev.StartAt, ev.EndAt, string(ev.Type),
		string(ev.Priority), string(ev.Status), ev.Notes, connected, string(ev.SyncStatus),
		ev.CreatedAt, ev.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	r.publish(models.TableEvents, models.ChangeInsert, userID, ev.ID)
	return ev, nil
}

func (r *Repository) UpdateEvent(userID, id string, patch models.CalendarEventPatch) (*models.CalendarEvent, error) {
	before, err := r.GetEvent(userID, id)
	if err != nil {
		return nil, err
	}
	if before == nil {
		return nil, ErrNotFound
	}
	if after := patch.Apply(*before); after.EndAt.Before(after.StartAt) {
		return nil, models.ErrEventRange
	}

	var extra []string
	if patch.Exported() {
		connected, err := r.calendarConnected(userID)
		if err != nil {
			return nil, err
		}
		if connected {
			extra = append(extra,
				"sync_pending = 1",
				"sync_status = '"+string(models.SyncStatusPending)+"'",
				"sync_retry_count = 0",
				"sync_error = NULL",
			)
		}
	}

	if err := r.updateColumns(r.db, "events", userID, id, patch.Columns(), extra...); err != nil {
		return nil, err
	}
	r.publish(models.TableEvents, models.ChangeUpdate, userID, id)
	return r.GetEvent(userID, id)
}

// DeleteEvent removes an event. Exported events are soft-deleted so the sync
// worker can remove the Google copy first; they disappear from selects at once.
func (r *Repository) DeleteEvent(userID, id string) error {
	var gcalID sql.NullString
	var deleted bool
	err := r.db.QueryRow(
		`SELECT gcal_event_id, deleted FROM events WHERE id = ? AND user_id = ?`, id, userID,
	).Scan(&gcalID, &deleted)
	if err == sql.ErrNoRows || (err == nil && deleted) {
		return nil
	}
	if err != nil {
		return err
	}

	connected, err := r.calendarConnected(userID)
	if err != nil {
		return err
	}

	if connected && gcalID.String != "" {
		_, err = r.db.Exec(`
			UPDATE events SET
				deleted = 1,
				sync_pending = 1,
				sync_status = ?,
				sync_retry_count = 0,
				sync_error = NULL,
				updated_at = ?
			WHERE id = ? AND user_id = ?
		`, string(models.SyncStatusPending), r.now(), id, userID)
		if err != nil {
			return err
		}
	} else if _, err := r.deleteRow(r.db, "events", userID, id); err != nil {
		return err
	}

	r.publish(models.TableEvents, models.ChangeDelete, userID, id)
	return nil
}
