package models

import (
	"errors"
	"time"
)

type EventType string

const (
	EventCore   EventType = "CORE"
	EventSystem EventType = "SYSTEM"
	EventRecon  EventType = "RECON"
	EventLogs   EventType = "LOGS"
)

func (t EventType) Valid() bool {
	switch t {
	case EventCore, EventSystem, EventRecon, EventLogs:
		return true
	}
	return false
}

type EventPriority string

const (
	EventHigh   EventPriority = "HIGH"
	EventMedium EventPriority = "MEDIUM"
	EventLow    EventPriority = "LOW"
)

func (p EventPriority) Valid() bool {
	return p == EventHigh || p == EventMedium || p == EventLow
}

type EventStatus string

const (
	EventActive    EventStatus = "ACTIVE"
	EventPending   EventStatus = "PENDING"
	EventCompleted EventStatus = "COMPLETED"
)

func (s EventStatus) Valid() bool {
	return s == EventActive || s == EventPending || s == EventCompleted
}

// SyncStatus tracks the Google Calendar export of an event.
type SyncStatus string

const (
	SyncStatusPending   SyncStatus = "pending"
	SyncStatusSyncing   SyncStatus = "syncing"
	SyncStatusSynced    SyncStatus = "synced"
	SyncStatusFailed    SyncStatus = "failed"
	SyncStatusAbandoned SyncStatus = "abandoned"
	SyncStatusDisabled  SyncStatus = "disabled"
)

// ErrEventRange is returned when an update would end an event before it starts.
var ErrEventRange = errors.New("end_at must not be before start_at")

// MaxSyncRetries is the number of failed exports before an event is abandoned.
const MaxSyncRetries = 5

type CalendarEvent struct {
	ID          string        `json:"id"`
	UserID      string        `json:"-"`
	Title       string        `json:"title"`
	Description string        `json:"description,omitempty"`
	StartAt     time.Time     `json:"start_at"`
	EndAt       time.Time     `json:"end_at"`
	Type        EventType     `json:"type"`
	Priority    EventPriority `json:"priority"`
	Status      EventStatus   `json:"status"`
	AlertFired  bool          `json:"alert_fired"`
	Notes       string        `json:"notes,omitempty"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`

	SyncStatus        SyncStatus `json:"sync_status,omitempty"`
	SyncRetryCount    int        `json:"sync_retry_count,omitempty"`
	SyncLastAttemptAt *time.Time `json:"sync_last_attempt_at,omitempty"`
	SyncError         string     `json:"sync_error,omitempty"`
}

type NewCalendarEvent struct {
	Title       string        `json:"title" validate:"required,min=1,max=200"`
	Description string        `json:"description" validate:"max=5000"`
	StartAt     time.Time     `json:"start_at" validate:"required"`
	EndAt       time.Time     `json:"end_at" validate:"required,gtefield=StartAt"`
	Type        EventType     `json:"type" validate:"omitempty,eventtype"`
	Priority    EventPriority `json:"priority" validate:"omitempty,eventpriority"`
	Status      EventStatus   `json:"status" validate:"omitempty,eventstatus"`
	Notes       string        `json:"notes" validate:"max=5000"`
}

type CalendarEventPatch struct {
	Title       *string        `json:"title,omitempty" validate:"omitempty,min=1,max=200"`
	Description *string        `json:"description,omitempty" validate:"omitempty,max=5000"`
	StartAt     *time.Time     `json:"start_at,omitempty"`
	EndAt       *time.Time     `json:"end_at,omitempty"`
	Type        *EventType     `json:"type,omitempty" validate:"omitempty,eventtype"`
	Priority    *EventPriority `json:"priority,omitempty" validate:"omitempty,eventpriority"`
	Status      *EventStatus   `json:"status,omitempty" validate:"omitempty,eventstatus"`
	AlertFired  *bool          `json:"alert_fired,omitempty"`
	Notes       *string        `json:"notes,omitempty" validate:"omitempty,max=5000"`
}

func (p CalendarEventPatch) Apply(e CalendarEvent) CalendarEvent {
	if p.Title != nil {
		e.Title = *p.Title
	}
	if p.Description != nil {
		e.Description = *p.Description
	}
	if p.StartAt != nil {
		e.StartAt = *p.StartAt
	}
	if p.EndAt != nil {
		e.EndAt = *p.EndAt
	}
	if p.Type != nil {
		e.Type = *p.Type
	}
	if p.Priority != nil {
		e.Priority = *p.Priority
	}
	if p.Status != nil {
		e.Status = *p.Status
	}
	if p.AlertFired != nil {
		e.AlertFired = *p.AlertFired
	}
	if p.Notes != nil {
		e.Notes = *p.Notes
	}
	return e
}

func (p CalendarEventPatch) Columns() map[string]any {
	cols := make(map[string]any)
	if p.Title != nil {
		cols["title"] = *p.Title
	}
	if p.Description != nil {
		cols["description"] = *p.Description
	}
	if p.StartAt != nil {
		cols["start_at"] = p.StartAt.UTC()
	}
	if p.EndAt != nil {
		cols["end_at"] = p.EndAt.UTC()
	}
	if p.Type != nil {
		cols["type"] = string(*p.Type)
	}
	if p.Priority != nil {
		cols["priority"] = string(*p.Priority)
	}
	if p.Status != nil {
		cols["status"] = string(*p.Status)
	}
	if p.AlertFired != nil {
		cols["alert_fired"] = *p.AlertFired
	}
	if p.Notes != nil {
		cols["notes"] = *p.Notes
	}
	return cols
}

// Exported reports whether a patch touches fields mirrored to Google Calendar.
// Flipping alert_fired alone does not require a re-export.
func (p CalendarEventPatch) Exported() bool {
	return p.Title != nil || p.Description != nil || p.StartAt != nil ||
		p.EndAt != nil || p.Status != nil || p.Notes != nil
}
