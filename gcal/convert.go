package gcal

import (
	"time"

	"ops-dashboard/models"

	"google.golang.org/api/calendar/v3"
)

const (
	typeProperty     = "ops_type"
	priorityProperty = "ops_priority"
	statusProperty   = "ops_status"
)

// Google Calendar color ids per priority.
var priorityColors = map[models.EventPriority]string{
	models.EventHigh:   "11",
	models.EventMedium: "5",
	models.EventLow:    "2",
}

// RemoteEvent is a Google event converted to the local shape.
type RemoteEvent struct {
	GoogleID string
	Event    models.CalendarEvent
}

// ToGoogle converts a local event to the Calendar API body.
func ToGoogle(ev models.CalendarEvent) *calendar.Event {
	description := ev.Description
	if ev.Notes != "" {
		if description != "" {
			description += "\n\n"
		}
		description += ev.Notes
	}

	out := &calendar.Event{
		Summary:     ev.Title,
		Description: description,
		Start:       &calendar.EventDateTime{DateTime: ev.StartAt.UTC().Format(time.RFC3339), TimeZone: "UTC"},
		End:         &calendar.EventDateTime{DateTime: ev.EndAt.UTC().Format(time.RFC3339), TimeZone: "UTC"},
		ColorId:     priorityColors[ev.Priority],
		ExtendedProperties: &calendar.EventExtendedProperties{
			Private: map[string]string{
				eventIDProperty:  ev.ID,
				typeProperty:     string(ev.Type),
				priorityProperty: string(ev.Priority),
				statusProperty:   string(ev.Status),
			},
		},
	}
	if ev.Status == models.EventCompleted {
		out.Transparency = "transparent"
	}
	return out
}

// FromGoogle converts a Calendar API event. Cancelled events and events
// without a usable start are skipped.
func FromGoogle(item *calendar.Event) (RemoteEvent, bool) {
	if item == nil || item.Status == "cancelled" {
		return RemoteEvent{}, false
	}

	start, ok := parseEventTime(item.Start)
	if !ok {
		return RemoteEvent{}, false
	}
	end, ok := parseEventTime(item.End)
	if !ok || end.Before(start) {
		end = start
	}

	ev := models.CalendarEvent{
		Title:       item.Summary,
		Description: item.Description,
		StartAt:     start,
		EndAt:       end,
		Type:        models.EventCore,
		Priority:    models.EventMedium,
		Status:      models.EventPending,
	}
	if ev.Title == "" {
		ev.Title = "(untitled)"
	}

	if item.ExtendedProperties != nil {
		props := item.ExtendedProperties.Private
		if t := models.EventType(props[typeProperty]); t.Valid() {
			ev.Type = t
		}
		if p := models.EventPriority(props[priorityProperty]); p.Valid() {
			ev.Priority = p
		}
		if s := models.EventStatus(props[statusProperty]); s.Valid() {
			ev.Status = s
		}
	}

	return RemoteEvent{GoogleID: item.Id, Event: ev}, true
}

// parseEventTime reads a timed or all-day start/end as UTC.
func parseEventTime(t *calendar.EventDateTime) (time.Time, bool) {
	if t == nil {
		return time.Time{}, false
	}
	if t.DateTime != "" {
		parsed, err := time.Parse(time.RFC3339, t.DateTime)
		if err != nil {
			return time.Time{}, false
		}
		return parsed.UTC(), true
	}
	if t.Date != "" {
		parsed, err := time.Parse("2006-01-02", t.Date)
		if err != nil {
			return time.Time{}, false
		}
		return parsed.UTC(), true
	}
	return time.Time{}, false
}
