package client

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"ops-dashboard/models"
)

// Table is typed access to one backend table. T is the row type, N the insert
// payload and P the partial update.
type Table[T, N, P any] struct {
	c    *Client
	name string
}

func NewTable[T, N, P any](c *Client, name string) *Table[T, N, P] {
	return &Table[T, N, P]{c: c, name: name}
}

func (t *Table[T, N, P]) Name() string { return t.name }

func (t *Table[T, N, P]) path() string {
	return "/api/tables/" + url.PathEscape(t.name)
}

// Select returns the caller's rows matching q.
func (t *Table[T, N, P]) Select(ctx context.Context, q models.Query) ([]T, error) {
	var rows []T
	if err := t.c.do(ctx, http.MethodGet, t.path(), EncodeQuery(q), nil, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

// Insert creates a row and returns it as the server stored it.
func (t *Table[T, N, P]) Insert(ctx context.Context, draft N) (*T, error) {
	var row T
	if err := t.c.do(ctx, http.MethodPost, t.path(), nil, draft, &row); err != nil {
		return nil, err
	}
	return &row, nil
}

// Update sends a partial update and returns the updated row.
func (t *Table[T, N, P]) Update(ctx context.Context, id string, patch P) (*T, error) {
	var row T
	if err := t.c.do(ctx, http.MethodPatch, t.path()+"/"+url.PathEscape(id), nil, patch, &row); err != nil {
		return nil, err
	}
	return &row, nil
}

// Delete removes a row. Deleting an unknown id succeeds.
func (t *Table[T, N, P]) Delete(ctx context.Context, id string) error {
	return t.c.do(ctx, http.MethodDelete, t.path()+"/"+url.PathEscape(id), nil, nil, nil)
}

// EncodeQuery turns select filters into query parameters.
func EncodeQuery(q models.Query) url.Values {
	v := url.Values{}
	if q.ProjectID != "" {
		v.Set("project_id", q.ProjectID)
	}
	if q.Inbox {
		v.Set("inbox", strconv.FormatBool(true))
	}
	if q.FolderID != "" {
		v.Set("folder_id", q.FolderID)
	}
	if q.Favorites {
		v.Set("favorite", strconv.FormatBool(true))
	}
	if !q.From.IsZero() {
		v.Set("from", q.From.UTC().Format(time.RFC3339))
	}
	if !q.To.IsZero() {
		v.Set("to", q.To.UTC().Format(time.RFC3339))
	}
	return v
}

type (
	TaskTable      = Table[models.Task, models.NewTask, models.TaskPatch]
	ProjectTable   = Table[models.Project, models.NewProject, models.ProjectPatch]
	NoteTable      = Table[models.Note, models.NewNote, models.NotePatch]
	FolderTable    = Table[models.Folder, models.NewFolder, models.FolderPatch]
	EventTable     = Table[models.CalendarEvent, models.NewCalendarEvent, models.CalendarEventPatch]
	LogisticsTable = Table[models.LogisticsItem, models.NewLogisticsItem, models.LogisticsItemPatch]
	SectorTable    = Table[models.Sector, struct{}, struct{}]
	ManifestTable  = Table[models.ManifestItem, models.NewManifestItem, models.ManifestItemPatch]
)

func (c *Client) Tasks() *TaskTable {
	return NewTable[models.Task, models.NewTask, models.TaskPatch](c, models.TableTasks)
}

func (c *Client) Projects() *ProjectTable {
	return NewTable[models.Project, models.NewProject, models.ProjectPatch](c, models.TableProjects)
}

func (c *Client) Notes() *NoteTable {
	return NewTable[models.Note, models.NewNote, models.NotePatch](c, models.TableNotes)
}

func (c *Client) Folders() *FolderTable {
	return NewTable[models.Folder, models.NewFolder, models.FolderPatch](c, models.TableFolders)
}

func (c *Client) Events() *EventTable {
	return NewTable[models.CalendarEvent, models.NewCalendarEvent, models.CalendarEventPatch](c, models.TableEvents)
}

func (c *Client) LogisticsItems() *LogisticsTable {
	return NewTable[models.LogisticsItem, models.NewLogisticsItem, models.LogisticsItemPatch](c, models.TableLogisticsItems)
}

// Sectors are read-only; Insert, Update and Delete fail with 405.
func (c *Client) Sectors() *SectorTable {
	return NewTable[models.Sector, struct{}, struct{}](c, models.TableSectors)
}

func (c *Client) ManifestItems() *ManifestTable {
	return NewTable[models.ManifestItem, models.NewManifestItem, models.ManifestItemPatch](c, models.TableManifestItems)
}

// SyncStatus is the calendar export summary for the signed-in user.
type SyncStatus struct {
	Enabled      bool                   `json:"enabled"`
	Connected    bool                   `json:"connected"`
	CalendarID   string                 `json:"calendar_id,omitempty"`
	PendingCount int                    `json:"pending_count"`
	FailedCount  int                    `json:"failed_count"`
	FailedEvents []models.CalendarEvent `json:"failed_events"`
}

func (c *Client) SyncStatus(ctx context.Context) (*SyncStatus, error) {
	var status SyncStatus
	if err := c.do(ctx, http.MethodGet, "/api/sync/status", nil, nil, &status); err != nil {
		return nil, err
	}
	return &status, nil
}

func (c *Client) RetrySync(ctx context.Context, eventID string) error {
	return c.do(ctx, http.MethodPost, "/api/sync/retry/"+url.PathEscape(eventID), nil, nil, nil)
}

// ConnectCalendar links a Google Calendar for event export.
func (c *Client) ConnectCalendar(ctx context.Context, req models.ConnectCalendarRequest) (*SyncStatus, error) {
	var status SyncStatus
	if err := c.do(ctx, http.MethodPut, "/api/integrations/gcal", nil, req, &status); err != nil {
		return nil, err
	}
	return &status, nil
}
