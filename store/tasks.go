package store

import (
	"context"
	"sync"
	"time"

	"ops-dashboard/models"
)

// DefaultCompleteDelay is how long a task blooms before it is completed.
const DefaultCompleteDelay = 2 * time.Second

// EscalationAge is how long a high-priority task may sit untouched.
const EscalationAge = 24 * time.Hour

type TaskRemote = Remote[models.Task, models.NewTask, models.TaskPatch]

// TaskStore orders tasks by priority, newest first within a priority.
type TaskStore struct {
	*Collection[models.Task, models.NewTask, models.TaskPatch]

	now func() time.Time

	bloomMu  sync.RWMutex
	blooming map[string]bool
}

func taskLess(a, b models.Task) bool {
	if ra, rb := a.Priority.Rank(), b.Priority.Rank(); ra != rb {
		return ra < rb
	}
	return a.CreatedAt.After(b.CreatedAt)
}

func NewTaskStore(remote TaskRemote, opts ...Option) *TaskStore {
	o := buildOptions(opts)
	return &TaskStore{
		Collection: NewCollection(models.TableTasks, remote,
			func(t models.Task) string { return t.ID }, taskLess, opts...),
		now:      o.now,
		blooming: make(map[string]bool),
	}
}

// FetchProject fetches the tasks of one project.
func (s *TaskStore) FetchProject(ctx context.Context, projectID string) error {
	s.SetQuery(models.Query{ProjectID: projectID})
	return s.Fetch(ctx)
}

// FetchInbox fetches the tasks that belong to no project.
func (s *TaskStore) FetchInbox(ctx context.Context) error {
	s.SetQuery(models.Query{Inbox: true})
	return s.Fetch(ctx)
}

// CompleteWithDelay marks a task as blooming, waits for delay and then
// completes and hides it. It blocks until the update finishes or ctx ends.
func (s *TaskStore) CompleteWithDelay(ctx context.Context, id string, delay time.Duration) error {
	s.setBlooming(id, true)
	defer s.setBlooming(id, false)

	timer := time.NewTimer(delay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
	}

	status := models.TaskCompleted
	return s.Update(ctx, id, models.TaskPatch{Status: &status, IsVisible: models.Ptr(false)})
}

// Blooming reports whether a delayed completion is pending for id.
func (s *TaskStore) Blooming(id string) bool {
	s.bloomMu.RLock()
	defer s.bloomMu.RUnlock()
	return s.blooming[id]
}

func (s *TaskStore) setBlooming(id string, on bool) {
	s.bloomMu.Lock()
	defer s.bloomMu.Unlock()
	if on {
		s.blooming[id] = true
	} else {
		delete(s.blooming, id)
	}
}

// Escalated returns high-priority tasks that are not completed and have not
// been touched for more than EscalationAge.
func (s *TaskStore) Escalated(now time.Time) []models.Task {
	var out []models.Task
	for _, t := range s.Items() {
		last := t.UpdatedAt
		if last.IsZero() {
			last = t.CreatedAt
		}
		if t.Priority == models.PriorityHigh && t.Status != models.TaskCompleted && now.Sub(last) > EscalationAge {
			out = append(out, t)
		}
	}
	return out
}

// EscalatedNow is Escalated at the store's clock.
func (s *TaskStore) EscalatedNow() []models.Task {
	return s.Escalated(s.now())
}

// ByStatus groups tasks into kanban columns, keeping the store order.
func (s *TaskStore) ByStatus() map[models.TaskStatus][]models.Task {
	columns := make(map[models.TaskStatus][]models.Task, len(models.TaskStatuses))
	for _, status := range models.TaskStatuses {
		columns[status] = nil
	}
	for _, t := range s.Items() {
		columns[t.Status] = append(columns[t.Status], t)
	}
	return columns
}

// Visible returns the tasks that have not been hidden.
func (s *TaskStore) Visible() []models.Task {
	var out []models.Task
	for _, t := range s.Items() {
		if t.IsVisible {
			out = append(out, t)
		}
	}
	return out
}
