package models

import "time"

type Priority string

const (
	PriorityCritical Priority = "critical"
	PriorityHigh     Priority = "high"
	PriorityMedium   Priority = "medium"
	PriorityLow      Priority = "low"
)

var priorityRank = map[Priority]int{
	PriorityCritical: 0,
	PriorityHigh:     1,
	PriorityMedium:   2,
	PriorityLow:      3,
}

// Rank orders priorities from most to least urgent. Unknown values sort last.
func (p Priority) Rank() int {
	if r, ok := priorityRank[p]; ok {
		return r
	}
	return len(priorityRank)
}

func (p Priority) Valid() bool {
	_, ok := priorityRank[p]
	return ok
}

type TaskStatus string

const (
	TaskTodo       TaskStatus = "todo"
	TaskInProgress TaskStatus = "in-progress"
	TaskCompleted  TaskStatus = "completed"
)

// TaskStatuses lists the kanban columns in display order.
var TaskStatuses = []TaskStatus{TaskTodo, TaskInProgress, TaskCompleted}

func (s TaskStatus) Valid() bool {
	return s == TaskTodo || s == TaskInProgress || s == TaskCompleted
}

type Task struct {
	ID          string     `json:"id"`
	UserID      string     `json:"-"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	Status      TaskStatus `json:"status"`
	Priority    Priority   `json:"priority"`
	ProjectID   string     `json:"project_id,omitempty"`
	DueDate     *time.Time `json:"due_date,omitempty"`
	IsVisible   bool       `json:"is_visible"`
	Tags        []string   `json:"tags"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// NewTask is the insert payload for the tasks table.
type NewTask struct {
	Title       string     `json:"title" validate:"required,min=1,max=200"`
	Description string     `json:"description" validate:"max=5000"`
	Status      TaskStatus `json:"status" validate:"omitempty,taskstatus"`
	Priority    Priority   `json:"priority" validate:"omitempty,priority"`
	ProjectID   string     `json:"project_id,omitempty"`
	DueDate     *time.Time `json:"due_date,omitempty"`
	Tags        []string   `json:"tags,omitempty" validate:"max=20,dive,min=1,max=40"`
}

// TaskPatch is a partial update. Nil fields are left untouched; an empty
// ProjectID detaches the task from its project.
type TaskPatch struct {
	Title       *string     `json:"title,omitempty" validate:"omitempty,min=1,max=200"`
	Description *string     `json:"description,omitempty" validate:"omitempty,max=5000"`
	Status      *TaskStatus `json:"status,omitempty" validate:"omitempty,taskstatus"`
	Priority    *Priority   `json:"priority,omitempty" validate:"omitempty,priority"`
	ProjectID   *string     `json:"project_id,omitempty"`
	DueDate     *time.Time  `json:"due_date,omitempty"`
	IsVisible   *bool       `json:"is_visible,omitempty"`
	Tags        []string    `json:"tags" validate:"omitempty,max=20,dive,min=1,max=40"`
}

func (p TaskPatch) Apply(t Task) Task {
	if p.Title != nil {
		t.Title = *p.Title
	}
	if p.Description != nil {
		t.Description = *p.Description
	}
	if p.Status != nil {
		t.Status = *p.Status
	}
	if p.Priority != nil {
		t.Priority = *p.Priority
	}
	if p.ProjectID != nil {
		t.ProjectID = *p.ProjectID
	}
	if p.DueDate != nil {
		due := *p.DueDate
		t.DueDate = &due
	}
	if p.IsVisible != nil {
		t.IsVisible = *p.IsVisible
	}
	if p.Tags != nil {
		t.Tags = append([]string(nil), p.Tags...)
	}
	return t
}

// Columns maps the set fields to their table columns.
func (p TaskPatch) Columns() map[string]any {
	cols := make(map[string]any)
	if p.Title != nil {
		cols["title"] = *p.Title
	}
	if p.Description != nil {
		cols["description"] = *p.Description
	}
	if p.Status != nil {
		cols["status"] = string(*p.Status)
	}
	if p.Priority != nil {
		cols["priority"] = string(*p.Priority)
	}
	if p.ProjectID != nil {
		cols["project_id"] = nullIfEmpty(*p.ProjectID)
	}
	if p.DueDate != nil {
		cols["due_date"] = *p.DueDate
	}
	if p.IsVisible != nil {
		cols["is_visible"] = *p.IsVisible
	}
	if p.Tags != nil {
		cols["tags"] = JoinTags(p.Tags)
	}
	return cols
}

func nullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}
