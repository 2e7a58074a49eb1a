package models

import "time"

type ProjectStatus string

const (
	ProjectRunning  ProjectStatus = "running"
	ProjectStalled  ProjectStatus = "stalled"
	ProjectCritical ProjectStatus = "critical"
)

func (s ProjectStatus) Valid() bool {
	return s == ProjectRunning || s == ProjectStalled || s == ProjectCritical
}

// DefaultTechnicalID is assigned when a project is created without one.
const DefaultTechnicalID = "PROJ-000"

type Project struct {
	ID             string        `json:"id"`
	UserID         string        `json:"-"`
	TechnicalID    string        `json:"technical_id"`
	Name           string        `json:"name"`
	Description    string        `json:"description,omitempty"`
	Status         ProjectStatus `json:"status"`
	Progress       int           `json:"progress"`
	TotalTasks     int           `json:"total_tasks"`
	CompletedTasks int           `json:"completed_tasks"`
	Tags           []string      `json:"tags"`
	Color          string        `json:"color_accent,omitempty"`
	CreatedAt      time.Time     `json:"created_at"`
	UpdatedAt      time.Time     `json:"updated_at"`
}

type NewProject struct {
	TechnicalID string        `json:"technical_id" validate:"max=40"`
	Name        string        `json:"name" validate:"required,min=1,max=120"`
	Description string        `json:"description" validate:"max=5000"`
	Status      ProjectStatus `json:"status" validate:"omitempty,projectstatus"`
	Progress    int           `json:"progress" validate:"gte=0,lte=100"`
	Tags        []string      `json:"tags,omitempty" validate:"max=20,dive,min=1,max=40"`
	Color       string        `json:"color_accent,omitempty" validate:"omitempty,hexcolor"`
}

// ProjectPatch leaves the task counters alone; the backend owns them.
type ProjectPatch struct {
	TechnicalID *string        `json:"technical_id,omitempty" validate:"omitempty,max=40"`
	Name        *string        `json:"name,omitempty" validate:"omitempty,min=1,max=120"`
	Description *string        `json:"description,omitempty" validate:"omitempty,max=5000"`
	Status      *ProjectStatus `json:"status,omitempty" validate:"omitempty,projectstatus"`
	Progress    *int           `json:"progress,omitempty" validate:"omitempty,gte=0,lte=100"`
	Tags        []string       `json:"tags" validate:"omitempty,max=20,dive,min=1,max=40"`
	Color       *string        `json:"color_accent,omitempty" validate:"omitempty,hexcolor"`
}

func (p ProjectPatch) Apply(pr Project) Project {
	if p.TechnicalID != nil {
		pr.TechnicalID = *p.TechnicalID
	}
	if p.Name != nil {
		pr.Name = *p.Name
	}
	if p.Description != nil {
		pr.Description = *p.Description
	}
	if p.Status != nil {
		pr.Status = *p.Status
	}
	if p.Progress != nil {
		pr.Progress = *p.Progress
	}
	if p.Tags != nil {
		pr.Tags = append([]string(nil), p.Tags...)
	}
	if p.Color != nil {
		pr.Color = *p.Color
	}
	return pr
}

func (p ProjectPatch) Columns() map[string]any {
	cols := make(map[string]any)
	if p.TechnicalID != nil {
		cols["technical_id"] = *p.TechnicalID
	}
	if p.Name != nil {
		cols["name"] = *p.Name
	}
	if p.Description != nil {
		cols["description"] = *p.Description
	}
	if p.Status != nil {
		cols["status"] = string(*p.Status)
	}
	if p.Progress != nil {
		cols["progress"] = *p.Progress
	}
	if p.Tags != nil {
		cols["tags"] = JoinTags(p.Tags)
	}
	if p.Color != nil {
		cols["color_accent"] = *p.Color
	}
	return cols
}
