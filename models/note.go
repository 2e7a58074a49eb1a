package models

import "time"

type Note struct {
	ID         string    `json:"id"`
	UserID     string    `json:"-"`
	Title      string    `json:"title"`
	Content    string    `json:"content"`
	FolderID   string    `json:"folder_id,omitempty"`
	IsFavorite bool      `json:"is_favorite"`
	Tags       []string  `json:"tags"`
	ProjectID  string    `json:"project_id,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

type NewNote struct {
	Title      string   `json:"title" validate:"required,min=1,max=200"`
	Content    string   `json:"content"`
	FolderID   string   `json:"folder_id,omitempty"`
	IsFavorite bool     `json:"is_favorite"`
	Tags       []string `json:"tags,omitempty" validate:"max=20,dive,min=1,max=40"`
	ProjectID  string   `json:"project_id,omitempty"`
}

type NotePatch struct {
	Title      *string  `json:"title,omitempty" validate:"omitempty,min=1,max=200"`
	Content    *string  `json:"content,omitempty"`
	FolderID   *string  `json:"folder_id,omitempty"`
	IsFavorite *bool    `json:"is_favorite,omitempty"`
	Tags       []string `json:"tags" validate:"omitempty,max=20,dive,min=1,max=40"`
	ProjectID  *string  `json:"project_id,omitempty"`
}

func (p NotePatch) Apply(n Note) Note {
	if p.Title != nil {
		n.Title = *p.Title
	}
	if p.Content != nil {
		n.Content = *p.Content
	}
	if p.FolderID != nil {
		n.FolderID = *p.FolderID
	}
	if p.IsFavorite != nil {
		n.IsFavorite = *p.IsFavorite
	}
	if p.Tags != nil {
		n.Tags = append([]string(nil), p.Tags...)
	}
	if p.ProjectID != nil {
		n.ProjectID = *p.ProjectID
	}
	return n
}

func (p NotePatch) Columns() map[string]any {
	cols := make(map[string]any)
	if p.Title != nil {
		cols["title"] = *p.Title
	}
	if p.Content != nil {
		cols["content"] = *p.Content
	}
	if p.FolderID != nil {
		cols["folder_id"] = nullIfEmpty(*p.FolderID)
	}
	if p.IsFavorite != nil {
		cols["is_favorite"] = *p.IsFavorite
	}
	if p.Tags != nil {
		cols["tags"] = JoinTags(p.Tags)
	}
	if p.ProjectID != nil {
		cols["project_id"] = nullIfEmpty(*p.ProjectID)
	}
	return cols
}

// Folder groups notes. Names are unique per user.
type Folder struct {
	ID        string    `json:"id"`
	UserID    string    `json:"-"`
	Name      string    `json:"name"`
	Color     string    `json:"color"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type NewFolder struct {
	Name  string `json:"name" validate:"required,min=1,max=100,foldername"`
	Color string `json:"color" validate:"omitempty,hexcolor"`
}

type FolderPatch struct {
	Name  *string `json:"name,omitempty" validate:"omitempty,min=1,max=100,foldername"`
	Color *string `json:"color,omitempty" validate:"omitempty,hexcolor"`
}

func (p FolderPatch) Apply(f Folder) Folder {
	if p.Name != nil {
		f.Name = *p.Name
	}
	if p.Color != nil {
		f.Color = *p.Color
	}
	return f
}

func (p FolderPatch) Columns() map[string]any {
	cols := make(map[string]any)
	if p.Name != nil {
		cols["name"] = *p.Name
	}
	if p.Color != nil {
		cols["color"] = *p.Color
	}
	return cols
}
