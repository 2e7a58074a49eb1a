package store

import (
	"context"
	"sync"

	"ops-dashboard/models"
)

type ProjectRemote = Remote[models.Project, models.NewProject, models.ProjectPatch]

// ProjectStore orders projects newest first and tracks the selected one.
type ProjectStore struct {
	*Collection[models.Project, models.NewProject, models.ProjectPatch]

	selMu    sync.RWMutex
	selected string
}

func NewProjectStore(remote ProjectRemote, opts ...Option) *ProjectStore {
	return &ProjectStore{
		Collection: NewCollection(models.TableProjects, remote,
			func(p models.Project) string { return p.ID },
			func(a, b models.Project) bool { return a.CreatedAt.After(b.CreatedAt) },
			opts...),
	}
}

// Select marks a project as selected. An empty id clears the selection.
func (s *ProjectStore) Select(id string) {
	s.selMu.Lock()
	defer s.selMu.Unlock()
	s.selected = id
}

// Selected returns the selected project if the store still holds it.
func (s *ProjectStore) Selected() (models.Project, bool) {
	s.selMu.RLock()
	id := s.selected
	s.selMu.RUnlock()

	if id == "" {
		return models.Project{}, false
	}
	return s.Get(id)
}

// Delete also clears the selection when it pointed at the deleted project.
func (s *ProjectStore) Delete(ctx context.Context, id string) error {
	if err := s.Collection.Delete(ctx, id); err != nil {
		return err
	}

	s.selMu.Lock()
	defer s.selMu.Unlock()
	if s.selected == id {
		s.selected = ""
	}
	return nil
}
