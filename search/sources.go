package search

import (
	"ops-dashboard/models"
	"ops-dashboard/store"
)

// Source yields the searchable items of one store at query time.
type Source func() []Item

// Index searches the current contents of its sources.
type Index struct {
	sources []Source
}

func NewIndex(sources ...Source) *Index {
	return &Index{sources: sources}
}

func (ix *Index) Search(query string) []Result {
	var items []Item
	for _, src := range ix.sources {
		items = append(items, src()...)
	}
	return Run(query, items)
}

// Tasks indexes tasks. Hidden tasks count as archived.
func Tasks(s *store.TaskStore) Source {
	return func() []Item {
		tasks := s.Items()
		items := make([]Item, 0, len(tasks))
		for _, t := range tasks {
			items = append(items, Item{
				ID:          t.ID,
				Title:       t.Title,
				Kind:        KindTask,
				Description: string(t.Status),
				Archived:    !t.IsVisible,
			})
		}
		return items
	}
}

func Notes(s *store.NoteStore) Source {
	return func() []Item {
		notes := s.Items()
		items := make([]Item, 0, len(notes))
		for _, n := range notes {
			items = append(items, Item{ID: n.ID, Title: n.Title, Kind: KindNote})
		}
		return items
	}
}

func Projects(s *store.ProjectStore) Source {
	return func() []Item {
		projects := s.Items()
		items := make([]Item, 0, len(projects))
		for _, p := range projects {
			items = append(items, Item{ID: p.ID, Title: p.Name, Kind: KindProject, Description: p.TechnicalID})
		}
		return items
	}
}

// Events indexes calendar events. Completed events count as archived.
func Events(s *store.EventStore) Source {
	return func() []Item {
		events := s.Items()
		items := make([]Item, 0, len(events))
		for _, e := range events {
			items = append(items, Item{
				ID:          e.ID,
				Title:       e.Title,
				Kind:        KindEvent,
				Description: string(e.Type),
				Archived:    e.Status == models.EventCompleted,
			})
		}
		return items
	}
}
