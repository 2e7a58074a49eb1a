package models

import "time"

// Table names are the collaborator contract shared by the backend, the
// client and the realtime feed.
const (
	TableTasks          = "tasks"
	TableProjects       = "projects"
	TableNotes          = "notes"
	TableFolders        = "folders"
	TableEvents         = "events"
	TableLogisticsItems = "logistics_items"
	TableSectors        = "sectors"
	TableManifestItems  = "manifest_items"
)

// Tables lists every table that can be queried or subscribed to.
var Tables = []string{
	TableTasks, TableProjects, TableNotes, TableFolders, TableEvents,
	TableLogisticsItems, TableSectors, TableManifestItems,
}

func KnownTable(name string) bool {
	for _, t := range Tables {
		if t == name {
			return true
		}
	}
	return false
}

type ChangeType string

const (
	ChangeInsert ChangeType = "INSERT"
	ChangeUpdate ChangeType = "UPDATE"
	ChangeDelete ChangeType = "DELETE"
)

// Change is a realtime notification about one row.
type Change struct {
	Table    string     `json:"table"`
	Type     ChangeType `json:"type"`
	RecordID string     `json:"record_id"`
	UserID   string     `json:"-"`
	At       time.Time  `json:"at"`
}
