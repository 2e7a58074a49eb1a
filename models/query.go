package models

import "time"

// Query narrows a table select. Each table honours the fields that apply to it
// and ignores the rest.
type Query struct {
	ProjectID string    // tasks, notes
	Inbox     bool      // tasks without a project
	FolderID  string    // notes
	Favorites bool      // notes
	From      time.Time // events starting at or after
	To        time.Time // events starting before
}
