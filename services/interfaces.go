package services

import (
	"context"
	"time"

	"ops-dashboard/models"
)

// AuthRepository defines the interface for auth-related data access
type AuthRepository interface {
	CreateUser(user *models.User) error
	GetUser(userID string) (*models.User, error)
	GetUserByEmail(email string) (*models.User, error)
	TouchLogin(userID string) error
}

// SessionStore defines the interface for session management
type SessionStore interface {
	Create(userID, email string) (*models.Session, error)
	Get(sessionID string) (*models.Session, error)
	Delete(sessionID string) error
}

// FolderRepository defines the interface for folder data access
type FolderRepository interface {
	ListFolders(userID string) ([]models.Folder, error)
	GetFolderByName(userID, name string) (*models.Folder, error)
	GetFolderByID(userID, id string) (*models.Folder, error)
	CreateFolder(folder *models.Folder) error
	UpdateFolder(userID, id string, patch models.FolderPatch) (*models.Folder, error)
	DeleteFolder(userID, id string) error
}

// SyncRepository defines the interface for calendar export bookkeeping
type SyncRepository interface {
	GetUser(userID string) (*models.User, error)
	UpdateCalendarLink(userID, calendarID, accessToken, refreshToken string, expiry time.Time) error
	MarkUserEventsPending(userID string) (int64, error)
	GetFailedSyncEvents(userID string, limit int) ([]models.CalendarEvent, error)
	CountPendingSyncEvents(userID string) (int, error)
	RetrySyncEvent(userID, eventID string) error
}

// SyncWorker defines the interface for background sync operations
type SyncWorker interface {
	Trigger()
	ImportFromCalendar(ctx context.Context, userID string) (int, error)
}
