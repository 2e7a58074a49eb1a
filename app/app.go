package app

import (
	"log/slog"

	"ops-dashboard/config"
	"ops-dashboard/database"
	"ops-dashboard/realtime"
	"ops-dashboard/services"
	"ops-dashboard/session"
	"ops-dashboard/sync"
	"ops-dashboard/validator"
)

// App holds all application dependencies
// This struct is the central point for dependency injection
type App struct {
	Config        *config.Config
	Repo          *database.Repository
	Hub           *realtime.Hub
	SyncWorker    *sync.Worker
	SessionStore  *session.Store
	AuthService   *services.AuthService
	FolderService *services.FolderService
	SyncService   *services.SyncService
	Validator     *validator.Validator
	Logger        *slog.Logger
}

// New creates a new App instance with all dependencies. A nil syncWorker
// disables calendar export.
func New(cfg *config.Config, repo *database.Repository, hub *realtime.Hub, syncWorker *sync.Worker, sessionStore *session.Store, logger *slog.Logger) *App {
	var worker services.SyncWorker
	if syncWorker != nil {
		worker = syncWorker
	}

	return &App{
		Config:        cfg,
		Repo:          repo,
		Hub:           hub,
		SyncWorker:    syncWorker,
		SessionStore:  sessionStore,
		AuthService:   services.NewAuthService(repo, sessionStore),
		FolderService: services.NewFolderService(repo),
		SyncService:   services.NewSyncService(repo, worker, logger),
		Validator:     validator.New(),
		Logger:        logger,
	}
}
