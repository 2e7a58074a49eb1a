package setup

import (
	"context"
	"log/slog"
	"time"

	"ops-dashboard/app"
	"ops-dashboard/config"
	"ops-dashboard/database"
	"ops-dashboard/gcal"
	"ops-dashboard/realtime"
	"ops-dashboard/session"
	"ops-dashboard/sync"
)

// InitDatabase initializes the SQLite database and runs migrations
func InitDatabase(dbPath string, logger *slog.Logger) (*database.DB, error) {
	db, err := database.New(dbPath)
	if err != nil {
		return nil, err
	}

	if err := db.Migrate(); err != nil {
		db.Close()
		return nil, err
	}

	logger.Info("database initialized", "path", dbPath)
	return db, nil
}

// InitApp initializes the application with all dependencies. Background
// routines stop when ctx is cancelled.
func InitApp(ctx context.Context, cfg *config.Config, db *database.DB, logger *slog.Logger) *app.App {
	repo := database.NewRepository(db)

	// Every committed row change fans out to realtime subscribers
	hub := realtime.NewHub()
	repo.SetPublisher(hub)

	sessionStore := session.NewStore(db.DB, cfg.SessionTTL)
	sessionStore.StartCleanupRoutine(ctx, time.Hour, logger)
	logger.Info("session cleanup routine started")

	var syncWorker *sync.Worker
	if cfg.SyncEnabled {
		oauthConfig := gcal.OAuthConfig(cfg.GoogleClientID, cfg.GoogleClientSecret, cfg.GoogleRedirectURL)
		syncWorker = sync.NewWorker(repo, sync.GoogleFactory(oauthConfig), logger)
		syncWorker.Start()
		logger.Info("calendar sync worker started")
	} else {
		logger.Info("calendar sync disabled")
	}

	application := app.New(cfg, repo, hub, syncWorker, sessionStore, logger)
	logger.Info("application initialized")

	return application
}

// Shutdown performs graceful shutdown of all services
func Shutdown(application *app.App, db *database.DB, logger *slog.Logger) {
	logger.Info("shutting down services...")

	if application != nil {
		if application.SyncWorker != nil {
			application.SyncWorker.Stop()
			logger.Info("sync worker stopped")
		}
		application.Hub.Close()
		logger.Info("realtime hub closed")
	}

	if db != nil {
		db.Close()
		logger.Info("database closed")
	}
}
