package services

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"ops-dashboard/database"
	"ops-dashboard/models"
)

// SyncService exposes calendar export state to handlers
type SyncService struct {
	repo       SyncRepository
	syncWorker SyncWorker
	logger     *slog.Logger
}

// NewSyncService creates a new sync service. A nil worker means export is
// disabled on this server.
func NewSyncService(repo SyncRepository, syncWorker SyncWorker, logger *slog.Logger) *SyncService {
	return &SyncService{
		repo:       repo,
		syncWorker: syncWorker,
		logger:     logger,
	}
}

// SyncStatus summarizes a user's calendar export
type SyncStatus struct {
	Enabled      bool                   `json:"enabled"`
	Connected    bool                   `json:"connected"`
	CalendarID   string                 `json:"calendar_id,omitempty"`
	PendingCount int                    `json:"pending_count"`
	FailedCount  int                    `json:"failed_count"`
	FailedEvents []models.CalendarEvent `json:"failed_events"`
}

// Status returns sync status information for the user
func (ss *SyncService) Status(userID string) (*SyncStatus, error) {
	user, err := ss.repo.GetUser(userID)
	if err != nil {
		return nil, err
	}

	failed, err := ss.repo.GetFailedSyncEvents(userID, 50)
	if err != nil {
		return nil, err
	}

	pending, err := ss.repo.CountPendingSyncEvents(userID)
	if err != nil {
		return nil, err
	}

	status := &SyncStatus{
		Enabled:      ss.syncWorker != nil,
		Connected:    user.CalendarConnected(),
		PendingCount: pending,
		FailedCount:  len(failed),
		FailedEvents: failed,
	}
	if status.Connected {
		status.CalendarID = user.CalendarID
	}
	return status, nil
}

// Retry gives a failed export another round of attempts
func (ss *SyncService) Retry(userID, eventID string) error {
	if err := ss.repo.RetrySyncEvent(userID, eventID); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return ErrEventNotFound
		}
		return err
	}

	if ss.syncWorker != nil {
		ss.syncWorker.Trigger()
	}
	return nil
}

// ConnectCalendar stores the user's Google Calendar credentials and queues all
// existing events for export. With req.Import set, upcoming Google events are
// pulled in the background.
func (ss *SyncService) ConnectCalendar(userID string, req models.ConnectCalendarRequest) (*SyncStatus, error) {
	if ss.syncWorker == nil {
		return nil, ErrCalendarUnavailable
	}

	var expiry time.Time
	if req.ExpiresIn > 0 {
		expiry = time.Now().Add(time.Duration(req.ExpiresIn) * time.Second).UTC()
	}

	if err := ss.repo.UpdateCalendarLink(userID, req.CalendarID, req.AccessToken, req.RefreshToken, expiry); err != nil {
		return nil, err
	}

	queued, err := ss.repo.MarkUserEventsPending(userID)
	if err != nil {
		return nil, err
	}
	ss.logger.Info("calendar connected", "user_id", userID, "calendar_id", req.CalendarID, "queued", queued)

	if req.Import {
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
			defer cancel()

			n, err := ss.syncWorker.ImportFromCalendar(ctx, userID)
			if err != nil {
				ss.logger.Error("calendar import failed", "user_id", userID, "error", err)
				return
			}
			ss.logger.Info("calendar import finished", "user_id", userID, "imported", n)
		}()
	}

	ss.syncWorker.Trigger()
	return ss.Status(userID)
}
