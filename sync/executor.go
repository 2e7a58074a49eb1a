package sync

import (
	"context"
	"fmt"

	"ops-dashboard/database"
	"ops-dashboard/metrics"
	"ops-dashboard/models"

	"golang.org/x/oauth2"
)

// ==================== SYNC EXECUTION ====================

// syncPendingEvents retrieves and exports pending events (batch mode with
// retry logic). Returns true if work was found, false otherwise.
func (w *Worker) syncPendingEvents(ctx context.Context) bool {
	events, err := w.repo.GetPendingSyncEvents(w.batchSize)
	if err != nil {
		w.logger.Error("failed to get pending events", "error", err)
		return false
	}

	if len(events) == 0 {
		return false
	}

	// Only events left alone for the settle window, so rapid edits coalesce
	settled := filterSettledEvents(events, w.settle, w.now())
	if len(settled) == 0 {
		return false
	}

	w.logger.Info("processing pending events", "count", len(settled))

	// Group events by user
	eventsByUser := make(map[string][]database.EventWithMeta)
	for _, ev := range settled {
		eventsByUser[ev.UserID] = append(eventsByUser[ev.UserID], ev)
	}

	for userID, userEvents := range eventsByUser {
		if ctx.Err() != nil {
			break
		}
		result := w.syncEventsWithCalendar(ctx, userID, userEvents)
		if result.syncedCount > 0 || result.failedCount > 0 {
			w.logger.Info("sync complete",
				"user_id", userID,
				"succeeded", result.syncedCount,
				"failed", result.failedCount,
				"total", len(userEvents),
			)
		}
	}

	return true
}

// syncEventsWithCalendar handles token lookup, client creation, event export
// and token refresh for one user's batch
func (w *Worker) syncEventsWithCalendar(ctx context.Context, userID string, events []database.EventWithMeta) *syncResult {
	result := &syncResult{}

	user, err := w.repo.GetUser(userID)
	if err != nil {
		w.logger.Error("failed to load user", "user_id", userID, "error", err)
		w.markEventsAsFailed(events, fmt.Sprintf("Failed to load user: %v", err))
		result.failedCount = len(events)
		return result
	}
	if !user.CalendarConnected() {
		for _, ev := range events {
			if err := w.repo.MarkEventAsNotPending(ev.ID); err != nil {
				w.logger.Error("failed to clear pending flag", "event_id", ev.ID, "error", err)
			}
		}
		return result
	}

	token := userToken(user)
	provider, err := w.calendarFactory(ctx, token, user.CalendarID)
	if err != nil {
		w.logger.Error("failed to create calendar client", "user_id", userID, "error", err)
		w.markEventsAsFailed(events, fmt.Sprintf("Failed to connect to Google Calendar: %v", err))
		result.failedCount = len(events)
		return result
	}

	// Separate delete operations and regular operations
	var deleteOps, regularOps []database.EventWithMeta
	for _, ev := range events {
		if ev.Deleted {
			deleteOps = append(deleteOps, ev)
		} else {
			regularOps = append(regularOps, ev)
		}
	}

	// Deletions first, then exports, stopping when the token is rejected
	handled := make(map[string]bool, len(events))
	for _, batch := range [][]database.EventWithMeta{deleteOps, regularOps} {
		for _, ev := range batch {
			if err := w.repo.MarkEventSyncing(ev.ID); err != nil {
				w.logger.Error("failed to mark event as syncing", "event_id", ev.ID, "error", err)
			}

			if err := w.syncEvent(ctx, provider, &ev); err != nil {
				if isTokenExpiredError(err) {
					w.logger.Warn("token expired, stopping sync", "user_id", userID)
					result.tokenExpired = true
					break
				}
				action := "Sync"
				if ev.Deleted {
					action = "Delete"
				}
				w.repo.MarkEventSyncFailed(ev.ID, fmt.Sprintf("%s failed: %v", action, err))
				metrics.SyncedEvents.WithLabelValues("failed").Inc()
				handled[ev.ID] = true
				result.failedCount++
				continue
			}
			handled[ev.ID] = true
			result.syncedCount++
		}
		if result.tokenExpired {
			break
		}
	}

	// If the token expired, every event not yet handled fails
	if result.tokenExpired {
		w.logger.Warn("marking remaining events as failed due to expired token", "user_id", userID)
		for _, ev := range events {
			if handled[ev.ID] {
				continue
			}
			w.repo.MarkEventSyncFailed(ev.ID, "Authentication token expired, please reconnect Google Calendar")
			metrics.SyncedEvents.WithLabelValues("failed").Inc()
			result.failedCount++
		}
		return result
	}

	// Update the stored token if it was refreshed
	w.persistRefreshedToken(provider, token, userID)

	return result
}

// syncEvent exports or removes a single event
func (w *Worker) syncEvent(ctx context.Context, provider CalendarService, ev *database.EventWithMeta) error {
	if ev.Deleted {
		if ev.GCalEventID != "" {
			if err := provider.DeleteEvent(ctx, ev.GCalEventID); err != nil {
				return err
			}
		}
		// Hard delete from database after successful deletion
		if err := w.repo.HardDeleteEvent(ev.ID); err != nil {
			return err
		}
		metrics.SyncedEvents.WithLabelValues("deleted").Inc()
		return nil
	}

	gcalID, err := provider.UpsertEvent(ctx, ev.CalendarEvent, ev.GCalEventID)
	if err != nil {
		return err
	}

	if err := w.repo.MarkEventSynced(ev.ID, gcalID); err != nil {
		return err
	}
	metrics.SyncedEvents.WithLabelValues("synced").Inc()
	return nil
}

func userToken(user *models.User) *oauth2.Token {
	return &oauth2.Token{
		AccessToken:  user.CalendarToken,
		RefreshToken: user.CalendarRefresh,
		Expiry:       user.CalendarExpiry,
		TokenType:    "Bearer",
	}
}
