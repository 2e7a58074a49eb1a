package sync

import (
	"strings"
	"time"

	"ops-dashboard/database"
	"ops-dashboard/gcal"
)

// ==================== RETRY LOGIC & BACKOFF ====================

// syncResult holds the result of a sync operation
type syncResult struct {
	syncedCount  int
	failedCount  int
	tokenExpired bool
}

// filterSettledEvents keeps events whose last attempt, or last edit when
// never attempted, is at least minAge old
func filterSettledEvents(events []database.EventWithMeta, minAge time.Duration, now time.Time) []database.EventWithMeta {
	var settled []database.EventWithMeta

	for _, ev := range events {
		ref := ev.UpdatedAt
		if ev.SyncLastAttemptAt != nil {
			ref = *ev.SyncLastAttemptAt
		}
		if now.Sub(ref) >= minAge {
			settled = append(settled, ev)
		}
	}

	return settled
}

// isTokenExpiredError checks if an error is related to token expiration
func isTokenExpiredError(err error) bool {
	if err == nil {
		return false
	}
	if gcal.IsUnauthorized(err) {
		return true
	}
	errMsg := err.Error()
	return strings.Contains(errMsg, "token expired") ||
		strings.Contains(errMsg, "Token has been expired") ||
		strings.Contains(errMsg, "invalid_grant")
}

// markEventsAsFailed marks a batch of events as failed with an error message
func (w *Worker) markEventsAsFailed(events []database.EventWithMeta, errorMsg string) {
	for _, ev := range events {
		if err := w.repo.MarkEventSyncFailed(ev.ID, errorMsg); err != nil {
			w.logger.Error("failed to mark event as failed", "event_id", ev.ID, "error", err)
		}
	}
}
