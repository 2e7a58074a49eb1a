package sync

import (
	"ops-dashboard/metrics"

	"golang.org/x/oauth2"
)

// tokenChanged reports whether the calendar client refreshed its token
// during a run.
func tokenChanged(before, after *oauth2.Token) bool {
	if after == nil {
		return false
	}
	if before == nil {
		return true
	}
	return after.AccessToken != before.AccessToken || !after.Expiry.Equal(before.Expiry)
}

// persistRefreshedToken writes the calendar token back to the user row when
// the client refreshed it, so the next run does not refresh again.
func (w *Worker) persistRefreshedToken(provider CalendarService, before *oauth2.Token, userID string) {
	after, err := provider.GetCurrentToken()
	if err != nil {
		w.logger.Warn("cannot read calendar token after sync", "user_id", userID, "error", err)
		return
	}
	if !tokenChanged(before, after) {
		return
	}

	if err := w.repo.UpdateCalendarToken(userID, after.AccessToken, after.RefreshToken, after.Expiry); err != nil {
		w.logger.Error("failed to store refreshed calendar token", "user_id", userID, "error", err)
		return
	}
	metrics.CalendarTokenRefreshes.Inc()
	w.logger.Info("calendar token refreshed", "user_id", userID, "expiry", after.Expiry)
}
