package sync

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"path/filepath"
	"testing"
	"time"

	"ops-dashboard/database"
	"ops-dashboard/gcal"
	"ops-dashboard/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
	"google.golang.org/api/googleapi"
)

// ==================== MOCKS ====================

type MockCalendarService struct {
	mock.Mock
}

var _ CalendarService = (*MockCalendarService)(nil)

func (m *MockCalendarService) UpsertEvent(ctx context.Context, ev models.CalendarEvent, gcalID string) (string, error) {
	args := m.Called(ev.ID, gcalID)
	return args.String(0), args.Error(1)
}

func (m *MockCalendarService) DeleteEvent(ctx context.Context, gcalID string) error {
	args := m.Called(gcalID)
	return args.Error(0)
}

func (m *MockCalendarService) ListUpcoming(ctx context.Context, from time.Time, limit int) ([]gcal.RemoteEvent, error) {
	args := m.Called(limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]gcal.RemoteEvent), args.Error(1)
}

func (m *MockCalendarService) GetCurrentToken() (*oauth2.Token, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*oauth2.Token), args.Error(1)
}

// ==================== HELPERS ====================

var tokenExpiry = time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)

func setupWorker(t *testing.T, svc *MockCalendarService) (*Worker, *database.Repository) {
	t.Helper()

	db, err := database.New(filepath.Join(t.TempDir(), "sync.db"))
	require.NoError(t, err)
	require.NoError(t, db.Migrate())
	t.Cleanup(func() { db.Close() })

	repo := database.NewRepository(db)
	require.NoError(t, repo.CreateUser(&models.User{ID: "u1", Email: "u1@example.com", PasswordHash: "x"}))
	require.NoError(t, repo.UpdateCalendarLink("u1", "primary", "access", "refresh", tokenExpiry))

	factory := func(ctx context.Context, token *oauth2.Token, calendarID string) (CalendarService, error) {
		return svc, nil
	}
	w := NewWorker(repo, factory, slog.New(slog.NewTextHandler(io.Discard, nil)))
	return w, repo
}

// createSettled inserts an event that was last edited outside the settle window.
func createSettled(t *testing.T, repo *database.Repository, title string) *models.CalendarEvent {
	t.Helper()
	repo.SetClock(func() time.Time { return time.Now().UTC().Add(-time.Minute) })
	defer repo.SetClock(func() time.Time { return time.Now().UTC() })

	start := time.Date(2025, 10, 17, 9, 0, 0, 0, time.UTC)
	ev, err := repo.CreateEvent("u1", models.NewCalendarEvent{Title: title, StartAt: start, EndAt: start.Add(time.Hour)})
	require.NoError(t, err)
	return ev
}

func unchangedToken(svc *MockCalendarService) {
	svc.On("GetCurrentToken").Return(&oauth2.Token{AccessToken: "access", Expiry: tokenExpiry}, nil)
}

// ==================== TESTS ====================

func TestSyncPendingEvents_Exports(t *testing.T) {
	svc := new(MockCalendarService)
	w, repo := setupWorker(t, svc)

	ev := createSettled(t, repo, "Standup")
	svc.On("UpsertEvent", ev.ID, "").Return("g-1", nil)
	unchangedToken(svc)

	hadWork := w.syncPendingEvents(context.Background())

	assert.True(t, hadWork)
	meta, err := repo.GetEventMeta("u1", ev.ID)
	require.NoError(t, err)
	assert.Equal(t, models.SyncStatusSynced, meta.SyncStatus)
	assert.Equal(t, "g-1", meta.GCalEventID)
	svc.AssertExpectations(t)

	t.Run("Nothing left", func(t *testing.T) {
		assert.False(t, w.syncPendingEvents(context.Background()))
	})
}

func TestSyncPendingEvents_SettleWindow(t *testing.T) {
	svc := new(MockCalendarService)
	w, repo := setupWorker(t, svc)

	start := time.Date(2025, 10, 17, 9, 0, 0, 0, time.UTC)
	_, err := repo.CreateEvent("u1", models.NewCalendarEvent{Title: "Fresh", StartAt: start, EndAt: start})
	require.NoError(t, err)

	assert.False(t, w.syncPendingEvents(context.Background()))
	svc.AssertNotCalled(t, "UpsertEvent", mock.Anything, mock.Anything)
}

func TestSyncPendingEvents_DeletesRemoteCopy(t *testing.T) {
	svc := new(MockCalendarService)
	w, repo := setupWorker(t, svc)

	ev := createSettled(t, repo, "Retired")
	require.NoError(t, repo.MarkEventSynced(ev.ID, "g-9"))

	repo.SetClock(func() time.Time { return time.Now().UTC().Add(-time.Minute) })
	require.NoError(t, repo.DeleteEvent("u1", ev.ID))
	repo.SetClock(func() time.Time { return time.Now().UTC() })

	// The synced timestamp is recent, so age the last attempt too.
	w.now = func() time.Time { return time.Now().UTC().Add(time.Minute) }

	svc.On("DeleteEvent", "g-9").Return(nil)
	unchangedToken(svc)

	assert.True(t, w.syncPendingEvents(context.Background()))

	meta, err := repo.GetEventMeta("u1", ev.ID)
	require.NoError(t, err)
	assert.Nil(t, meta)
	svc.AssertExpectations(t)
}

func TestSyncPendingEvents_Failures(t *testing.T) {
	t.Run("Regular failure increments retry count", func(t *testing.T) {
		svc := new(MockCalendarService)
		w, repo := setupWorker(t, svc)

		ev := createSettled(t, repo, "Flaky")
		svc.On("UpsertEvent", ev.ID, "").Return("", errors.New("backend error"))
		unchangedToken(svc)

		w.syncPendingEvents(context.Background())

		got, err := repo.GetEvent("u1", ev.ID)
		require.NoError(t, err)
		assert.Equal(t, models.SyncStatusFailed, got.SyncStatus)
		assert.Equal(t, 1, got.SyncRetryCount)
		assert.Contains(t, got.SyncError, "Sync failed: backend error")
	})

	t.Run("Expired token fails the whole batch", func(t *testing.T) {
		svc := new(MockCalendarService)
		w, repo := setupWorker(t, svc)

		a := createSettled(t, repo, "A")
		b := createSettled(t, repo, "B")
		svc.On("UpsertEvent", mock.Anything, "").Return("", &googleapi.Error{Code: http.StatusUnauthorized}).Once()

		w.syncPendingEvents(context.Background())

		for _, id := range []string{a.ID, b.ID} {
			got, err := repo.GetEvent("u1", id)
			require.NoError(t, err)
			assert.Equal(t, models.SyncStatusFailed, got.SyncStatus)
			assert.Contains(t, got.SyncError, "token expired")
		}
		svc.AssertNumberOfCalls(t, "UpsertEvent", 1)
		svc.AssertNotCalled(t, "GetCurrentToken")
	})
}

func TestSyncPendingEvents_StoresRefreshedToken(t *testing.T) {
	svc := new(MockCalendarService)
	w, repo := setupWorker(t, svc)

	ev := createSettled(t, repo, "Refresh")
	newExpiry := tokenExpiry.Add(time.Hour)
	svc.On("UpsertEvent", ev.ID, "").Return("g-2", nil)
	svc.On("GetCurrentToken").Return(&oauth2.Token{AccessToken: "access-2", Expiry: newExpiry}, nil)

	w.syncPendingEvents(context.Background())

	user, err := repo.GetUser("u1")
	require.NoError(t, err)
	assert.Equal(t, "access-2", user.CalendarToken)
	assert.Equal(t, "refresh", user.CalendarRefresh)
	assert.True(t, user.CalendarExpiry.Equal(newExpiry))
}

func TestImportFromCalendar(t *testing.T) {
	svc := new(MockCalendarService)
	w, repo := setupWorker(t, svc)

	start := time.Date(2025, 11, 3, 15, 0, 0, 0, time.UTC)
	remote := []gcal.RemoteEvent{
		{GoogleID: "g-a", Event: models.CalendarEvent{Title: "Dentist", StartAt: start, EndAt: start.Add(time.Hour),
			Type: models.EventCore, Priority: models.EventMedium, Status: models.EventPending}},
		{GoogleID: "g-b", Event: models.CalendarEvent{Title: "Flight", StartAt: start.Add(48 * time.Hour), EndAt: start.Add(50 * time.Hour),
			Type: models.EventCore, Priority: models.EventHigh, Status: models.EventPending}},
	}
	svc.On("ListUpcoming", importWindow).Return(remote, nil)
	unchangedToken(svc)

	n, err := w.ImportFromCalendar(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	n, err = w.ImportFromCalendar(context.Background(), "u1")
	require.NoError(t, err)
	assert.Zero(t, n)

	events, err := repo.ListEvents("u1", models.Query{})
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, "Dentist", events[0].Title)
	assert.Equal(t, models.SyncStatusSynced, events[1].SyncStatus)
}

func TestAdjustInterval(t *testing.T) {
	w := NewWorker(nil, nil, slog.New(slog.NewTextHandler(io.Discard, nil)))
	ticker := time.NewTicker(time.Hour)
	defer ticker.Stop()

	w.adjustInterval(ticker, false)
	assert.Equal(t, 5*time.Minute, w.Interval())

	w.adjustInterval(ticker, true)
	assert.Equal(t, 2*time.Minute, w.Interval())
}

func TestWorkerStartStop(t *testing.T) {
	svc := new(MockCalendarService)
	w, _ := setupWorker(t, svc)

	w.Start()
	w.Start()
	w.Trigger()
	w.Trigger()
	w.Stop()
	w.Stop()
}

func TestFilterSettledEvents(t *testing.T) {
	now := time.Date(2025, 10, 17, 12, 0, 0, 0, time.UTC)
	recent := now.Add(-10 * time.Second)
	old := now.Add(-time.Minute)

	events := []database.EventWithMeta{
		{CalendarEvent: models.CalendarEvent{ID: "fresh", UpdatedAt: recent}},
		{CalendarEvent: models.CalendarEvent{ID: "stale", UpdatedAt: old}},
		{CalendarEvent: models.CalendarEvent{ID: "retried-recently", UpdatedAt: old, SyncLastAttemptAt: &recent}},
		{CalendarEvent: models.CalendarEvent{ID: "retried-long-ago", UpdatedAt: recent, SyncLastAttemptAt: &old}},
	}

	got := filterSettledEvents(events, 30*time.Second, now)

	ids := make([]string, 0, len(got))
	for _, ev := range got {
		ids = append(ids, ev.ID)
	}
	assert.Equal(t, []string{"stale", "retried-long-ago"}, ids)
}

func TestTokenChanged(t *testing.T) {
	expiry := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	base := &oauth2.Token{AccessToken: "a", Expiry: expiry}

	tests := []struct {
		name   string
		before *oauth2.Token
		after  *oauth2.Token
		want   bool
	}{
		{"same token", base, &oauth2.Token{AccessToken: "a", Expiry: expiry}, false},
		{"new access token", base, &oauth2.Token{AccessToken: "b", Expiry: expiry}, true},
		{"new expiry", base, &oauth2.Token{AccessToken: "a", Expiry: expiry.Add(time.Hour)}, true},
		{"no current token", base, nil, false},
		{"no stored token", nil, base, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tokenChanged(tt.before, tt.after))
		})
	}
}
