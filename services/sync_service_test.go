package services

import (
	"io"
	"log/slog"
	"testing"

	"ops-dashboard/database"
	"ops-dashboard/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestSyncService_Status(t *testing.T) {
	repo := new(MockSyncRepository)
	worker := new(MockSyncWorker)
	ss := NewSyncService(repo, worker, discardLogger())

	repo.On("GetUser", "u1").Return(&models.User{ID: "u1", CalendarID: "primary", CalendarRefresh: "r"}, nil)
	repo.On("GetFailedSyncEvents", "u1", 50).Return([]models.CalendarEvent{{ID: "e1"}}, nil)
	repo.On("CountPendingSyncEvents", "u1").Return(3, nil)

	status, err := ss.Status("u1")

	require.NoError(t, err)
	assert.True(t, status.Enabled)
	assert.True(t, status.Connected)
	assert.Equal(t, "primary", status.CalendarID)
	assert.Equal(t, 3, status.PendingCount)
	assert.Equal(t, 1, status.FailedCount)
}

func TestSyncService_Retry(t *testing.T) {
	t.Run("Triggers worker", func(t *testing.T) {
		repo := new(MockSyncRepository)
		worker := new(MockSyncWorker)
		ss := NewSyncService(repo, worker, discardLogger())

		repo.On("RetrySyncEvent", "u1", "e1").Return(nil)
		worker.On("Trigger").Return()

		require.NoError(t, ss.Retry("u1", "e1"))
		worker.AssertCalled(t, "Trigger")
	})

	t.Run("Unknown event", func(t *testing.T) {
		repo := new(MockSyncRepository)
		ss := NewSyncService(repo, nil, discardLogger())

		repo.On("RetrySyncEvent", "u1", "e9").Return(database.ErrNotFound)

		assert.ErrorIs(t, ss.Retry("u1", "e9"), ErrEventNotFound)
	})
}

func TestSyncService_ConnectCalendar(t *testing.T) {
	t.Run("Disabled server", func(t *testing.T) {
		ss := NewSyncService(new(MockSyncRepository), nil, discardLogger())

		_, err := ss.ConnectCalendar("u1", models.ConnectCalendarRequest{CalendarID: "primary", AccessToken: "a"})
		assert.ErrorIs(t, err, ErrCalendarUnavailable)
	})

	t.Run("Queues events", func(t *testing.T) {
		repo := new(MockSyncRepository)
		worker := new(MockSyncWorker)
		ss := NewSyncService(repo, worker, discardLogger())

		repo.On("UpdateCalendarLink", "u1", "primary", "a", "r", mock.Anything).Return(nil)
		repo.On("MarkUserEventsPending", "u1").Return(int64(4), nil)
		repo.On("GetUser", "u1").Return(&models.User{ID: "u1", CalendarID: "primary", CalendarToken: "a"}, nil)
		repo.On("GetFailedSyncEvents", "u1", 50).Return([]models.CalendarEvent{}, nil)
		repo.On("CountPendingSyncEvents", "u1").Return(4, nil)
		worker.On("Trigger").Return()

		status, err := ss.ConnectCalendar("u1", models.ConnectCalendarRequest{
			CalendarID: "primary", AccessToken: "a", RefreshToken: "r", ExpiresIn: 3600,
		})

		require.NoError(t, err)
		assert.True(t, status.Connected)
		assert.Equal(t, 4, status.PendingCount)
		worker.AssertNotCalled(t, "ImportFromCalendar", mock.Anything, mock.Anything)
		repo.AssertExpectations(t)
	})
}
