package services

import (
	"context"
	"time"

	"ops-dashboard/models"

	"github.com/stretchr/testify/mock"
)

// ==================== MOCKS ====================

type MockAuthRepository struct {
	mock.Mock
}

var _ AuthRepository = (*MockAuthRepository)(nil)

func (m *MockAuthRepository) CreateUser(user *models.User) error {
	args := m.Called(user)
	return args.Error(0)
}

func (m *MockAuthRepository) GetUser(userID string) (*models.User, error) {
	args := m.Called(userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockAuthRepository) GetUserByEmail(email string) (*models.User, error) {
	args := m.Called(email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockAuthRepository) TouchLogin(userID string) error {
	args := m.Called(userID)
	return args.Error(0)
}

type MockSessionStore struct {
	mock.Mock
}

var _ SessionStore = (*MockSessionStore)(nil)

func (m *MockSessionStore) Create(userID, email string) (*models.Session, error) {
	args := m.Called(userID, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Session), args.Error(1)
}

func (m *MockSessionStore) Get(sessionID string) (*models.Session, error) {
	args := m.Called(sessionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Session), args.Error(1)
}

func (m *MockSessionStore) Delete(sessionID string) error {
	args := m.Called(sessionID)
	return args.Error(0)
}

type MockFolderRepository struct {
	mock.Mock
}

var _ FolderRepository = (*MockFolderRepository)(nil)

func (m *MockFolderRepository) ListFolders(userID string) ([]models.Folder, error) {
	args := m.Called(userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Folder), args.Error(1)
}

func (m *MockFolderRepository) GetFolderByName(userID, name string) (*models.Folder, error) {
	args := m.Called(userID, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Folder), args.Error(1)
}

func (m *MockFolderRepository) GetFolderByID(userID, id string) (*models.Folder, error) {
	args := m.Called(userID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Folder), args.Error(1)
}

func (m *MockFolderRepository) CreateFolder(folder *models.Folder) error {
	args := m.Called(folder)
	return args.Error(0)
}

func (m *MockFolderRepository) UpdateFolder(userID, id string, patch models.FolderPatch) (*models.Folder, error) {
	args := m.Called(userID, id, patch)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Folder), args.Error(1)
}

func (m *MockFolderRepository) DeleteFolder(userID, id string) error {
	args := m.Called(userID, id)
	return args.Error(0)
}

type MockSyncRepository struct {
	mock.Mock
}

var _ SyncRepository = (*MockSyncRepository)(nil)

func (m *MockSyncRepository) GetUser(userID string) (*models.User, error) {
	args := m.Called(userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockSyncRepository) UpdateCalendarLink(userID, calendarID, accessToken, refreshToken string, expiry time.Time) error {
	args := m.Called(userID, calendarID, accessToken, refreshToken, expiry)
	return args.Error(0)
}

func (m *MockSyncRepository) MarkUserEventsPending(userID string) (int64, error) {
	args := m.Called(userID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockSyncRepository) GetFailedSyncEvents(userID string, limit int) ([]models.CalendarEvent, error) {
	args := m.Called(userID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.CalendarEvent), args.Error(1)
}

func (m *MockSyncRepository) CountPendingSyncEvents(userID string) (int, error) {
	args := m.Called(userID)
	return args.Int(0), args.Error(1)
}

func (m *MockSyncRepository) RetrySyncEvent(userID, eventID string) error {
	args := m.Called(userID, eventID)
	return args.Error(0)
}

type MockSyncWorker struct {
	mock.Mock
}

var _ SyncWorker = (*MockSyncWorker)(nil)

func (m *MockSyncWorker) Trigger() {
	m.Called()
}

func (m *MockSyncWorker) ImportFromCalendar(ctx context.Context, userID string) (int, error) {
	args := m.Called(ctx, userID)
	return args.Int(0), args.Error(1)
}
