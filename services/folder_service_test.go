package services

import (
	"testing"

	"ops-dashboard/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestFolderService_Create(t *testing.T) {
	t.Run("Trims and creates", func(t *testing.T) {
		repo := new(MockFolderRepository)
		fs := NewFolderService(repo)

		repo.On("GetFolderByName", "u1", "Field Reports").Return(nil, nil)
		repo.On("CreateFolder", mock.MatchedBy(func(f *models.Folder) bool {
			return f.Name == "Field Reports" && f.UserID == "u1"
		})).Return(nil)

		folder, err := fs.Create("u1", models.NewFolder{Name: "  Field Reports "})

		require.NoError(t, err)
		assert.Equal(t, "Field Reports", folder.Name)
		repo.AssertExpectations(t)
	})

	t.Run("Duplicate name", func(t *testing.T) {
		repo := new(MockFolderRepository)
		fs := NewFolderService(repo)

		repo.On("GetFolderByName", "u1", "Ops").Return(&models.Folder{ID: "f1", Name: "Ops"}, nil)

		_, err := fs.Create("u1", models.NewFolder{Name: "Ops"})

		assert.ErrorIs(t, err, ErrFolderAlreadyExists)
		repo.AssertNotCalled(t, "CreateFolder", mock.Anything)
	})
}

func TestFolderService_Update(t *testing.T) {
	t.Run("Missing folder", func(t *testing.T) {
		repo := new(MockFolderRepository)
		fs := NewFolderService(repo)

		repo.On("GetFolderByID", "u1", "f9").Return(nil, nil)

		_, err := fs.Update("u1", "f9", models.FolderPatch{Name: models.Ptr("New")})
		assert.ErrorIs(t, err, ErrFolderNotFound)
	})

	t.Run("Rename clash", func(t *testing.T) {
		repo := new(MockFolderRepository)
		fs := NewFolderService(repo)

		repo.On("GetFolderByID", "u1", "f1").Return(&models.Folder{ID: "f1", Name: "Ops"}, nil)
		repo.On("GetFolderByName", "u1", "Intel").Return(&models.Folder{ID: "f2", Name: "Intel"}, nil)

		_, err := fs.Update("u1", "f1", models.FolderPatch{Name: models.Ptr("Intel")})
		assert.ErrorIs(t, err, ErrFolderAlreadyExists)
	})

	t.Run("Recolor keeps name", func(t *testing.T) {
		repo := new(MockFolderRepository)
		fs := NewFolderService(repo)

		patch := models.FolderPatch{Color: models.Ptr("#ff0055")}
		repo.On("GetFolderByID", "u1", "f1").Return(&models.Folder{ID: "f1", Name: "Ops"}, nil)
		repo.On("UpdateFolder", "u1", "f1", patch).Return(&models.Folder{ID: "f1", Name: "Ops", Color: "#ff0055"}, nil)

		folder, err := fs.Update("u1", "f1", patch)
		require.NoError(t, err)
		assert.Equal(t, "#ff0055", folder.Color)
		repo.AssertNotCalled(t, "GetFolderByName", mock.Anything, mock.Anything)
	})
}
