package services

import (
	"strings"

	"ops-dashboard/models"
)

// FolderService handles business logic for note folders
type FolderService struct {
	repo FolderRepository
}

// NewFolderService creates a new folder service
func NewFolderService(repo FolderRepository) *FolderService {
	return &FolderService{repo: repo}
}

// List retrieves all folders for a user
func (fs *FolderService) List(userID string) ([]models.Folder, error) {
	return fs.repo.ListFolders(userID)
}

// Create creates a new folder for a user
func (fs *FolderService) Create(userID string, req models.NewFolder) (*models.Folder, error) {
	name := strings.TrimSpace(req.Name)

	existing, err := fs.repo.GetFolderByName(userID, name)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrFolderAlreadyExists
	}

	folder := &models.Folder{
		UserID: userID,
		Name:   name,
		Color:  req.Color,
	}
	if err := fs.repo.CreateFolder(folder); err != nil {
		return nil, err
	}

	return folder, nil
}

// Update renames or recolors a folder
func (fs *FolderService) Update(userID, folderID string, patch models.FolderPatch) (*models.Folder, error) {
	current, err := fs.repo.GetFolderByID(userID, folderID)
	if err != nil {
		return nil, err
	}
	if current == nil {
		return nil, ErrFolderNotFound
	}

	if patch.Name != nil {
		name := strings.TrimSpace(*patch.Name)
		patch.Name = &name

		if name != current.Name {
			clash, err := fs.repo.GetFolderByName(userID, name)
			if err != nil {
				return nil, err
			}
			if clash != nil {
				return nil, ErrFolderAlreadyExists
			}
		}
	}

	return fs.repo.UpdateFolder(userID, folderID, patch)
}

// Delete removes a folder. Its notes stay and lose the folder link.
func (fs *FolderService) Delete(userID, folderID string) error {
	return fs.repo.DeleteFolder(userID, folderID)
}
