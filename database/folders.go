package database

import (
	"database/sql"

	"ops-dashboard/models"

	"github.com/google/uuid"
)

// ==================== FOLDER OPERATIONS ====================

func scanFolder(row rowScanner) (*models.Folder, error) {
	var f models.Folder
	if err := row.Scan(&f.ID, &f.UserID, &f.Name, &f.Color, &f.CreatedAt, &f.UpdatedAt); err != nil {
		return nil, err
	}
	return &f, nil
}

func (r *Repository) ListFolders(userID string) ([]models.Folder, error) {
	rows, err := r.db.Query(`
		SELECT id, user_id, name, color, created_at, updated_at
		FROM folders
		WHERE user_id = ?
		ORDER BY created_at ASC
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	// Initialize with empty slice to avoid returning nil
	folders := make([]models.Folder, 0)
	for rows.Next() {
		f, err := scanFolder(rows)
		if err != nil {
			return nil, err
		}
		folders = append(folders, *f)
	}
	return folders, rows.Err()
}

func (r *Repository) CreateFolder(folder *models.Folder) error {
	if folder.ID == "" {
		folder.ID = uuid.New().String()
	}
	now := r.now()
	folder.CreatedAt = now
	folder.UpdatedAt = now
	_, err := r.db.Exec(`
		INSERT INTO folders (id, user_id, name, color, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, folder.ID, folder.UserID, folder.Name, folder.Color, folder.CreatedAt, folder.UpdatedAt)
	if err != nil {
		return err
	}
	r.publish(models.TableFolders, models.ChangeInsert, folder.UserID, folder.ID)
	return nil
}

func (r *Repository) UpdateFolder(userID, id string, patch models.FolderPatch) (*models.Folder, error) {
	if err := r.updateColumns(r.db, "folders", userID, id, patch.Columns()); err != nil {
		return nil, err
	}
	r.publish(models.TableFolders, models.ChangeUpdate, userID, id)
	return r.GetFolderByID(userID, id)
}

// DeleteFolder removes the folder; its notes fall back to no folder.
func (r *Repository) DeleteFolder(userID, id string) error {
	deleted, err := r.deleteRow(r.db, "folders", userID, id)
	if err != nil || !deleted {
		return err
	}
	r.publish(models.TableFolders, models.ChangeDelete, userID, id)
	r.publish(models.TableNotes, models.ChangeUpdate, userID, "")
	return nil
}

func (r *Repository) GetFolderByName(userID, name string) (*models.Folder, error) {
	f, err := scanFolder(r.db.QueryRow(`
		SELECT id, user_id, name, color, created_at, updated_at
		FROM folders
		WHERE user_id = ? AND name = ?
	`, userID, name))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return f, err
}

func (r *Repository) GetFolderByID(userID, id string) (*models.Folder, error) {
	f, err := scanFolder(r.db.QueryRow(`
		SELECT id, user_id, name, color, created_at, updated_at
		FROM folders
		WHERE id = ? AND user_id = ?
	`, id, userID))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return f, err
}
