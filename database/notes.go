package database

import (
	"database/sql"

	"ops-dashboard/models"

	"github.com/google/uuid"
)

// ==================== NOTE OPERATIONS ====================

const noteColumns = `id, user_id, title, content, folder_id, is_favorite, tags, project_id,
	created_at, updated_at`

func scanNote(row rowScanner) (*models.Note, error) {
	var note models.Note
	var folderID, projectID sql.NullString
	var tags string
	err := row.Scan(
		&note.ID, &note.UserID, &note.Title, &note.Content, &folderID, &note.IsFavorite,
		&tags, &projectID, &note.CreatedAt, &note.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	note.FolderID = folderID.String
	note.ProjectID = projectID.String
	note.Tags = models.SplitTags(tags)
	return &note, nil
}

// ListNotes returns the user's notes, most recently edited first.
func (r *Repository) ListNotes(userID string, q models.Query) ([]models.Note, error) {
	query := `SELECT ` + noteColumns + ` FROM notes WHERE user_id = ?`
	args := []any{userID}
	if q.FolderID != "" {
		query += ` AND folder_id = ?`
		args = append(args, q.FolderID)
	}
	if q.ProjectID != "" {
		query += ` AND project_id = ?`
		args = append(args, q.ProjectID)
	}
	if q.Favorites {
		query += ` AND is_favorite = 1`
	}
	query += ` ORDER BY updated_at DESC`

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	notes := make([]models.Note, 0)
	for rows.Next() {
		note, err := scanNote(rows)
		if err != nil {
			return nil, err
		}
		notes = append(notes, *note)
	}
	return notes, rows.Err()
}

func (r *Repository) GetNote(userID, id string) (*models.Note, error) {
	note, err := scanNote(r.db.QueryRow(
		`SELECT `+noteColumns+` FROM notes WHERE id = ? AND user_id = ?`, id, userID,
	))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return note, err
}

func (r *Repository) CreateNote(userID string, in models.NewNote) (*models.Note, error) {
	if err := r.checkOwned("folders", userID, in.FolderID); err != nil {
		return nil, err
	}
	if err := r.checkOwned("projects", userID, in.ProjectID); err != nil {
		return nil, err
	}

	now := r.now()
	note := &models.Note{
		ID:         uuid.New().String(),
		UserID:     userID,
		Title:      in.Title,
		Content:    in.Content,
		FolderID:   in.FolderID,
		IsFavorite: in.IsFavorite,
		Tags:       in.Tags,
		ProjectID:  in.ProjectID,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if note.Tags == nil {
		note.Tags = make([]string, 0)
	}

	_, err := r.db.Exec(`
		INSERT INTO notes (`+noteColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		note.ID, userID, note.Title, note.Content, nullString(note.FolderID), note.IsFavorite,
		models.JoinTags(note.Tags), nullString(note.ProjectID), note.CreatedAt, note.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	r.publish(models.TableNotes, models.ChangeInsert, userID, note.ID)
	return note, nil
}

func (r *Repository) UpdateNote(userID, id string, patch models.NotePatch) (*models.Note, error) {
	if patch.FolderID != nil {
		if err := r.checkOwned("folders", userID, *patch.FolderID); err != nil {
			return nil, err
		}
	}
	if patch.ProjectID != nil {
		if err := r.checkOwned("projects", userID, *patch.ProjectID); err != nil {
			return nil, err
		}
	}

	if err := r.updateColumns(r.db, "notes", userID, id, patch.Columns()); err != nil {
		return nil, err
	}
	r.publish(models.TableNotes, models.ChangeUpdate, userID, id)
	return r.GetNote(userID, id)
}

func (r *Repository) DeleteNote(userID, id string) error {
	deleted, err := r.deleteRow(r.db, "notes", userID, id)
	if err != nil || !deleted {
		return err
	}
	r.publish(models.TableNotes, models.ChangeDelete, userID, id)
	return nil
}
