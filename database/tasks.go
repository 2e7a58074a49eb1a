package database

import (
	"database/sql"

	"ops-dashboard/models"

	"github.com/google/uuid"
)

// ==================== TASK OPERATIONS ====================

const taskColumns = `id, user_id, title, description, status, priority, project_id, due_date,
	is_visible, tags, created_at, updated_at`

func scanTask(row rowScanner) (*models.Task, error) {
	var task models.Task
	var status, priority, tags string
	var projectID sql.NullString
	var dueDate sql.NullTime
	err := row.Scan(
		&task.ID, &task.UserID, &task.Title, &task.Description, &status, &priority,
		&projectID, &dueDate, &task.IsVisible, &tags, &task.CreatedAt, &task.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	task.Status = models.TaskStatus(status)
	task.Priority = models.Priority(priority)
	task.ProjectID = projectID.String
	if dueDate.Valid {
		due := dueDate.Time
		task.DueDate = &due
	}
	task.Tags = models.SplitTags(tags)
	return &task, nil
}

// ListTasks returns the user's tasks, newest first. q.ProjectID scopes to one
// project, q.Inbox to tasks without a project.
func (r *Repository) ListTasks(userID string, q models.Query) ([]models.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE user_id = ?`
	args := []any{userID}
	switch {
	case q.ProjectID != "":
		query += ` AND project_id = ?`
		args = append(args, q.ProjectID)
	case q.Inbox:
		query += ` AND project_id IS NULL`
	}
	query += ` ORDER BY created_at DESC`

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tasks := make([]models.Task, 0)
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, *task)
	}
	return tasks, rows.Err()
}

func (r *Repository) GetTask(userID, id string) (*models.Task, error) {
	task, err := scanTask(r.db.QueryRow(
		`SELECT `+taskColumns+` FROM tasks WHERE id = ? AND user_id = ?`, id, userID,
	))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return task, err
}

func (r *Repository) CreateTask(userID string, in models.NewTask) (*models.Task, error) {
	if err := r.checkOwned("projects", userID, in.ProjectID); err != nil {
		return nil, err
	}

	now := r.now()
	task := &models.Task{
		ID:          uuid.New().String(),
		UserID:      userID,
		Title:       in.Title,
		Description: in.Description,
		Status:      in.Status,
		Priority:    in.Priority,
		ProjectID:   in.ProjectID,
		DueDate:     in.DueDate,
		IsVisible:   true,
		Tags:        in.Tags,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if task.Status == "" {
		task.Status = models.TaskTodo
	}
	if task.Priority == "" {
		task.Priority = models.PriorityMedium
	}
	if task.Tags == nil {
		task.Tags = make([]string, 0)
	}

	var projects []string
	err := r.inTx(func(tx *sql.Tx) error {
		_, err := tx.Exec(`
			INSERT INTO tasks (`+taskColumns+`)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`,
			task.ID, userID, task.Title, task.Description, string(task.Status), string(task.Priority),
			nullString(task.ProjectID), nullTime(task.DueDate), task.IsVisible,
			models.JoinTags(task.Tags), task.CreatedAt, task.UpdatedAt,
		)
		if err != nil {
			return err
		}
		projects, err = r.refreshProjectCounters(tx, userID, task.ProjectID)
		return err
	})
	if err != nil {
		return nil, err
	}

	r.publish(models.TableTasks, models.ChangeInsert, userID, task.ID)
	r.publishProjects(userID, projects)
	return task, nil
}

func (r *Repository) UpdateTask(userID, id string, patch models.TaskPatch) (*models.Task, error) {
	if patch.ProjectID != nil {
		if err := r.checkOwned("projects", userID, *patch.ProjectID); err != nil {
			return nil, err
		}
	}

	before, err := r.GetTask(userID, id)
	if err != nil {
		return nil, err
	}
	if before == nil {
		return nil, ErrNotFound
	}

	var projects []string
	err = r.inTx(func(tx *sql.Tx) error {
		if err := r.updateColumns(tx, "tasks", userID, id, patch.Columns()); err != nil {
			return err
		}
		if patch.Status == nil && patch.ProjectID == nil {
			return nil
		}
		targets := []string{before.ProjectID}
		if patch.ProjectID != nil {
			targets = append(targets, *patch.ProjectID)
		}
		var err error
		projects, err = r.refreshProjectCounters(tx, userID, targets...)
		return err
	})
	if err != nil {
		return nil, err
	}

	r.publish(models.TableTasks, models.ChangeUpdate, userID, id)
	r.publishProjects(userID, projects)
	return r.GetTask(userID, id)
}

// DeleteTask is idempotent: deleting an unknown id succeeds without a change
// notification.
func (r *Repository) DeleteTask(userID, id string) error {
	before, err := r.GetTask(userID, id)
	if err != nil {
		return err
	}
	if before == nil {
		return nil
	}

	var deleted bool
	var projects []string
	err = r.inTx(func(tx *sql.Tx) error {
		var err error
		if deleted, err = r.deleteRow(tx, "tasks", userID, id); err != nil || !deleted {
			return err
		}
		projects, err = r.refreshProjectCounters(tx, userID, before.ProjectID)
		return err
	})
	if err != nil || !deleted {
		return err
	}

	r.publish(models.TableTasks, models.ChangeDelete, userID, id)
	r.publishProjects(userID, projects)
	return nil
}
