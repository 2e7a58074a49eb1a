package database

import (
	"database/sql"
	"fmt"

	"ops-dashboard/models"

	"github.com/google/uuid"
)

// ==================== PROJECT OPERATIONS ====================

const projectColumns = `id, user_id, technical_id, name, description, status, progress,
	total_tasks, completed_tasks, tags, color_accent, created_at, updated_at`

func scanProject(row rowScanner) (*models.Project, error) {
	var p models.Project
	var status, tags string
	err := row.Scan(
		&p.ID, &p.UserID, &p.TechnicalID, &p.Name, &p.Description, &status, &p.Progress,
		&p.TotalTasks, &p.CompletedTasks, &tags, &p.Color, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	p.Status = models.ProjectStatus(status)
	p.Tags = models.SplitTags(tags)
	return &p, nil
}

func (r *Repository) ListProjects(userID string) ([]models.Project, error) {
	rows, err := r.db.Query(
		`SELECT `+projectColumns+` FROM projects WHERE user_id = ? ORDER BY created_at DESC`, userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	projects := make([]models.Project, 0)
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, err
		}
		projects = append(projects, *p)
	}
	return projects, rows.Err()
}

func (r *Repository) GetProject(userID, id string) (*models.Project, error) {
	p, err := scanProject(r.db.QueryRow(
		`SELECT `+projectColumns+` FROM projects WHERE id = ? AND user_id = ?`, id, userID,
	))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return p, err
}

func (r *Repository) CreateProject(userID string, in models.NewProject) (*models.Project, error) {
	now := r.now()
	p := &models.Project{
		ID:          uuid.New().String(),
		UserID:      userID,
		TechnicalID: in.TechnicalID,
		Name:        in.Name,
		Description: in.Description,
		Status:      in.Status,
		Progress:    in.Progress,
		Tags:        in.Tags,
		Color:       in.Color,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if p.TechnicalID == "" {
		p.TechnicalID = models.DefaultTechnicalID
	}
	if p.Status == "" {
		p.Status = models.ProjectRunning
	}
	if p.Tags == nil {
		p.Tags = make([]string, 0)
	}

	_, err := r.db.Exec(`
		INSERT INTO projects (`+projectColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, 0, 0, ?, ?, ?, ?)
	`,
		p.ID, userID, p.TechnicalID, p.Name, p.Description, string(p.Status), p.Progress,
		models.JoinTags(p.Tags), p.Color, p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	r.publish(models.TableProjects, models.ChangeInsert, userID, p.ID)
	return p, nil
}

func (r *Repository) UpdateProject(userID, id string, patch models.ProjectPatch) (*models.Project, error) {
	if err := r.updateColumns(r.db, "projects", userID, id, patch.Columns()); err != nil {
		return nil, err
	}
	r.publish(models.TableProjects, models.ChangeUpdate, userID, id)
	return r.GetProject(userID, id)
}

// DeleteProject removes the project. Linked tasks and notes are detached by
// the foreign keys, so their tables are notified too.
func (r *Repository) DeleteProject(userID, id string) error {
	deleted, err := r.deleteRow(r.db, "projects", userID, id)
	if err != nil || !deleted {
		return err
	}
	r.publish(models.TableProjects, models.ChangeDelete, userID, id)
	r.publish(models.TableTasks, models.ChangeUpdate, userID, "")
	r.publish(models.TableNotes, models.ChangeUpdate, userID, "")
	return nil
}

// refreshProjectCounters recomputes total/completed task counts for the given
// projects and returns the ids of the rows it changed. Empty ids are skipped.
func (r *Repository) refreshProjectCounters(q execer, userID string, projectIDs ...string) ([]string, error) {
	seen := make(map[string]bool)
	var changed []string
	for _, id := range projectIDs {
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true

		res, err := q.Exec(`
			UPDATE projects SET
				total_tasks = (SELECT COUNT(*) FROM tasks WHERE project_id = projects.id),
				completed_tasks = (SELECT COUNT(*) FROM tasks WHERE project_id = projects.id AND status = ?),
				updated_at = ?
			WHERE id = ? AND user_id = ?
		`, string(models.TaskCompleted), r.now(), id, userID)
		if err != nil {
			return nil, fmt.Errorf("refresh counters of project %s: %w", id, err)
		}
		if n, _ := res.RowsAffected(); n > 0 {
			changed = append(changed, id)
		}
	}
	return changed, nil
}

func (r *Repository) publishProjects(userID string, ids []string) {
	for _, id := range ids {
		r.publish(models.TableProjects, models.ChangeUpdate, userID, id)
	}
}
