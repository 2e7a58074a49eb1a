package database

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"ops-dashboard/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingPublisher struct {
	mu      sync.Mutex
	changes []models.Change
}

func (p *recordingPublisher) Publish(c models.Change) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.changes = append(p.changes, c)
}

func (p *recordingPublisher) tables() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.changes))
	for _, c := range p.changes {
		out = append(out, c.Table+":"+string(c.Type))
	}
	return out
}

func (p *recordingPublisher) reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.changes = nil
}

func setupTestRepo(t *testing.T) (*Repository, *recordingPublisher) {
	t.Helper()

	tmpDir, err := os.MkdirTemp("", "repo-test-*")
	require.NoError(t, err)

	db, err := New(filepath.Join(tmpDir, "test.db"))
	require.NoError(t, err)
	require.NoError(t, db.Migrate())

	t.Cleanup(func() {
		db.Close()
		os.RemoveAll(tmpDir)
	})

	repo := NewRepository(db)
	for _, id := range []string{"test-user", "other-user"} {
		require.NoError(t, repo.CreateUser(&models.User{
			ID:           id,
			Email:        id + "@example.com",
			PasswordHash: "x",
		}))
	}

	pub := &recordingPublisher{}
	repo.SetPublisher(pub)
	return repo, pub
}

func TestMigrateSeedsSectors(t *testing.T) {
	repo, _ := setupTestRepo(t)

	sectors, err := repo.ListSectors()
	require.NoError(t, err)
	assert.Equal(t, models.DefaultSectors, sectors)

	// Migrations are re-runnable.
	require.NoError(t, repo.db.Migrate())
	sectors, err = repo.ListSectors()
	require.NoError(t, err)
	assert.Len(t, sectors, len(models.DefaultSectors))
}

func TestUsers(t *testing.T) {
	repo, _ := setupTestRepo(t)

	t.Run("Email lookup is case insensitive", func(t *testing.T) {
		u, err := repo.GetUserByEmail("  TEST-USER@Example.com ")
		require.NoError(t, err)
		require.NotNil(t, u)
		assert.Equal(t, "test-user", u.ID)
	})

	t.Run("Unknown user returns nil", func(t *testing.T) {
		u, err := repo.GetUser("missing")
		require.NoError(t, err)
		assert.Nil(t, u)
	})

	t.Run("Duplicate email rejected", func(t *testing.T) {
		err := repo.CreateUser(&models.User{ID: "dup", Email: "test-user@example.com", PasswordHash: "x"})
		assert.Error(t, err)
	})

	t.Run("Token refresh keeps refresh token", func(t *testing.T) {
		expiry := time.Now().Add(time.Hour).UTC()
		require.NoError(t, repo.UpdateCalendarLink("test-user", "primary", "access-1", "refresh-1", expiry))
		require.NoError(t, repo.UpdateCalendarToken("test-user", "access-2", "", expiry))

		u, err := repo.GetUser("test-user")
		require.NoError(t, err)
		assert.Equal(t, "access-2", u.CalendarToken)
		assert.Equal(t, "refresh-1", u.CalendarRefresh)
		assert.True(t, u.CalendarConnected())
	})
}

func TestTasks(t *testing.T) {
	repo, pub := setupTestRepo(t)

	t.Run("Create applies defaults", func(t *testing.T) {
		task, err := repo.CreateTask("test-user", models.NewTask{Title: "Wire the relay"})
		require.NoError(t, err)

		assert.NotEmpty(t, task.ID)
		assert.Equal(t, models.TaskTodo, task.Status)
		assert.Equal(t, models.PriorityMedium, task.Priority)
		assert.True(t, task.IsVisible)
		assert.Empty(t, task.Tags)
		assert.Contains(t, pub.tables(), "tasks:INSERT")
	})

	t.Run("Update changes only patched fields", func(t *testing.T) {
		task, err := repo.CreateTask("test-user", models.NewTask{
			Title:    "Calibrate sensors",
			Priority: models.PriorityHigh,
			Tags:     []string{"lab"},
		})
		require.NoError(t, err)

		updated, err := repo.UpdateTask("test-user", task.ID, models.TaskPatch{
			Status: models.Ptr(models.TaskInProgress),
		})
		require.NoError(t, err)
		assert.Equal(t, models.TaskInProgress, updated.Status)
		assert.Equal(t, models.PriorityHigh, updated.Priority)
		assert.Equal(t, []string{"lab"}, updated.Tags)
		assert.Equal(t, "Calibrate sensors", updated.Title)
	})

	t.Run("Update of another user's task is not found", func(t *testing.T) {
		task, err := repo.CreateTask("test-user", models.NewTask{Title: "Private"})
		require.NoError(t, err)

		_, err = repo.UpdateTask("other-user", task.ID, models.TaskPatch{Title: models.Ptr("stolen")})
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("Foreign project rejected", func(t *testing.T) {
		project, err := repo.CreateProject("other-user", models.NewProject{Name: "Theirs"})
		require.NoError(t, err)

		_, err = repo.CreateTask("test-user", models.NewTask{Title: "Sneaky", ProjectID: project.ID})
		assert.ErrorIs(t, err, ErrInvalidReference)
	})

	t.Run("Delete is idempotent", func(t *testing.T) {
		task, err := repo.CreateTask("test-user", models.NewTask{Title: "Disposable"})
		require.NoError(t, err)

		require.NoError(t, repo.DeleteTask("test-user", task.ID))
		pub.reset()
		require.NoError(t, repo.DeleteTask("test-user", task.ID))
		assert.Empty(t, pub.tables())

		got, err := repo.GetTask("test-user", task.ID)
		require.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("Inbox lists tasks without a project", func(t *testing.T) {
		project, err := repo.CreateProject("test-user", models.NewProject{Name: "Orbit"})
		require.NoError(t, err)
		_, err = repo.CreateTask("test-user", models.NewTask{Title: "In project", ProjectID: project.ID})
		require.NoError(t, err)

		inbox, err := repo.ListTasks("test-user", models.Query{Inbox: true})
		require.NoError(t, err)
		for _, task := range inbox {
			assert.Empty(t, task.ProjectID)
		}

		scoped, err := repo.ListTasks("test-user", models.Query{ProjectID: project.ID})
		require.NoError(t, err)
		require.Len(t, scoped, 1)
		assert.Equal(t, "In project", scoped[0].Title)
	})
}

func TestProjectCounters(t *testing.T) {
	repo, pub := setupTestRepo(t)

	project, err := repo.CreateProject("test-user", models.NewProject{Name: "Helios"})
	require.NoError(t, err)
	assert.Equal(t, models.DefaultTechnicalID, project.TechnicalID)
	assert.Equal(t, models.ProjectRunning, project.Status)

	a, err := repo.CreateTask("test-user", models.NewTask{Title: "A", ProjectID: project.ID})
	require.NoError(t, err)
	_, err = repo.CreateTask("test-user", models.NewTask{Title: "B", ProjectID: project.ID})
	require.NoError(t, err)

	_, err = repo.UpdateTask("test-user", a.ID, models.TaskPatch{Status: models.Ptr(models.TaskCompleted)})
	require.NoError(t, err)

	got, err := repo.GetProject("test-user", project.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, got.TotalTasks)
	assert.Equal(t, 1, got.CompletedTasks)
	assert.Equal(t, 0, got.Progress)

	// Moving a task to the inbox updates the old project.
	_, err = repo.UpdateTask("test-user", a.ID, models.TaskPatch{ProjectID: models.Ptr("")})
	require.NoError(t, err)
	got, err = repo.GetProject("test-user", project.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.TotalTasks)
	assert.Equal(t, 0, got.CompletedTasks)

	t.Run("Delete detaches tasks", func(t *testing.T) {
		pub.reset()
		require.NoError(t, repo.DeleteProject("test-user", project.ID))
		assert.Equal(t, []string{"projects:DELETE", "tasks:UPDATE", "notes:UPDATE"}, pub.tables())

		tasks, err := repo.ListTasks("test-user", models.Query{Inbox: true})
		require.NoError(t, err)
		assert.Len(t, tasks, 2)
	})
}

func TestTaskWriteRollsBackWhenCountersFail(t *testing.T) {
	repo, pub := setupTestRepo(t)

	project, err := repo.CreateProject("test-user", models.NewProject{Name: "Helios"})
	require.NoError(t, err)
	kept, err := repo.CreateTask("test-user", models.NewTask{Title: "Kept", ProjectID: project.ID})
	require.NoError(t, err)

	_, err = repo.db.Exec(`CREATE TRIGGER lock_counters BEFORE UPDATE ON projects
		BEGIN SELECT RAISE(ABORT, 'counters locked'); END`)
	require.NoError(t, err)
	pub.reset()

	tests := []struct {
		name string
		run  func() error
	}{
		{"create", func() error {
			_, err := repo.CreateTask("test-user", models.NewTask{Title: "Lost", ProjectID: project.ID})
			return err
		}},
		{"update", func() error {
			_, err := repo.UpdateTask("test-user", kept.ID, models.TaskPatch{Status: models.Ptr(models.TaskCompleted)})
			return err
		}},
		{"delete", func() error {
			return repo.DeleteTask("test-user", kept.ID)
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.ErrorContains(t, tt.run(), "counters locked")

			tasks, err := repo.ListTasks("test-user", models.Query{ProjectID: project.ID})
			require.NoError(t, err)
			require.Len(t, tasks, 1)
			assert.Equal(t, kept.ID, tasks[0].ID)
			assert.Equal(t, models.TaskTodo, tasks[0].Status)
			assert.Empty(t, pub.tables())
		})
	}

	got, err := repo.GetProject("test-user", project.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.TotalTasks)
	assert.Equal(t, 0, got.CompletedTasks)
}

func TestNotesAndFolders(t *testing.T) {
	repo, _ := setupTestRepo(t)

	folder := &models.Folder{UserID: "test-user", Name: "Field Reports"}
	require.NoError(t, repo.CreateFolder(folder))

	n1, err := repo.CreateNote("test-user", models.NewNote{Title: "Day 1", FolderID: folder.ID})
	require.NoError(t, err)
	_, err = repo.CreateNote("test-user", models.NewNote{Title: "Loose", IsFavorite: true})
	require.NoError(t, err)

	inFolder, err := repo.ListNotes("test-user", models.Query{FolderID: folder.ID})
	require.NoError(t, err)
	require.Len(t, inFolder, 1)
	assert.Equal(t, n1.ID, inFolder[0].ID)

	favorites, err := repo.ListNotes("test-user", models.Query{Favorites: true})
	require.NoError(t, err)
	require.Len(t, favorites, 1)
	assert.Equal(t, "Loose", favorites[0].Title)

	t.Run("Deleting folder detaches notes", func(t *testing.T) {
		require.NoError(t, repo.DeleteFolder("test-user", folder.ID))
		got, err := repo.GetNote("test-user", n1.ID)
		require.NoError(t, err)
		assert.Empty(t, got.FolderID)
	})

	t.Run("Foreign folder rejected", func(t *testing.T) {
		theirs := &models.Folder{UserID: "other-user", Name: "Theirs"}
		require.NoError(t, repo.CreateFolder(theirs))
		_, err := repo.UpdateNote("test-user", n1.ID, models.NotePatch{FolderID: models.Ptr(theirs.ID)})
		assert.ErrorIs(t, err, ErrInvalidReference)
	})
}

func TestLogistics(t *testing.T) {
	repo, _ := setupTestRepo(t)

	item, err := repo.CreateLogisticsItem("test-user", models.NewLogisticsItem{
		Name:     "Coffee beans",
		SectorID: "sec-01",
	})
	require.NoError(t, err)
	assert.Equal(t, models.LogisticPending, item.Status)
	assert.Equal(t, 1, item.Qty)
	assert.Equal(t, models.ItemSupply, item.Kind)

	_, err = repo.CreateLogisticsItem("test-user", models.NewLogisticsItem{Name: "Ghost", SectorID: "sec-99"})
	assert.ErrorIs(t, err, ErrInvalidReference)

	updated, err := repo.UpdateLogisticsItem("test-user", item.ID, models.LogisticsItemPatch{
		Status: models.Ptr(item.Status.Toggled()),
	})
	require.NoError(t, err)
	assert.Equal(t, models.LogisticAcquired, updated.Status)

	m, err := repo.CreateManifestItem("test-user", models.NewManifestItem{Name: "Tent", WeightKg: 2.4})
	require.NoError(t, err)
	m2, err := repo.UpdateManifestItem("test-user", m.ID, models.ManifestItemPatch{IsDeManifested: models.Ptr(true)})
	require.NoError(t, err)
	assert.True(t, m2.IsDeManifested)
	assert.InDelta(t, 2.4, m2.WeightKg, 0.001)

	require.NoError(t, repo.DeleteManifestItem("test-user", m.ID))
	items, err := repo.ListManifestItems("test-user")
	require.NoError(t, err)
	assert.Empty(t, items)
}
