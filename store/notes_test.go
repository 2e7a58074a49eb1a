package store

import (
	"context"
	"testing"
	"time"

	"ops-dashboard/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type folderList []models.Folder

func (f folderList) Select(context.Context, models.Query) ([]models.Folder, error) {
	return f, nil
}

func newNotes(t *testing.T, folders FolderSource, rows ...models.Note) (*NoteStore, *fakeRemote[models.Note, models.NewNote, models.NotePatch]) {
	t.Helper()
	remote := newFakeRemote[models.Note, models.NewNote, models.NotePatch](
		func(n models.Note) string { return n.ID },
		func(id string, n models.NewNote) models.Note {
			return models.Note{ID: id, Title: n.Title, Content: n.Content, UpdatedAt: base.Add(time.Hour)}
		},
		rows...)
	s := NewNoteStore(remote, folders, WithLogger(quietLogger()), WithClock(func() time.Time { return base }))
	require.NoError(t, s.Fetch(context.Background()))
	return s, remote
}

func TestNoteStoreOrder(t *testing.T) {
	s, _ := newNotes(t, nil,
		models.Note{ID: "older", UpdatedAt: base},
		models.Note{ID: "newer", UpdatedAt: base.Add(time.Minute)},
	)
	assert.Equal(t, []string{"newer", "older"}, ids(s.Items(), func(n models.Note) string { return n.ID }))
}

func TestNoteSession(t *testing.T) {
	s, _ := newNotes(t, nil, models.Note{ID: "n1", Content: "alpha beta", UpdatedAt: base})

	session := s.Session()
	assert.Equal(t, DefaultTargetWords, session.TargetWords)
	assert.Equal(t, base, session.StartedAt)

	require.ErrorIs(t, s.SetActive("missing"), ErrNotFound)
	require.NoError(t, s.SetActive("n1"))
	assert.Equal(t, "alpha beta", s.Buffer())
	assert.Equal(t, 2, s.Session().CurrentWords)

	tests := []struct {
		content string
		words   int
		chars   int
	}{
		{"", 0, 0},
		{"one", 1, 3},
		{"  spaced   out\nlines\t", 3, 21},
		{"héllo wörld", 2, 11},
	}
	for _, tt := range tests {
		s.UpdateBuffer(tt.content)
		got := s.Session()
		assert.Equal(t, tt.words, got.CurrentWords, tt.content)
		assert.Equal(t, tt.chars, got.CurrentChars, tt.content)
	}

	s.SetTargetWords(500)
	s.SetTargetWords(-1)
	assert.Equal(t, 500, s.Session().TargetWords)

	s.ResetSession()
	got := s.Session()
	assert.Equal(t, DefaultTargetWords, got.TargetWords)
	assert.Zero(t, got.CurrentWords)
	assert.Zero(t, got.CurrentChars)
}

func TestSyncBuffer(t *testing.T) {
	t.Run("no active note", func(t *testing.T) {
		s, remote := newNotes(t, nil, models.Note{ID: "n1", UpdatedAt: base})
		s.UpdateBuffer("draft")
		require.NoError(t, s.SyncBuffer(context.Background()))
		assert.Empty(t, remote.rows[0].Content)
	})

	t.Run("pushes buffer", func(t *testing.T) {
		s, remote := newNotes(t, nil, models.Note{ID: "n1", Content: "old", UpdatedAt: base})
		require.NoError(t, s.SetActive("n1"))
		s.UpdateBuffer("new words")

		require.NoError(t, s.SyncBuffer(context.Background()))
		assert.Equal(t, "new words", remote.rows[0].Content)
		note, ok := s.Active()
		require.True(t, ok)
		assert.Equal(t, "new words", note.Content)
		assert.False(t, s.Syncing())
	})

	t.Run("failure keeps buffer", func(t *testing.T) {
		s, remote := newNotes(t, nil, models.Note{ID: "n1", Content: "old", UpdatedAt: base})
		require.NoError(t, s.SetActive("n1"))
		s.UpdateBuffer("unsaved")
		remote.failOn("update", errRemote)

		require.ErrorIs(t, s.SyncBuffer(context.Background()), errRemote)
		assert.Equal(t, "unsaved", s.Buffer())
		note, _ := s.Get("n1")
		assert.Equal(t, "old", note.Content)
		assert.Equal(t, errRemote.Error(), s.Err())
		assert.False(t, s.Syncing())
	})
}

func TestNoteDeleteClosesActive(t *testing.T) {
	s, _ := newNotes(t, nil, models.Note{ID: "n1", Content: "text", UpdatedAt: base})
	require.NoError(t, s.SetActive("n1"))

	require.NoError(t, s.Delete(context.Background(), "n1"))
	_, ok := s.Active()
	assert.False(t, ok)
	assert.Empty(t, s.Buffer())
}

func TestNoteFilters(t *testing.T) {
	folders := folderList{{ID: "f1", Name: "Work"}}
	s, _ := newNotes(t, folders,
		models.Note{ID: "fav", IsFavorite: true, FolderID: "f1", UpdatedAt: base},
		models.Note{ID: "loose", UpdatedAt: base.Add(time.Minute)},
	)

	noteIDs := func(ns []models.Note) []string { return ids(ns, func(n models.Note) string { return n.ID }) }
	assert.Equal(t, []string{"fav"}, noteIDs(s.Favorites()))
	assert.Equal(t, []string{"fav"}, noteIDs(s.InFolder("f1")))
	assert.Equal(t, []string{"loose"}, noteIDs(s.InFolder("")))

	assert.Empty(t, s.Folders())
	require.NoError(t, s.FetchFolders(context.Background()))
	assert.Equal(t, []models.Folder(folders), s.Folders())
}
