package store

import (
	"context"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"ops-dashboard/models"
)

// DefaultTargetWords is the word goal of a new writing session.
const DefaultTargetWords = 1500

type NoteRemote = Remote[models.Note, models.NewNote, models.NotePatch]

type FolderSource interface {
	Select(ctx context.Context, q models.Query) ([]models.Folder, error)
}

// WritingSession tracks progress on the active note.
type WritingSession struct {
	StartedAt    time.Time `json:"started_at"`
	TargetWords  int       `json:"target_words"`
	CurrentWords int       `json:"current_words"`
	CurrentChars int       `json:"current_chars"`
}

// NoteStore orders notes by last update and holds the editing buffer of the
// active note.
type NoteStore struct {
	*Collection[models.Note, models.NewNote, models.NotePatch]

	folderSource FolderSource
	now          func() time.Time

	edMu     sync.RWMutex
	activeID string
	buffer   string
	session  WritingSession
	syncing  bool
	folders  []models.Folder
}

func NewNoteStore(remote NoteRemote, folders FolderSource, opts ...Option) *NoteStore {
	o := buildOptions(opts)
	s := &NoteStore{
		Collection: NewCollection(models.TableNotes, remote,
			func(n models.Note) string { return n.ID },
			func(a, b models.Note) bool { return a.UpdatedAt.After(b.UpdatedAt) },
			opts...),
		folderSource: folders,
		now:          o.now,
	}
	s.session = s.newSession()
	return s
}

func (s *NoteStore) newSession() WritingSession {
	return WritingSession{StartedAt: s.now(), TargetWords: DefaultTargetWords}
}

func countWords(content string) int {
	return len(strings.Fields(content))
}

// SetActive opens a note for editing and loads its content into the buffer.
func (s *NoteStore) SetActive(id string) error {
	note, ok := s.Get(id)
	if !ok {
		return ErrNotFound
	}

	s.edMu.Lock()
	defer s.edMu.Unlock()
	s.activeID = id
	s.buffer = note.Content
	s.session.CurrentWords = countWords(note.Content)
	s.session.CurrentChars = utf8.RuneCountInString(note.Content)
	return nil
}

// Active returns the note being edited.
func (s *NoteStore) Active() (models.Note, bool) {
	s.edMu.RLock()
	id := s.activeID
	s.edMu.RUnlock()

	if id == "" {
		return models.Note{}, false
	}
	return s.Get(id)
}

// UpdateBuffer replaces the editing buffer and recounts the session.
func (s *NoteStore) UpdateBuffer(content string) {
	s.edMu.Lock()
	defer s.edMu.Unlock()
	s.buffer = content
	s.session.CurrentWords = countWords(content)
	s.session.CurrentChars = utf8.RuneCountInString(content)
}

func (s *NoteStore) Buffer() string {
	s.edMu.RLock()
	defer s.edMu.RUnlock()
	return s.buffer
}

func (s *NoteStore) Session() WritingSession {
	s.edMu.RLock()
	defer s.edMu.RUnlock()
	return s.session
}

// ResetSession starts a new writing session with the default target.
func (s *NoteStore) ResetSession() {
	s.edMu.Lock()
	defer s.edMu.Unlock()
	s.session = s.newSession()
}

// SetTargetWords changes the goal of the current session.
func (s *NoteStore) SetTargetWords(n int) {
	s.edMu.Lock()
	defer s.edMu.Unlock()
	if n > 0 {
		s.session.TargetWords = n
	}
}

// Syncing reports whether a buffer push is in flight.
func (s *NoteStore) Syncing() bool {
	s.edMu.RLock()
	defer s.edMu.RUnlock()
	return s.syncing
}

// SyncBuffer pushes the buffer as the active note's content. Only one push
// runs at a time; a call while one is in flight returns nil at once. The
// buffer is kept when the push fails.
func (s *NoteStore) SyncBuffer(ctx context.Context) error {
	s.edMu.Lock()
	if s.activeID == "" || s.syncing {
		s.edMu.Unlock()
		return nil
	}
	s.syncing = true
	id, content := s.activeID, s.buffer
	s.edMu.Unlock()

	defer func() {
		s.edMu.Lock()
		s.syncing = false
		s.edMu.Unlock()
	}()

	return s.Update(ctx, id, models.NotePatch{Content: &content})
}

// Delete also closes the note when it was being edited.
func (s *NoteStore) Delete(ctx context.Context, id string) error {
	if err := s.Collection.Delete(ctx, id); err != nil {
		return err
	}

	s.edMu.Lock()
	defer s.edMu.Unlock()
	if s.activeID == id {
		s.activeID = ""
		s.buffer = ""
	}
	return nil
}

// Favorites returns the favorite notes in store order.
func (s *NoteStore) Favorites() []models.Note {
	var out []models.Note
	for _, n := range s.Items() {
		if n.IsFavorite {
			out = append(out, n)
		}
	}
	return out
}

// InFolder returns the notes filed in folderID. An empty id selects notes in
// no folder.
func (s *NoteStore) InFolder(folderID string) []models.Note {
	var out []models.Note
	for _, n := range s.Items() {
		if n.FolderID == folderID {
			out = append(out, n)
		}
	}
	return out
}

// FetchFolders loads the folder list.
func (s *NoteStore) FetchFolders(ctx context.Context) error {
	if s.folderSource == nil {
		return nil
	}
	folders, err := s.folderSource.Select(ctx, models.Query{})
	if err != nil {
		s.fail("folder fetch", err)
		return err
	}

	s.edMu.Lock()
	defer s.edMu.Unlock()
	s.folders = folders
	return nil
}

func (s *NoteStore) Folders() []models.Folder {
	s.edMu.RLock()
	defer s.edMu.RUnlock()
	return append([]models.Folder(nil), s.folders...)
}
