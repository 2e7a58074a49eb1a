package chronos

import (
	"fmt"
	"time"

	"ops-dashboard/utils"
)

// Snapshot is the persisted engine state. Running timers keep their absolute
// end so they stay correct across restarts.
type Snapshot struct {
	Timers    []Timer   `json:"timers"`
	ActiveID  string    `json:"active_timer_id,omitempty"`
	Metronome Metronome `json:"metronome"`
	SavedAt   time.Time `json:"saved_at"`
}

// Snapshot captures the current state. The metronome is always stored
// stopped.
func (e *Engine) Snapshot() Snapshot {
	timers := e.Timers()

	e.mu.Lock()
	defer e.mu.Unlock()

	m := e.metronome
	m.Active = false
	return Snapshot{
		Timers:    timers,
		ActiveID:  e.activeID,
		Metronome: m,
		SavedAt:   e.now().UTC(),
	}
}

// Restore replaces the engine state with s. Timers whose end passed while the
// state was stored complete on the next Tick.
func (e *Engine) Restore(s Snapshot) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.timers = make(map[string]*Timer, len(s.Timers))
	for _, t := range s.Timers {
		t := t
		if t.Status == StatusRunning && t.EndAt == nil {
			t.Status = StatusPaused
		}
		e.timers[t.ID] = &t
	}

	e.activeID = ""
	if _, ok := e.timers[s.ActiveID]; ok {
		e.activeID = s.ActiveID
	}

	e.metronome = s.Metronome
	e.metronome.Active = false
	if e.metronome.BPM == 0 {
		e.metronome = DefaultMetronome()
	}
	e.metronome.BPM = clampBPM(float64(e.metronome.BPM))
}

// Save writes the snapshot to path.
func (e *Engine) Save(path string) error {
	if err := utils.WriteJSON(path, e.Snapshot(), 0o644); err != nil {
		return fmt.Errorf("save timers: %w", err)
	}
	return nil
}

// Load restores the snapshot at path. The error wraps fs.ErrNotExist when no
// state was saved yet.
func (e *Engine) Load(path string) error {
	var s Snapshot
	if err := utils.ReadJSON(path, &s); err != nil {
		return fmt.Errorf("load timers: %w", err)
	}
	e.Restore(s)
	e.logger.Debug("timers restored", "path", path, "count", len(s.Timers))
	return nil
}
