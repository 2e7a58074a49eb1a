// Package chronos runs countdown timers against the wall clock and keeps the
// metronome settings that go with them.
package chronos

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"
)

type Status string

const (
	StatusIdle     Status = "IDLE"
	StatusRunning  Status = "RUNNING"
	StatusPaused   Status = "PAUSED"
	StatusComplete Status = "COMPLETE"
)

type Kind string

const (
	KindPomodoro Kind = "POMODORO"
	KindCustom   Kind = "CUSTOM"
)

func (k Kind) Valid() bool {
	return k == KindPomodoro || k == KindCustom
}

// TickInterval is how often Run recomputes running timers.
const TickInterval = time.Second

var (
	ErrTimerNotFound   = errors.New("timer not found")
	ErrTimerComplete   = errors.New("timer is complete, reset it first")
	ErrNoActiveTimer   = errors.New("no active timer")
	ErrInvalidDuration = errors.New("duration must be positive")
	ErrInvalidKind     = errors.New("kind must be POMODORO or CUSTOM")
)

// Timer is one countdown. A running timer holds its absolute end; an idle or
// paused one holds the frozen remaining time.
type Timer struct {
	ID        string        `json:"id"`
	Label     string        `json:"label"`
	Kind      Kind          `json:"kind"`
	Status    Status        `json:"status"`
	Duration  time.Duration `json:"duration_ns"`
	Remaining time.Duration `json:"remaining_ns"`
	EndAt     *time.Time    `json:"end_at,omitempty"`
}

// RemainingAt is the time left at now without changing state.
func (t Timer) RemainingAt(now time.Time) time.Duration {
	if t.Status != StatusRunning || t.EndAt == nil {
		return t.Remaining
	}
	return max(t.EndAt.Sub(now), 0)
}

type Option func(*Engine)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) { e.logger = logger }
}

// OnComplete registers fn to run, outside the engine lock, for every timer
// that reaches zero.
func OnComplete(fn func(Timer)) Option {
	return func(e *Engine) { e.onComplete = fn }
}

// Engine owns the timers and the metronome. It is safe for concurrent use.
type Engine struct {
	now        func() time.Time
	logger     *slog.Logger
	onComplete func(Timer)

	mu        sync.Mutex
	timers    map[string]*Timer
	activeID  string
	metronome Metronome
}

func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		now:       time.Now,
		logger:    slog.Default(),
		timers:    make(map[string]*Timer),
		metronome: DefaultMetronome(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Initialize creates or replaces a timer in the IDLE state. The first timer
// initialized becomes the active one.
func (e *Engine) Initialize(id string, duration time.Duration, label string, kind Kind) error {
	if duration <= 0 {
		return ErrInvalidDuration
	}
	if kind == "" {
		kind = KindCustom
	}
	if !kind.Valid() {
		return ErrInvalidKind
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	e.timers[id] = &Timer{
		ID:        id,
		Label:     label,
		Kind:      kind,
		Status:    StatusIdle,
		Duration:  duration,
		Remaining: duration,
	}
	if e.activeID == "" || e.timers[e.activeID] == nil {
		e.activeID = id
	}

	e.logger.Debug("timer initialized", "timer_id", id, "duration", duration, "kind", kind)
	return nil
}

// Start runs a timer from its remaining time. Starting a running timer does
// nothing. A COMPLETE timer returns ErrTimerComplete until it is Reset.
func (e *Engine) Start(id string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	t, ok := e.timers[id]
	if !ok {
		return ErrTimerNotFound
	}
	switch t.Status {
	case StatusRunning:
		return nil
	case StatusComplete:
		return ErrTimerComplete
	}

	end := e.now().Add(t.Remaining)
	t.EndAt = &end
	t.Status = StatusRunning

	e.logger.Info("timer started", "timer_id", id, "remaining", t.Remaining)
	return nil
}

// Pause freezes a running timer. Other states are left alone. A timer paused
// at or past its end becomes COMPLETE, not PAUSED at zero, and fires the
// completion callback; like any COMPLETE timer it needs a Reset before Start.
func (e *Engine) Pause(id string) error {
	e.mu.Lock()
	t, ok := e.timers[id]
	if !ok {
		e.mu.Unlock()
		return ErrTimerNotFound
	}
	if t.Status != StatusRunning || t.EndAt == nil {
		e.mu.Unlock()
		return nil
	}

	remaining := t.RemainingAt(e.now())
	t.EndAt = nil
	t.Remaining = remaining

	var done *Timer
	if remaining == 0 {
		t.Status = StatusComplete
		done = t
	} else {
		t.Status = StatusPaused
	}
	snap := *t
	e.mu.Unlock()

	if done != nil {
		e.completed(snap)
		return nil
	}
	e.logger.Info("timer paused", "timer_id", id, "remaining", remaining)
	return nil
}

// Reset returns a timer to IDLE with its full duration.
func (e *Engine) Reset(id string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	t, ok := e.timers[id]
	if !ok {
		return ErrTimerNotFound
	}
	t.Status = StatusIdle
	t.EndAt = nil
	t.Remaining = t.Duration
	return nil
}

// Remove drops a timer. The active timer falls back to the first remaining id.
func (e *Engine) Remove(id string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if _, ok := e.timers[id]; !ok {
		return ErrTimerNotFound
	}
	delete(e.timers, id)
	if e.activeID == id {
		e.activeID = ""
		if ids := e.idsLocked(); len(ids) > 0 {
			e.activeID = ids[0]
		}
	}
	return nil
}

// Tick recomputes every running timer from the clock and returns the timers
// that completed on this tick.
func (e *Engine) Tick() []Timer {
	now := e.now()

	e.mu.Lock()
	var done []Timer
	for _, t := range e.timers {
		if t.Status != StatusRunning || t.EndAt == nil {
			continue
		}
		remaining := t.EndAt.Sub(now)
		if remaining <= 0 {
			t.Status = StatusComplete
			t.Remaining = 0
			t.EndAt = nil
			done = append(done, *t)
			continue
		}
		t.Remaining = remaining
	}
	e.mu.Unlock()

	sort.Slice(done, func(i, j int) bool { return done[i].ID < done[j].ID })
	for _, t := range done {
		e.completed(t)
	}
	return done
}

// Run ticks every TickInterval until ctx ends.
func (e *Engine) Run(ctx context.Context) {
	ticker := time.NewTicker(TickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			e.Tick()
		}
	}
}

func (e *Engine) completed(t Timer) {
	e.logger.Info("timer complete", "timer_id", t.ID, "label", t.Label)
	if e.onComplete != nil {
		e.onComplete(t)
	}
}

// Get returns a copy of a timer.
func (e *Engine) Get(id string) (Timer, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	t, ok := e.timers[id]
	if !ok {
		return Timer{}, false
	}
	return copyTimer(t), true
}

// Timers returns copies of all timers ordered by id.
func (e *Engine) Timers() []Timer {
	e.mu.Lock()
	defer e.mu.Unlock()

	out := make([]Timer, 0, len(e.timers))
	for _, id := range e.idsLocked() {
		out = append(out, copyTimer(e.timers[id]))
	}
	return out
}

func (e *Engine) idsLocked() []string {
	ids := make([]string, 0, len(e.timers))
	for id := range e.timers {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func copyTimer(t *Timer) Timer {
	out := *t
	if t.EndAt != nil {
		end := *t.EndAt
		out.EndAt = &end
	}
	return out
}

// Active returns the timer shown on the main display.
func (e *Engine) Active() (Timer, bool) {
	e.mu.Lock()
	id := e.activeID
	e.mu.Unlock()

	if id == "" {
		return Timer{}, false
	}
	return e.Get(id)
}

// SetActive moves the main display to another timer.
func (e *Engine) SetActive(id string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if _, ok := e.timers[id]; !ok {
		return ErrTimerNotFound
	}
	e.activeID = id
	return nil
}

// AdjustActive gives the active timer a new duration and resets it.
func (e *Engine) AdjustActive(duration time.Duration) error {
	if duration <= 0 {
		return ErrInvalidDuration
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	t, ok := e.timers[e.activeID]
	if !ok {
		return ErrNoActiveTimer
	}
	t.Duration = duration
	t.Remaining = duration
	t.Status = StatusIdle
	t.EndAt = nil
	return nil
}

// FormatRemaining renders a duration as MM:SS, rounding partial seconds up so
// a timer reads 00:00 only once it is done.
func FormatRemaining(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	secs := int64((d + time.Second - 1) / time.Second)
	return fmt.Sprintf("%02d:%02d", secs/60, secs%60)
}
