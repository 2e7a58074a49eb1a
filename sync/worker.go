package sync

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"ops-dashboard/database"
	"ops-dashboard/gcal"
	"ops-dashboard/models"

	"golang.org/x/oauth2"
)

// CalendarService is the Google Calendar surface the worker needs
type CalendarService interface {
	UpsertEvent(ctx context.Context, ev models.CalendarEvent, gcalID string) (string, error)
	DeleteEvent(ctx context.Context, gcalID string) error
	ListUpcoming(ctx context.Context, from time.Time, limit int) ([]gcal.RemoteEvent, error)
	GetCurrentToken() (*oauth2.Token, error)
}

// CalendarFactory creates calendar service instances for a user
type CalendarFactory func(ctx context.Context, token *oauth2.Token, calendarID string) (CalendarService, error)

// GoogleFactory returns a CalendarFactory backed by the real Calendar API.
func GoogleFactory(cfg *oauth2.Config) CalendarFactory {
	return func(ctx context.Context, token *oauth2.Token, calendarID string) (CalendarService, error) {
		return gcal.NewClient(ctx, cfg, token, calendarID)
	}
}

// Worker exports calendar events to Google Calendar in the background
// See domain-specific files:
// - executor.go: Core sync execution logic
// - retry.go: Retry and backoff strategies
// - importer.go: Calendar import operations
// - token_manager.go: OAuth token refresh handling
type Worker struct {
	repo            *database.Repository
	calendarFactory CalendarFactory
	logger          *slog.Logger
	baseInterval    time.Duration
	maxInterval     time.Duration
	currentInterval time.Duration
	settle          time.Duration
	batchSize       int
	running         bool
	mu              sync.Mutex
	stopChan        chan struct{}
	triggerChan     chan struct{}
	done            chan struct{}
	now             func() time.Time
}

// NewWorker creates a new sync worker instance
func NewWorker(repo *database.Repository, calendarFactory CalendarFactory, logger *slog.Logger) *Worker {
	return &Worker{
		repo:            repo,
		calendarFactory: calendarFactory,
		logger:          logger.With("component", "sync"),
		baseInterval:    2 * time.Minute, // Base interval for retries
		maxInterval:     5 * time.Minute, // Max interval when no work
		currentInterval: 2 * time.Minute, // Start with base interval
		settle:          30 * time.Second,
		batchSize:       50,
		stopChan:        make(chan struct{}),
		triggerChan:     make(chan struct{}, 1),
		done:            make(chan struct{}),
		now:             func() time.Time { return time.Now().UTC() },
	}
}

// Start begins the background sync worker
func (w *Worker) Start() {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return
	}
	w.running = true
	w.mu.Unlock()

	w.logger.Info("starting background sync worker")

	go w.run()
}

// Stop gracefully stops the background sync worker and waits for the
// current pass to finish
func (w *Worker) Stop() {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return
	}
	w.logger.Info("stopping background sync worker")
	close(w.stopChan)
	w.running = false
	w.mu.Unlock()

	<-w.done
}

// Trigger requests a sync pass without waiting for the next tick
func (w *Worker) Trigger() {
	select {
	case w.triggerChan <- struct{}{}:
	default:
	}
}

// run is the main worker loop with adaptive backoff
func (w *Worker) run() {
	defer close(w.done)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		select {
		case <-w.stopChan:
			cancel()
		case <-ctx.Done():
		}
	}()

	ticker := time.NewTicker(w.currentInterval)
	defer ticker.Stop()

	// Run immediately on start
	w.syncPendingEvents(ctx)

	for {
		select {
		case <-ticker.C:
			hadWork := w.syncPendingEvents(ctx)
			w.adjustInterval(ticker, hadWork)
		case <-w.triggerChan:
			hadWork := w.syncPendingEvents(ctx)
			w.adjustInterval(ticker, hadWork)
		case <-w.stopChan:
			return
		}
	}
}

// adjustInterval resets to the base interval when there was work and backs
// off to the max interval when idle
func (w *Worker) adjustInterval(ticker *time.Ticker, hadWork bool) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if hadWork {
		if w.currentInterval != w.baseInterval {
			w.currentInterval = w.baseInterval
			ticker.Reset(w.currentInterval)
			w.logger.Debug("work found, reset interval", "interval", w.currentInterval)
		}
		return
	}
	if w.currentInterval < w.maxInterval {
		w.currentInterval = w.maxInterval
		ticker.Reset(w.currentInterval)
		w.logger.Debug("no work, increased interval", "interval", w.currentInterval)
	}
}

// Interval returns the current polling interval
func (w *Worker) Interval() time.Duration {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.currentInterval
}
