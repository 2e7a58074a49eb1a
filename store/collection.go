// Package store keeps local, sorted copies of backend tables and applies
// edits optimistically.
package store

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"sort"
	"sync"
	"time"

	"ops-dashboard/models"
)

// ErrNotFound is returned by store helpers that act on a row the store does
// not hold.
var ErrNotFound = errors.New("record not in store")

// Patch is a partial update that can be applied to a local row.
type Patch[T any] interface {
	Apply(T) T
}

// Remote is the table access a Collection needs. *client.Table satisfies it.
type Remote[T, N any, P Patch[T]] interface {
	Select(ctx context.Context, q models.Query) ([]T, error)
	Insert(ctx context.Context, draft N) (*T, error)
	Update(ctx context.Context, id string, patch P) (*T, error)
	Delete(ctx context.Context, id string) error
}

type Option func(*options)

type options struct {
	logger *slog.Logger
	now    func() time.Time
}

func WithLogger(logger *slog.Logger) Option {
	return func(o *options) { o.logger = logger }
}

// WithClock replaces time.Now for time-based helpers.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

func buildOptions(opts []Option) options {
	o := options{logger: slog.Default(), now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// Collection is an optimistic local copy of one table. The lock is never held
// across a remote call; overlapping edits of the same row race and the last
// response wins.
type Collection[T, N any, P Patch[T]] struct {
	name   string
	remote Remote[T, N, P]
	key    func(T) string
	less   func(a, b T) bool
	logger *slog.Logger

	mu        sync.RWMutex
	items     []T
	query     models.Query
	loading   int
	errMsg    string
	listeners []func()
}

// NewCollection creates an empty collection. key returns a row's id and less
// is the display order.
func NewCollection[T, N any, P Patch[T]](name string, remote Remote[T, N, P], key func(T) string, less func(a, b T) bool, opts ...Option) *Collection[T, N, P] {
	o := buildOptions(opts)
	return &Collection[T, N, P]{
		name:   name,
		remote: remote,
		key:    key,
		less:   less,
		logger: o.logger.With("store", name),
	}
}

func (c *Collection[T, N, P]) Name() string { return c.name }

// SetQuery narrows later fetches.
func (c *Collection[T, N, P]) SetQuery(q models.Query) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.query = q
}

// Items returns a copy of the rows in display order.
func (c *Collection[T, N, P]) Items() []T {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]T, len(c.items))
	copy(out, c.items)
	return out
}

func (c *Collection[T, N, P]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

func (c *Collection[T, N, P]) Get(id string) (T, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if i := c.indexOf(id); i >= 0 {
		return c.items[i], true
	}
	var zero T
	return zero, false
}

// Err returns the last error message, or "" when there is none.
func (c *Collection[T, N, P]) Err() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.errMsg
}

func (c *Collection[T, N, P]) ClearError() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.errMsg = ""
}

// Loading reports whether a fetch or insert is in flight.
func (c *Collection[T, N, P]) Loading() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.loading > 0
}

// OnChange registers fn to run after every change to the local rows.
func (c *Collection[T, N, P]) OnChange(fn func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.listeners = append(c.listeners, fn)
}

// Fetch replaces the local rows with the remote query result.
func (c *Collection[T, N, P]) Fetch(ctx context.Context) error {
	c.mu.Lock()
	c.loading++
	c.errMsg = ""
	q := c.query
	c.mu.Unlock()

	rows, err := c.remote.Select(ctx, q)

	c.mu.Lock()
	c.loading--
	if err != nil {
		c.failLocked("fetch", err)
		c.mu.Unlock()
		return err
	}
	c.items = append([]T(nil), rows...)
	c.sortLocked()
	c.mu.Unlock()

	c.notify()
	return nil
}

// Add inserts draft remotely and prepends the stored row.
func (c *Collection[T, N, P]) Add(ctx context.Context, draft N) (*T, error) {
	c.mu.Lock()
	c.loading++
	c.mu.Unlock()

	row, err := c.remote.Insert(ctx, draft)

	c.mu.Lock()
	c.loading--
	if err != nil {
		c.failLocked("insert", err)
		c.mu.Unlock()
		return nil, err
	}
	c.items = append([]T{*row}, c.items...)
	c.sortLocked()
	c.mu.Unlock()

	c.notify()
	return row, nil
}

// Update applies patch locally, then remotely. When the remote call fails only
// the patched row is put back; rows added or refetched meanwhile are kept.
func (c *Collection[T, N, P]) Update(ctx context.Context, id string, patch P) error {
	c.mu.Lock()
	var prev T
	at := c.indexOf(id)
	if at >= 0 {
		prev = c.items[at]
		c.items[at] = patch.Apply(prev)
		c.sortLocked()
	}
	c.mu.Unlock()
	c.notify()

	row, err := c.remote.Update(ctx, id, patch)

	c.mu.Lock()
	if err != nil {
		if at >= 0 {
			c.restoreLocked(id, prev, at)
		}
		c.failLocked("update", err)
		c.mu.Unlock()
		c.notify()
		return err
	}
	if row != nil {
		if i := c.indexOf(id); i >= 0 {
			c.items[i] = *row
			c.sortLocked()
		}
	}
	c.mu.Unlock()

	c.notify()
	return nil
}

// restoreLocked moves prev back to its old position. A row that is gone
// meanwhile stays gone.
func (c *Collection[T, N, P]) restoreLocked(id string, prev T, at int) {
	i := c.indexOf(id)
	if i < 0 {
		return
	}
	c.items = slices.Delete(c.items, i, i+1)
	c.items = slices.Insert(c.items, min(at, len(c.items)), prev)
	c.sortLocked()
}

// Delete removes a row remotely, then locally. Deleting an id the store does
// not hold leaves the local rows unchanged.
func (c *Collection[T, N, P]) Delete(ctx context.Context, id string) error {
	if err := c.remote.Delete(ctx, id); err != nil {
		c.fail("delete", err)
		return err
	}

	c.mu.Lock()
	i := c.indexOf(id)
	if i >= 0 {
		c.items = append(c.items[:i:i], c.items[i+1:]...)
	}
	c.mu.Unlock()

	if i >= 0 {
		c.notify()
	}
	return nil
}

// Subscribe refetches the collection on every change notification for its
// table. The returned channel closes when the feed ends.
func (c *Collection[T, N, P]) Subscribe(ctx context.Context, feed Feed) (<-chan struct{}, error) {
	return Watch(ctx, feed, c.name, c.Fetch, c.logger)
}

func (c *Collection[T, N, P]) indexOf(id string) int {
	for i, item := range c.items {
		if c.key(item) == id {
			return i
		}
	}
	return -1
}

func (c *Collection[T, N, P]) sortLocked() {
	if c.less == nil {
		return
	}
	sort.SliceStable(c.items, func(i, j int) bool {
		return c.less(c.items[i], c.items[j])
	})
}

func (c *Collection[T, N, P]) fail(op string, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.failLocked(op, err)
}

func (c *Collection[T, N, P]) failLocked(op string, err error) {
	c.errMsg = err.Error()
	c.logger.Warn("remote "+op+" failed", "error", err)
}

func (c *Collection[T, N, P]) notify() {
	c.mu.RLock()
	listeners := append([]func(){}, c.listeners...)
	c.mu.RUnlock()

	for _, fn := range listeners {
		fn()
	}
}
