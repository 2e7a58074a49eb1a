package store

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"ops-dashboard/models"
)

var errRemote = errors.New("remote unavailable")

// fakeRemote is an in-memory table. Failures are switched on per operation.
type fakeRemote[T, N any, P Patch[T]] struct {
	mu      sync.Mutex
	rows    []T
	key     func(T) string
	build   func(id string, draft N) T
	fail    map[string]error
	selects int
	queries []models.Query
	seq     int

	// when set, Update signals held and waits for release
	held    chan struct{}
	release chan struct{}
}

func newFakeRemote[T, N any, P Patch[T]](key func(T) string, build func(string, N) T, rows ...T) *fakeRemote[T, N, P] {
	return &fakeRemote[T, N, P]{rows: rows, key: key, build: build, fail: map[string]error{}}
}

func (f *fakeRemote[T, N, P]) failOn(op string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fail[op] = err
}

// holdUpdates makes the next Update block until the returned func is called.
func (f *fakeRemote[T, N, P]) holdUpdates() (held <-chan struct{}, release func()) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.held = make(chan struct{}, 1)
	f.release = make(chan struct{})
	return f.held, func() { close(f.release) }
}

func (f *fakeRemote[T, N, P]) selectCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.selects
}

func (f *fakeRemote[T, N, P]) Select(_ context.Context, q models.Query) ([]T, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.selects++
	f.queries = append(f.queries, q)
	if err := f.fail["select"]; err != nil {
		return nil, err
	}
	return append([]T(nil), f.rows...), nil
}

func (f *fakeRemote[T, N, P]) Insert(_ context.Context, draft N) (*T, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.fail["insert"]; err != nil {
		return nil, err
	}
	f.seq++
	row := f.build(fmt.Sprintf("new-%d", f.seq), draft)
	f.rows = append(f.rows, row)
	return &row, nil
}

func (f *fakeRemote[T, N, P]) Update(_ context.Context, id string, patch P) (*T, error) {
	f.mu.Lock()
	held, release := f.held, f.release
	f.mu.Unlock()
	if held != nil {
		held <- struct{}{}
		<-release
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.fail["update"]; err != nil {
		return nil, err
	}
	for i, row := range f.rows {
		if f.key(row) == id {
			f.rows[i] = patch.Apply(row)
			out := f.rows[i]
			return &out, nil
		}
	}
	return nil, errors.New("not found")
}

func (f *fakeRemote[T, N, P]) Delete(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.fail["delete"]; err != nil {
		return err
	}
	for i, row := range f.rows {
		if f.key(row) == id {
			f.rows = append(f.rows[:i], f.rows[i+1:]...)
			break
		}
	}
	return nil
}

// fakeFeed hands out one channel per table.
type fakeFeed struct {
	mu    sync.Mutex
	chans map[string]chan models.Change
	err   error
}

func newFakeFeed() *fakeFeed {
	return &fakeFeed{chans: map[string]chan models.Change{}}
}

func (f *fakeFeed) Subscribe(_ context.Context, table string) (<-chan models.Change, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	ch := make(chan models.Change, 8)
	f.chans[table] = ch
	return ch, nil
}

func (f *fakeFeed) send(table string, change models.Change) {
	f.mu.Lock()
	ch := f.chans[table]
	f.mu.Unlock()
	ch <- change
}

func (f *fakeFeed) close(table string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	close(f.chans[table])
}
