package realtime

import (
	"context"
	"sync"

	"ops-dashboard/metrics"
	"ops-dashboard/models"
)

// subscriberBuffer bounds how many notifications may queue per subscriber.
// Anything beyond that is dropped: a queued notification already triggers a
// full refetch, so the dropped ones carry no extra information.
const subscriberBuffer = 16

type subscriber struct {
	table  string
	userID string
	ch     chan models.Change
}

// Hub fans row changes out to subscribers of the same table and owner.
type Hub struct {
	mu     sync.RWMutex
	subs   map[int]*subscriber
	nextID int
	closed bool
}

func NewHub() *Hub {
	return &Hub{subs: make(map[int]*subscriber)}
}

// Subscribe registers for changes to table owned by userID. The returned
// cancel func closes the channel and is safe to call more than once.
func (h *Hub) Subscribe(table, userID string) (<-chan models.Change, func()) {
	h.mu.Lock()
	defer h.mu.Unlock()

	ch := make(chan models.Change, subscriberBuffer)
	if h.closed {
		close(ch)
		return ch, func() {}
	}

	id := h.nextID
	h.nextID++
	h.subs[id] = &subscriber{table: table, userID: userID, ch: ch}
	metrics.RealtimeSubscribers.Inc()

	var once sync.Once
	return ch, func() {
		once.Do(func() { h.remove(id) })
	}
}

func (h *Hub) remove(id int) {
	h.mu.Lock()
	defer h.mu.Unlock()

	sub, ok := h.subs[id]
	if !ok {
		return
	}
	delete(h.subs, id)
	close(sub.ch)
	metrics.RealtimeSubscribers.Dec()
}

// Publish delivers a change without blocking on slow subscribers.
func (h *Hub) Publish(change models.Change) {
	metrics.RealtimeChanges.WithLabelValues(change.Table, string(change.Type)).Inc()

	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, sub := range h.subs {
		if sub.table != change.Table || sub.userID != change.UserID {
			continue
		}
		select {
		case sub.ch <- change:
		default:
			metrics.RealtimeDropped.Inc()
		}
	}
}

// Subscribers returns the number of open subscriptions.
func (h *Hub) Subscribers() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}

// Close ends every subscription. Later subscriptions receive a closed channel.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for id, sub := range h.subs {
		close(sub.ch)
		delete(h.subs, id)
		metrics.RealtimeSubscribers.Dec()
	}
	h.closed = true
}

// Feed scopes the hub to one user so in-process callers can use it wherever a
// remote change feed is expected.
func (h *Hub) Feed(userID string) *UserFeed {
	return &UserFeed{hub: h, userID: userID}
}

type UserFeed struct {
	hub    *Hub
	userID string
}

// Subscribe returns a channel that closes when ctx is done.
func (f *UserFeed) Subscribe(ctx context.Context, table string) (<-chan models.Change, error) {
	ch, cancel := f.hub.Subscribe(table, f.userID)
	go func() {
		<-ctx.Done()
		cancel()
	}()
	return ch, nil
}
