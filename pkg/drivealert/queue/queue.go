// Package queue provides the condition-variable protected event queues that
// hand events from sensor and calculation producers to the rendering and
// alerting workers.
//
// Consumption is split into two steps. Consume, ConsumePending and TryConsume
// return with the queue lock still held so the caller can inspect the item
// before other goroutines touch the queue; Release must follow on every path.
// Take and TakePending do both steps with a deferred release.
package queue

import (
	"sync"
)

// Category names the kind of events a queue carries.
type Category string

// Queue categories. One queue exists per category.
const (
	CategoryGPSSignal        Category = "gps_signal"
	CategoryMaxSpeedExceeded Category = "max_speed_exceeded"
	CategoryOnline           Category = "online"
	CategoryAR               Category = "ar"
	CategoryVoice            Category = "voice"
	CategoryMapUpdate        Category = "map_update"
	CategoryPOI              Category = "poi"
	CategoryConstruction     Category = "construction"
	CategoryOSMCamera        Category = "osm_camera"
	CategoryCloudCamera      Category = "cloud_camera"
	CategoryDBCamera         Category = "db_camera"
)

// Observer is notified about queue traffic. Calls happen with the queue
// lock held and must not call back into the queue.
type Observer interface {
	Produced(category Category)
	Consumed(category Category, n int)
	Drained(category Category, n int)
}

// Queue is an unbounded FIFO guarded by one mutex and one condition variable.
// It is safe for concurrent use by any number of producers; by convention only
// one goroutine consumes a given queue.
type Queue[T any] struct {
	category Category
	observer Observer

	mu     sync.Mutex
	cond   *sync.Cond
	items  []T
	closed bool
}

// Option configures a Queue.
type Option func(*options)

type options struct {
	observer Observer
}

// WithObserver attaches an Observer to the queue.
func WithObserver(o Observer) Option {
	return func(opts *options) {
		opts.observer = o
	}
}

// New creates an empty queue for the given category.
func New[T any](category Category, opts ...Option) *Queue[T] {
	var cfg options
	for _, opt := range opts {
		opt(&cfg)
	}
	q := &Queue[T]{
		category: category,
		observer: cfg.observer,
	}
	q.cond = sync.NewCond(&q.mu)
	return q
}

// Category returns the queue category.
func (q *Queue[T]) Category() Category {
	return q.category
}

// Produce appends item and wakes one waiting consumer. It never blocks on
// capacity. Returns false if the queue has been closed and the item was
// discarded.
func (q *Queue[T]) Produce(item T) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return false
	}
	q.items = append(q.items, item)
	if q.observer != nil {
		q.observer.Produced(q.category)
	}
	q.cond.Signal()
	return true
}

// Consume blocks until an item is available or the queue is closed, then pops
// the front item. ok is false when the queue was closed and empty.
//
// Consume returns with the lock held, including when ok is false. The caller
// must call Release exactly once afterwards.
func (q *Queue[T]) Consume() (item T, ok bool) {
	q.mu.Lock()
	for len(q.items) == 0 && !q.closed {
		q.cond.Wait()
	}
	if len(q.items) == 0 {
		return item, false
	}
	return q.popLocked(), true
}

// TryConsume pops the front item without waiting. ok is false when the queue
// is empty. Like Consume it returns with the lock held.
func (q *Queue[T]) TryConsume() (item T, ok bool) {
	q.mu.Lock()
	if len(q.items) == 0 {
		return item, false
	}
	return q.popLocked(), true
}

// ConsumePending removes and returns every queued item without waiting. The
// result may be empty. Returns with the lock held.
func (q *Queue[T]) ConsumePending() []T {
	q.mu.Lock()
	if len(q.items) == 0 {
		return nil
	}
	pending := q.items
	q.items = nil
	if q.observer != nil {
		q.observer.Consumed(q.category, len(pending))
	}
	return pending
}

// Release unlocks the queue after Consume, TryConsume or ConsumePending.
func (q *Queue[T]) Release() {
	q.mu.Unlock()
}

// Take is Consume followed by a deferred Release.
func (q *Queue[T]) Take() (T, bool) {
	defer q.Release()
	return q.Consume()
}

// TakePending is ConsumePending followed by a deferred Release.
func (q *Queue[T]) TakePending() []T {
	defer q.Release()
	return q.ConsumePending()
}

// Drain discards every queued item and returns how many were dropped.
func (q *Queue[T]) Drain() int {
	q.mu.Lock()
	defer q.mu.Unlock()

	n := len(q.items)
	q.items = nil
	if n > 0 && q.observer != nil {
		q.observer.Drained(q.category, n)
	}
	return n
}

// Close stops the queue from accepting items and wakes every blocked
// consumer. Items already queued can still be consumed.
func (q *Queue[T]) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.closed = true
	q.cond.Broadcast()
}

// Closed reports whether Close has been called.
func (q *Queue[T]) Closed() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.closed
}

// Len returns the number of queued items.
func (q *Queue[T]) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

func (q *Queue[T]) popLocked() T {
	item := q.items[0]
	var zero T
	q.items[0] = zero
	q.items = q.items[1:]
	if q.observer != nil {
		q.observer.Consumed(q.category, 1)
	}
	return item
}

// Drainer is implemented by every Queue regardless of item type.
type Drainer interface {
	Drain() int
}

// DrainAll drains each queue and returns the total number of dropped items.
func DrainAll(queues ...Drainer) int {
	total := 0
	for _, q := range queues {
		if q == nil {
			continue
		}
		total += q.Drain()
	}
	return total
}
