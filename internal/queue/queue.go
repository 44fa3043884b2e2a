// Package queue implements the shared, unbounded FIFO that feeds pool workers.
//
// A single mutex guards both the buffered items and the stop flag, and a
// condition variable bound to that mutex wakes consumers. Producers signal one
// waiter per pushed item; Close broadcasts so every consumer observes the stop.
package queue

import (
	"errors"
	"sync"

	"github.com/gammazero/deque"
)

var (
	ErrClosed = errors.New("queue is closed")
)

// Queue is an unbounded, blocking FIFO queue safe for concurrent use by
// multiple producers and consumers.
//
// Type parameters:
//   - T: The element type stored in the queue
type Queue[T any] struct {
	mu     sync.Mutex
	cond   *sync.Cond
	items  deque.Deque[T]
	closed bool // guarded by mu, never reset once set
}

// New creates an empty, open queue.
func New[T any]() *Queue[T] {
	q := &Queue[T]{}
	q.cond = sync.NewCond(&q.mu)
	return q
}

// Push appends v to the back of the queue and wakes exactly one blocked consumer.
// Returns ErrClosed without enqueuing if Close has already been called.
func (q *Queue[T]) Push(v T) error {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return ErrClosed
	}
	q.items.PushBack(v)
	q.mu.Unlock()

	q.cond.Signal()
	return nil
}

// Pop removes and returns the front element, blocking while the queue is empty
// and still open.
//
// The second return value is false only when the queue has been closed and no
// items remain; items pushed before Close are always handed out first.
func (q *Queue[T]) Pop() (T, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	// Re-check after every wake: Signal may race with another consumer and
	// sync.Cond permits spurious returns from Wait.
	for !q.closed && q.items.Len() == 0 {
		q.cond.Wait()
	}

	if q.items.Len() == 0 {
		var zero T
		return zero, false
	}
	return q.items.PopFront(), true
}

// Close marks the queue as stopped and wakes every blocked consumer.
// It returns false if the queue was already closed.
func (q *Queue[T]) Close() bool {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return false
	}
	q.closed = true
	q.mu.Unlock()

	q.cond.Broadcast()
	return true
}

// Len returns the number of items currently buffered.
func (q *Queue[T]) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.items.Len()
}

// Closed reports whether Close has been called.
func (q *Queue[T]) Closed() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.closed
}
