package types

import (
	"context"
	"sync"
)

// Result carries the outcome of one task.
//
// Fields:
//   - Value: The value produced by the task (zero if Error is non-nil)
//   - Error: The error returned by the task, or a wrapped ErrPanic
type Result[R any] struct {
	Value R
	Error error
}

// Future is the read side of a one-shot result channel. It is returned to the
// submitter and becomes ready exactly once, when the matching Promise resolves.
type Future[R any] struct {
	id     int64
	done   chan struct{}
	result Result[R] // written once, before done is closed
}

// Promise is the write side of a one-shot result channel, held by the task.
type Promise[R any] struct {
	future *Future[R]
	once   sync.Once
}

// NewPromise creates a linked Promise/Future pair for the task with the given id.
func NewPromise[R any](id int64) (*Promise[R], *Future[R]) {
	f := &Future[R]{
		id:   id,
		done: make(chan struct{}),
	}
	return &Promise[R]{future: f}, f
}

// Resolve fulfils the future with value and err. Only the first call has any
// effect; it reports whether this call was the one that resolved the future.
func (p *Promise[R]) Resolve(value R, err error) bool {
	resolved := false
	p.once.Do(func() {
		p.future.result = Result[R]{Value: value, Error: err}
		close(p.future.done)
		resolved = true
	})
	return resolved
}

// ID returns the id of the task this future belongs to.
func (f *Future[R]) ID() int64 {
	return f.id
}

// Get blocks until the task completes and returns its value and error.
// Subsequent calls return the same result without blocking.
func (f *Future[R]) Get() (R, error) {
	<-f.done
	return f.result.Value, f.result.Error
}

// GetWithContext waits for the result like Get, but returns ctx.Err() if the
// context ends first. The task itself keeps running; a later call can still
// observe its result.
func (f *Future[R]) GetWithContext(ctx context.Context) (R, error) {
	select {
	case <-f.done:
		return f.result.Value, f.result.Error
	case <-ctx.Done():
		var zero R
		return zero, ctx.Err()
	}
}

// TryGet returns the result without blocking. ready reports whether the
// result was available; if it is false the other values are zero.
func (f *Future[R]) TryGet() (value R, ready bool, err error) {
	select {
	case <-f.done:
		return f.result.Value, true, f.result.Error
	default:
		return value, false, nil
	}
}

// Done returns a channel that is closed once the result is available,
// for use in select statements.
func (f *Future[R]) Done() <-chan struct{} {
	return f.done
}

// IsReady reports whether the result is available.
func (f *Future[R]) IsReady() bool {
	select {
	case <-f.done:
		return true
	default:
		return false
	}
}
