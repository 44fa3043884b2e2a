package pool

import (
	"github.com/utkarsh5026/threadpool/internal/types"
)

// Future is the handle returned by a submission. Get blocks until the task has
// run and returns its value and error.
type Future[R any] = types.Future[R]

// Submit queues fn for asynchronous execution and returns immediately with a
// Future for its result. It never waits for fn to run.
//
// If fn returns an error, the Future reports that same error. If fn panics, the
// Future reports an error wrapping ErrTaskPanic and the worker carries on.
//
// Returns:
//   - future: A Future[R] for retrieving the result
//   - error: ErrPoolClosed once Shutdown has begun, ErrNilTask for a nil fn
//
// Example:
//
//	future, err := pool.Submit(p, func() (string, error) {
//	    return fetch(url)
//	})
//	if err != nil {
//	    return err
//	}
//	body, err := future.Get()
func Submit[R any](p *Pool, fn func() (R, error)) (*Future[R], error) {
	if fn == nil {
		return nil, ErrNilTask
	}

	id := p.taskID.Add(1)
	promise, future := types.NewPromise[R](id)

	if err := p.enqueue(types.NewTask(id, fn, promise)); err != nil {
		return nil, err
	}
	return future, nil
}

// SubmitArg binds arg to fn at submission time and queues the call.
// arg is captured by value; the caller must not rely on later changes to it
// being seen by the task.
//
// Example:
//
//	square := func(n int) (int, error) { return n * n, nil }
//	future, err := pool.SubmitArg(p, square, 7)
func SubmitArg[A, R any](p *Pool, fn func(A) (R, error), arg A) (*Future[R], error) {
	if fn == nil {
		return nil, ErrNilTask
	}

	return Submit(p, func() (R, error) {
		return fn(arg)
	})
}

// Go queues an action that produces no value. The returned Future reports
// the action's error once it has run.
func (p *Pool) Go(fn func() error) (*Future[struct{}], error) {
	if fn == nil {
		return nil, ErrNilTask
	}

	return Submit(p, func() (struct{}, error) {
		return struct{}{}, fn()
	})
}

// enqueue pushes t onto the shared queue, translating a closed queue into
// ErrPoolClosed.
func (p *Pool) enqueue(t types.Task) error {
	p.metrics.Offered()
	if err := p.queue.Push(t); err != nil {
		p.metrics.Rejected()
		debugLog("rejected task %d: %v", t.ID, err)
		return ErrPoolClosed
	}
	p.metrics.Accepted()
	return nil
}
