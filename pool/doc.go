// Package pool provides a fixed-size pool of persistent workers that execute
// submitted functions asynchronously and hand back a Future for each result.
//
// The pool owns one unbounded FIFO queue guarded by a mutex and a condition
// variable. Submitting a task appends it to the queue and wakes one idle
// worker; each worker pops tasks in submission order and runs them outside the
// lock, so a slow task never stops other workers from dequeuing.
//
// # Basic Usage
//
//	p, err := pool.New(4)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer p.Shutdown()
//
//	futures := make([]*pool.Future[int], 8)
//	for i := range futures {
//	    futures[i], _ = pool.SubmitArg(p, func(n int) (int, error) {
//	        return n * n, nil
//	    }, i)
//	}
//	for _, f := range futures {
//	    v, err := f.Get() // results in submission order: 0, 1, 4, 9, ...
//	}
//
// # Submitting Work
//
//   - Submit: queues a func() (R, error) and returns a *Future[R]
//   - SubmitArg: binds one argument at submission time, then behaves like Submit
//   - Go: queues a func() error with no result value
//
// Submission never waits for execution. Once Shutdown has begun every
// submission fails with ErrPoolClosed and nothing is queued.
//
// # Futures
//
// A Future becomes ready exactly once. Get blocks until then; GetWithContext
// stops waiting when its context ends without affecting the task; TryGet,
// IsReady and Done allow polling and select.
//
// # Error Handling
//
// A task's error is delivered unchanged through its Future. A panicking task is
// recovered and its Future reports an error wrapping ErrTaskPanic with the
// panic value and stack trace. Neither affects other tasks or the workers.
//
// # Shutdown
//
// Shutdown closes the pool to new submissions, lets the workers drain every
// task that was already queued, and returns once all workers have exited.
// ShutdownWithTimeout bounds the wait without discarding any task.
//
// # Configuration Options
//
//   - WithName(name): pool name for logs and the "pool" metric label
//   - WithLogger(logger): structured logger for lifecycle events and panics
//   - WithMetrics(reg): register Prometheus collectors
//   - WithRateLimit(tasksPerSecond, burst): throttle task starts
//   - WithLockedThreads(): one dedicated OS thread per worker
//   - WithCPUAffinity(): dedicated OS threads pinned to CPU cores
//   - WithBeforeTaskStart(fn), WithOnTaskEnd(fn): per-task hooks
package pool
