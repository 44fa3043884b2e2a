package pool

import (
	"errors"
	"time"

	"github.com/utkarsh5026/threadpool/internal/types"
)

var (
	ErrPoolClosed         = errors.New("pool is closed")
	ErrInvalidWorkerCount = errors.New("worker count must be at least 1")
	ErrWorkerStart        = errors.New("failed to start worker")
	ErrNilTask            = errors.New("task function is nil")
	ErrShutdownTimeout    = errors.New("error in shutting down: timeout reached")

	// ErrTaskPanic is wrapped by the error a future reports when its task panicked.
	ErrTaskPanic = types.ErrPanic
)

// waitUntil blocks until either the done channel is closed or the timeout is reached.
// It is used during graceful shutdown to wait for workers to complete their tasks.
func waitUntil(d <-chan struct{}, timeout time.Duration) error {
	if timeout <= 0 {
		<-d
		return nil
	}

	select {
	case <-d:
		return nil
	case <-time.After(timeout):
		return ErrShutdownTimeout
	}
}
