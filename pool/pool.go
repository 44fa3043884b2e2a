package pool

import (
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/utkarsh5026/threadpool/internal/metrics"
	"github.com/utkarsh5026/threadpool/internal/queue"
	"github.com/utkarsh5026/threadpool/internal/types"
)

// Pool is a fixed-size pool of persistent workers fed by one shared FIFO queue.
// Workers start in New and run until Shutdown; the worker count never changes.
type Pool struct {
	conf    *config
	workers int
	queue   *queue.Queue[types.Task]
	group   errgroup.Group
	done    chan struct{} // Closed when all workers have finished
	taskID  atomic.Int64
	metrics *metrics.Collector
	logger  *slog.Logger
}

// New starts a pool of workerCount workers.
//
// It fails with ErrInvalidWorkerCount if workerCount < 1, with the registry's
// error if WithMetrics cannot register the collectors, and with an error
// wrapping ErrWorkerStart if any worker cannot bind its OS thread. On failure
// every worker that did start has already been stopped and joined.
//
// Example:
//
//	p, err := pool.New(4)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer p.Shutdown()
//
//	future, _ := pool.Submit(p, func() (int, error) { return 6 * 7, nil })
//	answer, err := future.Get()
func New(workerCount int, opts ...Option) (*Pool, error) {
	if workerCount < 1 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidWorkerCount, workerCount)
	}

	cfg := createConfig(opts...)
	logger := cfg.logger.With("pool", cfg.name)

	var collector *metrics.Collector
	if cfg.registerer != nil {
		c, err := metrics.New(cfg.registerer, cfg.name)
		if err != nil {
			return nil, fmt.Errorf("register pool metrics: %w", err)
		}
		collector = c
	}

	p := &Pool{
		conf:    cfg,
		workers: workerCount,
		queue:   queue.New[types.Task](),
		done:    make(chan struct{}),
		metrics: collector,
		logger:  logger,
	}

	ready := make(chan error, workerCount)
	for i := range workerCount {
		p.group.Go(func() error {
			return p.worker(i, ready)
		})
	}

	var startErr error
	for range workerCount {
		if err := <-ready; err != nil && startErr == nil {
			startErr = err
		}
	}

	if startErr != nil {
		p.queue.Close()
		_ = p.group.Wait()
		if collector != nil {
			collector.Unregister(cfg.registerer)
		}
		logger.Error("pool failed to start", "error", startErr)
		return nil, fmt.Errorf("%w: %w", ErrWorkerStart, startErr)
	}

	go func() {
		_ = p.group.Wait()
		close(p.done)
	}()

	logger.Info("pool started", "workers", workerCount)
	return p, nil
}

// Workers returns the number of workers the pool was created with.
func (p *Pool) Workers() int {
	return p.workers
}

// Shutdown closes the pool to new submissions and blocks until every task
// queued before the call has run and all workers have exited.
//
// Only the first call shuts the pool down; later calls return ErrPoolClosed
// immediately without waiting. Calling Shutdown from inside a task deadlocks,
// since it waits for the worker running that task.
func (p *Pool) Shutdown() error {
	return p.ShutdownWithTimeout(0)
}

// ShutdownWithTimeout behaves like Shutdown but stops waiting after timeout and
// returns ErrShutdownTimeout. Workers keep draining the queue in the background;
// no accepted task is discarded. A timeout <= 0 waits forever.
//
// Example:
//
//	if err := p.ShutdownWithTimeout(5 * time.Second); err != nil {
//	    log.Printf("shutdown error: %v", err)
//	}
func (p *Pool) ShutdownWithTimeout(timeout time.Duration) error {
	if !p.queue.Close() {
		return ErrPoolClosed
	}
	p.logger.Info("pool shutting down", "pending", p.queue.Len())

	if err := waitUntil(p.done, timeout); err != nil {
		p.logger.Warn("pool shutdown timed out", "timeout", timeout, "pending", p.queue.Len())
		return err
	}

	p.logger.Info("pool stopped")
	return nil
}
