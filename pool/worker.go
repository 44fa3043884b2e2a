package pool

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/utkarsh5026/threadpool/internal/types"
)

// worker is the loop run by each pool worker. It reports on ready whether it
// managed to bind its thread, then pops and executes tasks until the queue is
// closed and empty.
//
// A nil ready marks a replacement for a worker whose goroutine was ended by a
// task calling runtime.Goexit. A replacement that cannot bind its thread runs
// unbound rather than leave the pool short.
func (p *Pool) worker(id int, ready chan<- error) error {
	if bind := p.conf.bindThread; bind != nil {
		release, err := bind(id)
		switch {
		case err == nil:
			defer release()
		case ready != nil:
			ready <- fmt.Errorf("worker %d: %w", id, err)
			return err
		default:
			p.logger.Warn("replacement worker running without thread binding", "worker", id, "error", err)
		}
	}
	if ready != nil {
		ready <- nil
	}

	p.metrics.WorkerUp()
	defer p.metrics.WorkerDown()
	p.logger.Debug("worker started", "worker", id)

	normalReturn := false
	defer func() {
		if !normalReturn {
			// Still counted by the group here, so Go cannot race with Wait.
			p.logger.Warn("task ended its worker goroutine, replacing worker", "worker", id)
			p.group.Go(func() error {
				return p.worker(id, nil)
			})
		}
	}()

	for {
		t, ok := p.queue.Pop()
		if !ok {
			normalReturn = true
			p.logger.Debug("worker stopped", "worker", id)
			return nil
		}
		p.execute(id, t)
	}
}

// execute runs one task outside the queue lock. The task resolves its own
// future; failures are reported to hooks and metrics but never stop the worker.
func (p *Pool) execute(workerID int, t types.Task) {
	p.metrics.Dequeued()

	if p.conf.rateLimiter != nil {
		// Wait only fails for a cancelled context or a zero burst, neither of
		// which can happen here.
		_ = p.conf.rateLimiter.Wait(context.Background())
	}

	p.metrics.Started()
	if p.conf.beforeTaskStart != nil {
		p.conf.beforeTaskStart(t.ID)
	}

	start := time.Now()
	err := types.ErrGoexit // replaced unless the task ends the goroutine
	defer func() {
		p.finish(workerID, t.ID, time.Since(start), err)
	}()

	err = t.Run()
}

func (p *Pool) finish(workerID int, taskID int64, elapsed time.Duration, err error) {
	p.metrics.Finished(elapsed, err)
	if errors.Is(err, ErrTaskPanic) {
		p.logger.Warn("task panicked", "task", taskID, "worker", workerID, "error", err)
	}
	debugLog("worker %d finished task %d in %v (err=%v)", workerID, taskID, elapsed, err)

	if p.conf.onTaskEnd != nil {
		p.conf.onTaskEnd(taskID, err)
	}
}
