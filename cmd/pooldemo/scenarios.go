package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/schollz/progressbar/v3"

	"github.com/utkarsh5026/threadpool/internal/config"
	"github.com/utkarsh5026/threadpool/pool"
)

var errPlannedFailure = errors.New("planned failure")

// demo holds what every scenario shares. Each scenario builds its own pool so
// that pool names, and therefore metric series, stay distinct.
type demo struct {
	cfg      *config.Config
	log      *slog.Logger
	reg      prometheus.Registerer
	out      io.Writer
	tasks    int
	progress bool
}

func (d *demo) newPool(suffix string, workers int, extra ...pool.Option) (*pool.Pool, error) {
	opts := d.cfg.Options(d.log, d.reg)
	opts = append(opts, pool.WithName(d.cfg.Name+"-"+suffix))
	opts = append(opts, extra...)
	return pool.New(workers, opts...)
}

// squares submits i*i for i in [0,8) and prints results in submission order.
func (d *demo) squares() error {
	printHeading(d.out, "squares")

	p, err := d.newPool("squares", d.cfg.Workers)
	if err != nil {
		return err
	}
	defer p.Shutdown()

	futures := make([]*pool.Future[int], 8)
	for i := range futures {
		f, err := pool.Submit(p, func() (int, error) {
			return i * i, nil
		})
		if err != nil {
			return fmt.Errorf("submit square %d: %w", i, err)
		}
		futures[i] = f
	}

	for i, f := range futures {
		v, err := f.Get()
		if err != nil {
			printFail(d.out, "%d*%d: %v", i, i, err)
			continue
		}
		printOK(d.out, "%d*%d = %d", i, i, v)
	}
	return nil
}

// failure shows that one failing and one panicking task do not affect others.
func (d *demo) failure() error {
	printHeading(d.out, "failure")

	p, err := d.newPool("failure", 2)
	if err != nil {
		return err
	}
	defer p.Shutdown()

	failing, err := p.Go(func() error { return errPlannedFailure })
	if err != nil {
		return err
	}
	panicking, err := pool.Submit(p, func() (int, error) {
		panic("planned panic")
	})
	if err != nil {
		return err
	}
	healthy, err := pool.SubmitArg(p, func(s string) (string, error) {
		return "hello " + s, nil
	}, "pool")
	if err != nil {
		return err
	}

	if _, err := failing.Get(); err != nil {
		printFail(d.out, "task %d: %v", failing.ID(), err)
	} else {
		printOK(d.out, "task %d: unexpectedly succeeded", failing.ID())
	}

	switch _, err := panicking.Get(); {
	case errors.Is(err, pool.ErrTaskPanic):
		printFail(d.out, "task %d: panicked", panicking.ID())
	case err != nil:
		printFail(d.out, "task %d: unexpected error: %v", panicking.ID(), err)
	default:
		printOK(d.out, "task %d: unexpectedly returned without panicking", panicking.ID())
	}

	if v, err := healthy.Get(); err != nil {
		printFail(d.out, "task %d: unexpected error: %v", healthy.ID(), err)
	} else {
		printOK(d.out, "task %d: %s", healthy.ID(), v)
	}
	return nil
}

// throughput runs the same CPU-bound batch on pools of 1, 2, 4 ... workers up
// to the configured count and renders a comparison table.
func (d *demo) throughput() error {
	printHeading(d.out, "throughput")

	counts := workerSteps(d.cfg.Workers)
	results := make([]throughputResult, 0, len(counts))

	var bar *progressbar.ProgressBar
	if d.progress {
		bar = progressbar.NewOptions(d.tasks*len(counts),
			progressbar.OptionSetWriter(d.out),
			progressbar.OptionSetDescription("Running"),
			progressbar.OptionSetWidth(40),
			progressbar.OptionShowCount(),
			progressbar.OptionShowIts(),
			progressbar.OptionClearOnFinish(),
		)
	}

	for _, workers := range counts {
		if bar != nil {
			bar.Describe(fmt.Sprintf("workers=%d", workers))
		}
		r, err := d.runBatch(workers, bar)
		if err != nil {
			return err
		}
		results = append(results, r)
		d.log.Info("batch finished", "workers", workers, "elapsed", r.Elapsed, "failed", r.Failed)
	}

	if bar != nil {
		_ = bar.Finish()
	}
	return renderThroughput(d.out, results)
}

func (d *demo) runBatch(workers int, bar *progressbar.ProgressBar) (throughputResult, error) {
	var extra []pool.Option
	if bar != nil {
		extra = append(extra, pool.WithOnTaskEnd(func(int64, error) {
			_ = bar.Add(1)
		}))
	}

	p, err := d.newPool(fmt.Sprintf("throughput-w%d", workers), workers, extra...)
	if err != nil {
		return throughputResult{}, err
	}

	start := time.Now()
	futures := make([]*pool.Future[int], 0, d.tasks)
	for i := range d.tasks {
		f, err := pool.SubmitArg(p, cpuBound, i)
		if err != nil {
			_ = p.Shutdown()
			return throughputResult{}, err
		}
		futures = append(futures, f)
	}

	failed := 0
	for _, f := range futures {
		if _, err := f.Get(); err != nil {
			failed++
		}
	}
	elapsed := time.Since(start)

	if err := p.Shutdown(); err != nil {
		return throughputResult{}, err
	}
	return throughputResult{Workers: workers, Tasks: d.tasks, Elapsed: elapsed, Failed: failed}, nil
}

// cpuBound is a deterministic busy loop seeded by n.
func cpuBound(n int) (int, error) {
	x := n
	for i := 0; i < 20_000; i++ {
		x = x*1103515245 + 12345
		x ^= x >> 7
	}
	return x, nil
}

// workerSteps returns 1, 2, 4 ... below limit, followed by limit itself.
func workerSteps(limit int) []int {
	var steps []int
	for n := 1; n < limit; n *= 2 {
		steps = append(steps, n)
	}
	return append(steps, limit)
}
