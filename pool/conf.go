package pool

import (
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/time/rate"

	"github.com/utkarsh5026/threadpool/internal/cpu"
)

// Option is a functional option for configuring the pool.
type Option func(*config)

type config struct {
	name        string
	logger      *slog.Logger
	registerer  prometheus.Registerer
	rateLimiter *rate.Limiter

	// bindThread runs first on every worker goroutine; nil means no binding.
	bindThread func(workerID int) (release func(), err error)

	beforeTaskStart func(taskID int64)
	onTaskEnd       func(taskID int64, err error)
}

func createConfig(opts ...Option) *config {
	cfg := &config{
		name:   "pool",
		logger: slog.New(slog.DiscardHandler),
	}

	for _, opt := range opts {
		opt(cfg)
	}

	return cfg
}

// WithName sets the pool name used as the "pool" metric label and in log records.
// Defaults to "pool".
func WithName(name string) Option {
	return func(cfg *config) {
		if name != "" {
			cfg.name = name
		}
	}
}

// WithLogger sets the structured logger for pool lifecycle events and task panics.
// If not specified, nothing is logged.
func WithLogger(logger *slog.Logger) Option {
	return func(cfg *config) {
		if logger != nil {
			cfg.logger = logger
		}
	}
}

// WithMetrics registers the pool's Prometheus collectors with reg.
// Use WithName to tell several pools apart on the same registry.
//
// Example:
//
//	reg := prometheus.NewRegistry()
//	p, err := pool.New(4, pool.WithName("images"), pool.WithMetrics(reg))
func WithMetrics(reg prometheus.Registerer) Option {
	return func(cfg *config) {
		cfg.registerer = reg
	}
}

// WithRateLimit caps how fast workers start tasks.
// tasksPerSecond specifies the sustained start rate and burst the number of
// tasks that may start back to back. Queued tasks are delayed, never dropped.
// If not specified, no rate limiting is applied.
//
// Example:
//
//	WithRateLimit(10, 5) // Allow 10 tasks/sec with burst of 5
func WithRateLimit(tasksPerSecond float64, burst int) Option {
	return func(cfg *config) {
		if tasksPerSecond > 0 && burst > 0 {
			cfg.rateLimiter = rate.NewLimiter(rate.Limit(tasksPerSecond), burst)
		}
	}
}

// WithLockedThreads wires every worker to its own OS thread for the worker's
// whole lifetime, so the pool runs exactly N dedicated threads.
func WithLockedThreads() Option {
	return func(cfg *config) {
		cfg.bindThread = func(int) (func(), error) {
			return cpu.LockThread(), nil
		}
	}
}

// WithCPUAffinity locks every worker to its own OS thread and, where the
// platform supports it, pins worker i to the (i % n)-th of the n CPUs the
// process is allowed to run on. A pinning failure makes New fail with
// ErrWorkerStart.
func WithCPUAffinity() Option {
	return func(cfg *config) {
		cfg.bindThread = cpu.SetupWorkerAffinity
	}
}

// WithBeforeTaskStart sets a hook called by the worker right before a task runs.
// Hooks run on the worker goroutine and must not panic.
func WithBeforeTaskStart(fn func(taskID int64)) Option {
	return func(cfg *config) {
		cfg.beforeTaskStart = fn
	}
}

// WithOnTaskEnd sets a hook called by the worker after a task's result has
// been delivered. err is the error handed to the task's future, if any.
// Hooks run on the worker goroutine and must not panic.
func WithOnTaskEnd(fn func(taskID int64, err error)) Option {
	return func(cfg *config) {
		cfg.onTaskEnd = fn
	}
}
