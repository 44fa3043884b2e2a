// Package metrics exports pool activity as Prometheus collectors.
package metrics

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/utkarsh5026/threadpool/internal/types"
)

// Task outcome label values.
const (
	StatusSuccess = "success"
	StatusFailure = "failure"
	StatusPanic   = "panic"
)

// Collector holds the Prometheus metrics of one pool. A nil *Collector is valid
// and records nothing, so callers never need to check whether metrics are on.
type Collector struct {
	TasksSubmitted prometheus.Counter
	TasksRejected  prometheus.Counter
	TasksCompleted *prometheus.CounterVec
	TaskDuration   prometheus.Histogram
	QueueDepth     prometheus.Gauge
	ActiveWorkers  prometheus.Gauge
	WorkerCount    prometheus.Gauge
}

// New creates the collectors for the pool called poolName and registers them
// with reg. Registration is all-or-nothing: on failure, collectors registered
// so far are unregistered again.
func New(reg prometheus.Registerer, poolName string) (*Collector, error) {
	labels := prometheus.Labels{"pool": poolName}

	c := &Collector{
		TasksSubmitted: prometheus.NewCounter(prometheus.CounterOpts{
			Name:        "threadpool_tasks_submitted_total",
			Help:        "Total number of tasks accepted by the pool",
			ConstLabels: labels,
		}),
		TasksRejected: prometheus.NewCounter(prometheus.CounterOpts{
			Name:        "threadpool_tasks_rejected_total",
			Help:        "Total number of tasks rejected because the pool was closed",
			ConstLabels: labels,
		}),
		TasksCompleted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "threadpool_tasks_completed_total",
			Help:        "Total number of tasks executed, by outcome",
			ConstLabels: labels,
		}, []string{"status"}),
		TaskDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:        "threadpool_task_duration_seconds",
			Help:        "Duration of task execution in seconds",
			Buckets:     prometheus.DefBuckets,
			ConstLabels: labels,
		}),
		QueueDepth: prometheus.NewGauge(prometheus.GaugeOpts{
			Name:        "threadpool_queue_depth",
			Help:        "Current number of tasks waiting in the queue",
			ConstLabels: labels,
		}),
		ActiveWorkers: prometheus.NewGauge(prometheus.GaugeOpts{
			Name:        "threadpool_active_workers",
			Help:        "Current number of workers executing a task",
			ConstLabels: labels,
		}),
		WorkerCount: prometheus.NewGauge(prometheus.GaugeOpts{
			Name:        "threadpool_worker_count",
			Help:        "Number of live workers in the pool",
			ConstLabels: labels,
		}),
	}

	collectors := []prometheus.Collector{
		c.TasksSubmitted, c.TasksRejected, c.TasksCompleted,
		c.TaskDuration, c.QueueDepth, c.ActiveWorkers, c.WorkerCount,
	}
	for i, col := range collectors {
		if err := reg.Register(col); err != nil {
			for _, done := range collectors[:i] {
				reg.Unregister(done)
			}
			return nil, err
		}
	}

	return c, nil
}

// Unregister removes every collector from reg.
func (c *Collector) Unregister(reg prometheus.Registerer) {
	if c == nil {
		return
	}
	reg.Unregister(c.TasksSubmitted)
	reg.Unregister(c.TasksRejected)
	reg.Unregister(c.TasksCompleted)
	reg.Unregister(c.TaskDuration)
	reg.Unregister(c.QueueDepth)
	reg.Unregister(c.ActiveWorkers)
	reg.Unregister(c.WorkerCount)
}

// Offered records a task about to be pushed onto the queue. It must be
// followed by exactly one of Accepted or Rejected.
func (c *Collector) Offered() {
	if c == nil {
		return
	}
	c.QueueDepth.Inc()
}

// Accepted records a task that the queue took.
func (c *Collector) Accepted() {
	if c == nil {
		return
	}
	c.TasksSubmitted.Inc()
}

// Rejected records a submission refused by a closed pool.
func (c *Collector) Rejected() {
	if c == nil {
		return
	}
	c.QueueDepth.Dec()
	c.TasksRejected.Inc()
}

// Dequeued records a task leaving the queue.
func (c *Collector) Dequeued() {
	if c == nil {
		return
	}
	c.QueueDepth.Dec()
}

// Started records a worker beginning to execute a task. Time spent waiting on
// a rate limiter is not counted.
func (c *Collector) Started() {
	if c == nil {
		return
	}
	c.ActiveWorkers.Inc()
}

// Finished records the outcome and duration of a task and the worker going idle.
func (c *Collector) Finished(elapsed time.Duration, err error) {
	if c == nil {
		return
	}
	c.ActiveWorkers.Dec()
	c.TaskDuration.Observe(elapsed.Seconds())
	c.TasksCompleted.WithLabelValues(status(err)).Inc()
}

// WorkerUp records a worker entering its loop.
func (c *Collector) WorkerUp() {
	if c == nil {
		return
	}
	c.WorkerCount.Inc()
}

// WorkerDown records a worker leaving its loop.
func (c *Collector) WorkerDown() {
	if c == nil {
		return
	}
	c.WorkerCount.Dec()
}

func status(err error) string {
	switch {
	case err == nil:
		return StatusSuccess
	case errors.Is(err, types.ErrPanic):
		return StatusPanic
	default:
		return StatusFailure
	}
}
