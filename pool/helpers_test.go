package pool

import (
	"fmt"
	"testing"
	"time"
)

// defaultWorkerCounts covers the single-worker path and a few parallel sizes.
var defaultWorkerCounts = []int{1, 2, 4, 8}

// runWorkerCountTest runs testFunc once per worker count as a named subtest.
func runWorkerCountTest(t *testing.T, testFunc func(t *testing.T, workers int), counts ...int) {
	if len(counts) == 0 {
		counts = defaultWorkerCounts
	}

	for _, n := range counts {
		t.Run(workersName(n), func(t *testing.T) {
			testFunc(t, n)
		})
	}
}

func workersName(n int) string {
	if n == 1 {
		return "1 worker"
	}
	return fmt.Sprintf("%d workers", n)
}

// withThreadBinder replaces the worker thread binding; tests use it to force
// start-up failures.
func withThreadBinder(fn func(workerID int) (func(), error)) Option {
	return func(cfg *config) {
		cfg.bindThread = fn
	}
}

// mustNew creates a pool or fails the test, and shuts it down at cleanup if
// the test has not done so already.
func mustNew(t *testing.T, workers int, opts ...Option) *Pool {
	t.Helper()

	p, err := New(workers, opts...)
	if err != nil {
		t.Fatalf("failed to create pool: %v", err)
	}
	t.Cleanup(func() {
		_ = p.ShutdownWithTimeout(5 * time.Second)
	})
	return p
}
