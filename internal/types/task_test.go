package types

import (
	"errors"
	"runtime"
	"strings"
	"testing"
	"time"
)

func TestTask_Run(t *testing.T) {
	t.Run("value delivered to future", func(t *testing.T) {
		promise, future := NewPromise[int](1)
		task := NewTask(1, func() (int, error) { return 21 * 2, nil }, promise)

		if err := task.Run(); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		value, err := future.Get()
		if err != nil || value != 42 {
			t.Errorf("expected 42, got value=%v err=%v", value, err)
		}
	})

	t.Run("error delivered unchanged", func(t *testing.T) {
		sentinel := errors.New("boom")
		promise, future := NewPromise[int](2)
		task := NewTask(2, func() (int, error) { return 0, sentinel }, promise)

		if err := task.Run(); !errors.Is(err, sentinel) {
			t.Errorf("expected run to report %v, got %v", sentinel, err)
		}
		if _, err := future.Get(); err != sentinel {
			t.Errorf("expected future error %v, got %v", sentinel, err)
		}
	})

	t.Run("panic converted to error", func(t *testing.T) {
		promise, future := NewPromise[string](3)
		task := NewTask(3, func() (string, error) { panic("kaboom") }, promise)

		runErr := task.Run()
		if !errors.Is(runErr, ErrPanic) {
			t.Fatalf("expected ErrPanic, got %v", runErr)
		}

		value, err := future.Get()
		if !errors.Is(err, ErrPanic) {
			t.Errorf("expected future error wrapping ErrPanic, got %v", err)
		}
		if !strings.Contains(err.Error(), "kaboom") {
			t.Errorf("expected panic value in error, got %q", err.Error())
		}
		if !strings.Contains(err.Error(), "stack trace") {
			t.Errorf("expected stack trace in error, got %q", err.Error())
		}
		if value != "" {
			t.Errorf("expected zero value, got %q", value)
		}
	})

	t.Run("goexit still resolves the future", func(t *testing.T) {
		promise, future := NewPromise[int](4)
		task := NewTask(4, func() (int, error) {
			runtime.Goexit()
			return 1, nil
		}, promise)

		returned := make(chan struct{})
		go func() {
			_ = task.Run()
			close(returned)
		}()

		select {
		case <-future.Done():
		case <-time.After(time.Second):
			t.Fatal("future of a task that called runtime.Goexit never resolved")
		}

		value, err := future.Get()
		if !errors.Is(err, ErrGoexit) || !errors.Is(err, ErrPanic) {
			t.Errorf("expected ErrGoexit wrapping ErrPanic, got %v", err)
		}
		if value != 0 {
			t.Errorf("expected zero value, got %d", value)
		}

		select {
		case <-returned:
			t.Error("Run returned normally after runtime.Goexit")
		case <-time.After(20 * time.Millisecond):
		}
	})
}
