// Package types holds the type-erased task and the one-shot result channel
// shared between the pool and its workers.
package types

import (
	"errors"
	"fmt"
	"runtime"
)

var (
	// ErrPanic is wrapped by the error delivered to a future whose task panicked.
	ErrPanic = errors.New("task panicked")

	// ErrGoexit is delivered to a future whose task called runtime.Goexit.
	// It wraps ErrPanic.
	ErrGoexit = fmt.Errorf("%w: task called runtime.Goexit", ErrPanic)
)

// Task is a type-erased unit of work. Its closure owns the submitted function,
// any bound arguments, and the write side of the task's result channel.
type Task struct {
	ID  int64
	run func() error
}

// NewTask wraps fn so that running the task resolves p with fn's outcome.
// A panic inside fn is recovered and delivered as an error wrapping ErrPanic.
// If fn calls runtime.Goexit the future still resolves, with ErrGoexit, but
// the goroutine running the task exits.
func NewTask[R any](id int64, fn func() (R, error), p *Promise[R]) Task {
	return Task{
		ID: id,
		run: func() error {
			normalReturn := false
			defer func() {
				if !normalReturn {
					var zero R
					p.Resolve(zero, ErrGoexit)
				}
			}()

			value, err := callWithRecovery(fn)
			p.Resolve(value, err)
			normalReturn = true
			return err
		},
	}
}

// Run executes the task and returns the error that was delivered to its future.
// Run does not return if the task calls runtime.Goexit.
func (t Task) Run() error {
	return t.run()
}

// callWithRecovery invokes fn and converts a panic into an error carrying the
// panic value and the stack of the panicking goroutine.
func callWithRecovery[R any](fn func() (R, error)) (result R, err error) {
	defer func() {
		if r := recover(); r != nil {
			buf := make([]byte, 4096)
			n := runtime.Stack(buf, false)
			err = fmt.Errorf("%w: %v\nstack trace:\n%s", ErrPanic, r, buf[:n])
		}
	}()

	return fn()
}
