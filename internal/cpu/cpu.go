// Package cpu binds pool workers to operating system threads and, where the
// platform allows it, to individual CPU cores.
package cpu

import "runtime"

// LockThread wires the calling goroutine to its current OS thread for the
// lifetime of the worker. The returned function undoes the lock.
func LockThread() func() {
	runtime.LockOSThread()
	return runtime.UnlockOSThread
}

// foldIndex maps an arbitrary worker index onto [0, n).
func foldIndex(i, n int) int {
	if i < 0 {
		i = -i
	}
	return i % n
}
