//go:build !linux && !darwin && !windows

package cpu

import "runtime"

// SetupWorkerAffinity locks the goroutine to an OS thread.
// CPU pinning is not implemented on this platform.
func SetupWorkerAffinity(workerID int) (func(), error) {
	runtime.LockOSThread()

	return runtime.UnlockOSThread, nil
}
