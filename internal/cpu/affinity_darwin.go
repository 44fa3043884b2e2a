//go:build darwin

package cpu

import (
	"runtime"
)

// SetupWorkerAffinity locks the goroutine to an OS thread.
// CPU pinning is not available on macOS, so this never fails.
func SetupWorkerAffinity(workerID int) (func(), error) {
	runtime.LockOSThread()

	return runtime.UnlockOSThread, nil
}
