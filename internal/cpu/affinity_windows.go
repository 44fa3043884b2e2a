//go:build windows

package cpu

import (
	"fmt"
	"runtime"

	"golang.org/x/sys/windows"
)

var (
	kernel32              = windows.NewLazySystemDLL("kernel32.dll")
	setThreadAffinityMask = kernel32.NewProc("SetThreadAffinityMask")
)

// pinToCore pins the current OS thread to a specific CPU core.
// Must be called after runtime.LockOSThread().
//
// Returns the previous affinity mask on success.
func pinToCore(cpuID int) (uintptr, error) {
	cpuID = foldIndex(cpuID, runtime.NumCPU())

	// Bit N = CPU N, so for CPU 0 it's 1, for CPU 1 it's 2, etc.
	mask := uintptr(1) << cpuID

	prevMask, _, err := setThreadAffinityMask.Call(uintptr(windows.CurrentThread()), mask)
	if prevMask == 0 {
		return 0, fmt.Errorf("SetThreadAffinityMask cpu %d: %w", cpuID, err)
	}

	return prevMask, nil
}

// SetupWorkerAffinity locks the calling goroutine to its OS thread and pins
// that thread to CPU workerID % NumCPU.
// On success it returns a release function that must be deferred; on failure
// the thread is already unlocked.
func SetupWorkerAffinity(workerID int) (func(), error) {
	runtime.LockOSThread()
	if _, err := pinToCore(workerID); err != nil {
		runtime.UnlockOSThread()
		return nil, err
	}

	return runtime.UnlockOSThread, nil
}
