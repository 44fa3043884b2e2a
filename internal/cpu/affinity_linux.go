//go:build linux

package cpu

import (
	"errors"
	"fmt"
	"runtime"

	"golang.org/x/sys/unix"
)

// pinToCore pins the current OS thread to one of the CPUs the process may run
// on. Must be called after runtime.LockOSThread().
//
// Workers are spread over the allowed set in order, so on a process limited
// to CPUs {2,3} worker 0 gets CPU 2 and worker 1 gets CPU 3.
func pinToCore(workerID int) (int, error) {
	var allowed unix.CPUSet
	if err := unix.SchedGetaffinity(0, &allowed); err != nil {
		return 0, fmt.Errorf("sched_getaffinity: %w", err)
	}

	cpuID, ok := pickCPU(&allowed, workerID)
	if !ok {
		return 0, errors.New("affinity mask allows no CPUs")
	}

	var mask unix.CPUSet
	mask.Zero()
	mask.Set(cpuID)

	if err := unix.SchedSetaffinity(0, &mask); err != nil { // 0 = current thread
		return 0, fmt.Errorf("sched_setaffinity cpu %d: %w", cpuID, err)
	}

	return cpuID, nil
}

// pickCPU returns the (workerID % n)-th of the n CPUs set in allowed.
func pickCPU(allowed *unix.CPUSet, workerID int) (int, bool) {
	cpus := setCPUs(allowed)
	if len(cpus) == 0 {
		return 0, false
	}
	return cpus[foldIndex(workerID, len(cpus))], true
}

// setCPUs lists the CPUs set in s in ascending order.
func setCPUs(s *unix.CPUSet) []int {
	n := s.Count()
	cpus := make([]int, 0, n)
	for cpu := 0; len(cpus) < n; cpu++ {
		if s.IsSet(cpu) {
			cpus = append(cpus, cpu)
		}
	}
	return cpus
}

// SetupWorkerAffinity locks the calling goroutine to its OS thread and pins
// that thread to one CPU of the process's affinity mask, chosen by workerID.
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
