//go:build !linux

package bench

// CPU affinity pinning has no portable equivalent outside Linux in this
// implementation; pool workers run unpinned on every other platform.
// This degrades measurement fidelity for contention benchmarks but is
// not fatal.
func pinMainThreadToCPU0() int { return 0 }

func pinCurrentThreadToCPU(_ int) error { return nil }
