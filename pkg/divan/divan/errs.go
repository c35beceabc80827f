package divan

import "errors"

var (
	// ErrConfig indicates a malformed or contradictory configuration:
	// a bad flag value, an env var that doesn't parse, or a divan.toml
	// field out of range. Fatal before any benchmark runs.
	ErrConfig = errors.New("divan: invalid configuration")

	// ErrBenchmarkPanic indicates a registered benchmark's body panicked
	// during a sample. The panic is recovered per entry; the entry is
	// marked failed and the run continues with the remaining entries.
	ErrBenchmarkPanic = errors.New("divan: benchmark panicked")

	// ErrAllocatorConflict indicates allocation profiling could not be
	// trusted for a run (Profiler.Start observed a slot's window still
	// open from a previous sample — see pkg/divan/alloc's Start/
	// Conflicted). Disables the allocation columns; does not stop the run.
	ErrAllocatorConflict = errors.New("divan: allocation profiler conflict")

	// ErrNoMatch indicates a name filter matched no registered entry.
	ErrNoMatch = errors.New("divan: filter matched no benchmarks")

	// ErrPinUnavailable indicates pinning a pool worker to the main
	// thread's CPU affinity failed. Measurement continues unpinned with
	// reduced fidelity for contention benchmarks.
	ErrPinUnavailable = errors.New("divan: cpu pinning unavailable")
)
