package bench

import (
	"time"

	"github.com/ja7ad/divan/pkg/divan/counter"
)

// Options is a configuration snapshot for one benchmark entry, merged
// from (ascending precedence) entry defaults, ancestor group defaults,
// global defaults, environment, and CLI.
type Options struct {
	SampleCount int
	SampleSize  uint64 // 0 => chosen automatically by the scheduler
	MinTime     time.Duration
	MaxTime     time.Duration
	SkipExtTime bool

	// Threads lists the thread counts to sweep. An empty slice means
	// "run once, single-threaded". A 0 entry means "available
	// parallelism" and is resolved by the caller before reaching the
	// scheduler.
	Threads []int

	CounterKind  counter.Kind
	CounterIsSet bool

	// CounterValue, when non-zero, is a fixed per-iteration count applied
	// to CounterKind for benchmarks that don't supply their own
	// per-input counter — the realization of the CLI's --items-count/
	// --bytes-count/--chars-count N flags, which attach a uniform
	// external throughput count rather than one derived from the
	// benchmark's own data.
	CounterValue uint64

	Ignore bool
}

// DefaultOptions returns the global defaults: 100 samples with an
// automatically-chosen sample size, no minimum time, and a five-second
// maximum per (entry, thread-count) run, which bounds worst-case total
// suite time without needing a human to tune it for every benchmark.
func DefaultOptions() Options {
	return Options{
		SampleCount: 100,
		SampleSize:  0,
		MinTime:     0,
		MaxTime:     5 * time.Second,
		SkipExtTime: false,
		Threads:     nil,
	}
}

// Merge overlays non-zero-valued fields of override onto a copy of o,
// returning the result. Used to apply successive precedence layers:
// entry defaults, then group defaults, then global defaults, then
// environment, then CLI.
func (o Options) Merge(override Options) Options {
	out := o
	if override.SampleCount != 0 {
		out.SampleCount = override.SampleCount
	}
	if override.SampleSize != 0 {
		out.SampleSize = override.SampleSize
	}
	if override.MinTime != 0 {
		out.MinTime = override.MinTime
	}
	if override.MaxTime != 0 {
		out.MaxTime = override.MaxTime
	}
	if override.SkipExtTime {
		out.SkipExtTime = true
	}
	if len(override.Threads) > 0 {
		out.Threads = override.Threads
	}
	if override.CounterIsSet {
		out.CounterKind = override.CounterKind
		out.CounterIsSet = true
		out.CounterValue = override.CounterValue
	}
	if override.Ignore {
		out.Ignore = true
	}
	return out
}

// ResolvedThreads returns the thread counts to sweep, substituting
// availableParallelism (at least 1) for any 0 entry and defaulting to a
// single sequential run when Threads is empty.
func (o Options) ResolvedThreads(availableParallelism int) []int {
	if len(o.Threads) == 0 {
		return []int{1}
	}
	out := make([]int, len(o.Threads))
	for i, n := range o.Threads {
		if n == 0 {
			n = availableParallelism
			if n < 1 {
				n = 1
			}
		}
		out[i] = n
	}
	return out
}
