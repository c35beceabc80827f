package bench

import (
	"fmt"

	"github.com/ja7ad/divan/pkg/divan/blackbox"
	"github.com/ja7ad/divan/pkg/divan/counter"
)

// Region is what running a RegionFunc inside the timed region produces:
// the per-kind counter totals accumulated across all iterations, and an
// optional Defer thunk that must run after the timed region ends (used
// when SkipExtTime parks outputs for out-of-region disposal instead of
// dropping them inline).
type Region struct {
	Counters counter.Totals
	Defer    func()
}

// RegionFunc runs exactly iters iterations of a benchmark body and
// reports the resulting Region. It must be shaped identically every time
// it is called with the same iters value: the scheduler sizes samples
// from probe runs of it. The overhead subtracted from each sample is the
// timer's own calibrated empty-loop cost (timer.SampleOverhead), not a
// measurement of this function.
type RegionFunc func(iters uint64) Region

// RunNoInput builds a RegionFunc for the no-input shape: for each
// iteration, call body, push the result through a black-box barrier, and
// either drop it immediately or park it for deferred disposal when
// skipExtTime is set. inputCounter, if non-nil, is invoked once per
// iteration to accumulate counter totals.
func RunNoInput[O any](body func() O, inputCounter func() counter.Totals, skipExtTime bool) RegionFunc {
	return func(iters uint64) Region {
		var totals counter.Totals
		if !skipExtTime {
			for i := uint64(0); i < iters; i++ {
				blackbox.Drop(body())
				if inputCounter != nil {
					totals.Merge(inputCounter())
				}
			}
			return Region{Counters: totals}
		}

		parked := make([]O, iters)
		for i := uint64(0); i < iters; i++ {
			parked[i] = blackbox.Opaque(body())
			if inputCounter != nil {
				totals.Merge(inputCounter())
			}
		}
		return Region{
			Counters: totals,
			Defer: func() {
				for i := range parked {
					blackbox.Drop(parked[i])
				}
			},
		}
	}
}

// RunValues builds a RegionFunc for the values-in/values-out shape:
// inputs are pre-generated into a fixed-size pool, and each iteration
// consumes inputs[i%len(inputs)] by value. Cycling through a bounded pool,
// rather than capping iters to len(inputs), keeps memory bounded for
// benchmarks whose chosen iteration count exceeds any practical pool size
// while still running exactly iters iterations (see DESIGN.md).
func RunValues[I, O any](inputs []I, body func(I) O, inputCounter func(I) counter.Totals, skipExtTime bool) RegionFunc {
	return func(iters uint64) Region {
		n := uint64(len(inputs))
		if n == 0 {
			return Region{}
		}
		var totals counter.Totals
		if !skipExtTime {
			for i := uint64(0); i < iters; i++ {
				in := blackbox.Opaque(inputs[i%n])
				blackbox.Drop(body(in))
				if inputCounter != nil {
					totals.Merge(inputCounter(inputs[i%n]))
				}
			}
			return Region{Counters: totals}
		}

		parked := make([]O, iters)
		for i := uint64(0); i < iters; i++ {
			in := blackbox.Opaque(inputs[i%n])
			parked[i] = blackbox.Opaque(body(in))
			if inputCounter != nil {
				totals.Merge(inputCounter(inputs[i%n]))
			}
		}
		return Region{
			Counters: totals,
			Defer: func() {
				for i := range parked {
					blackbox.Drop(parked[i])
				}
			},
		}
	}
}

// RunRefs builds a RegionFunc for the refs-in shape, covering both
// the refs-in/values-out and refs-in/refs-out cases: Go's GC
// makes the distinction between "owns a value" and "owns a reference to
// it" immaterial to disposal, so both are realized by passing &inputs[i]
// into body and handling the result exactly as RunValues does.
func RunRefs[I, O any](inputs []I, body func(*I) O, inputCounter func(*I) counter.Totals, skipExtTime bool) RegionFunc {
	return func(iters uint64) Region {
		n := uint64(len(inputs))
		if n == 0 {
			return Region{}
		}
		var totals counter.Totals
		if !skipExtTime {
			for i := uint64(0); i < iters; i++ {
				ref := blackbox.Opaque(&inputs[i%n])
				blackbox.Drop(body(ref))
				if inputCounter != nil {
					totals.Merge(inputCounter(ref))
				}
			}
			return Region{Counters: totals}
		}

		parked := make([]O, iters)
		for i := uint64(0); i < iters; i++ {
			ref := blackbox.Opaque(&inputs[i%n])
			parked[i] = blackbox.Opaque(body(ref))
			if inputCounter != nil {
				totals.Merge(inputCounter(ref))
			}
		}
		return Region{
			Counters: totals,
			Defer: func() {
				for i := range parked {
					blackbox.Drop(parked[i])
				}
			},
		}
	}
}

// runRegion executes run inside a recover, so a panicking benchmark
// body fails its own entry instead of crashing the process. The recover
// fires before any barrier the caller waits on afterwards, so a
// panicking participant in a multi-threaded sample cannot deadlock the
// others.
func runRegion(run RegionFunc, iters uint64) (region Region, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("benchmark body panicked: %v", r)
		}
	}()
	return run(iters), nil
}

// GenerateInputs pre-generates n inputs ahead of the timed region, as
// the refs-in and values-in shapes require.
func GenerateInputs[I any](gen func() I, n uint64) []I {
	out := make([]I, n)
	for i := range out {
		out[i] = gen()
	}
	return out
}
