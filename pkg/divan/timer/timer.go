package timer

import (
	"sync"
	"time"
)

// Instant is an opaque point in time produced by a Timer. Instants from
// different Timer instances, or different backends, must never be mixed.
type Instant struct {
	wall time.Time
	raw  uint64
}

type backend interface {
	now() Instant
	elapsed(start, end Instant) time.Duration
	name() string
}

// Timer wraps a monotonic clock backend and the calibration state derived
// from it. The zero value is not usable; use New.
type Timer struct {
	b backend

	calibrateOnce sync.Once
	granularity   time.Duration
	overheadPerIt time.Duration
}

// New selects the best available backend: an invariant TSC cycle counter
// where the platform exposes one, falling back to the monotonic wall
// clock everywhere else.
func New() *Timer {
	b, ok := newTSCBackend()
	if !ok {
		b = newWallBackend()
	}
	return &Timer{b: b}
}

// NewWallClock forces the portable wall-clock backend, regardless of
// platform support for a cycle counter. Useful for tests that need
// reproducible, platform-independent timing behavior.
func NewWallClock() *Timer {
	return &Timer{b: newWallBackend()}
}

// Now returns the current Instant. It never blocks.
func (t *Timer) Now() Instant {
	return t.b.now()
}

// Elapsed returns the duration between two Instants obtained from this
// Timer, end assumed to be no earlier than start.
func (t *Timer) Elapsed(start, end Instant) time.Duration {
	return t.b.elapsed(start, end)
}

// Since is a convenience for Elapsed(start, t.Now()).
func (t *Timer) Since(start Instant) time.Duration {
	return t.Elapsed(start, t.Now())
}

// BackendName reports which backend is active ("wall" or "tsc"), mostly
// for diagnostics and tests.
func (t *Timer) BackendName() string {
	return t.b.name()
}

// Granularity is the clock's minimum observable non-zero delta, measured
// once per Timer and cached thereafter.
func (t *Timer) Granularity() time.Duration {
	t.ensureCalibrated()
	return t.granularity
}

// SampleOverhead reports the calibrated per-sample measurement overhead
// for a sample shaped like iters iterations of empty work. The scheduler
// subtracts this (clamped at zero) from every recorded sample duration.
func (t *Timer) SampleOverhead(iters uint64) time.Duration {
	t.ensureCalibrated()
	if iters == 0 {
		return 0
	}
	return time.Duration(uint64(t.overheadPerIt) * iters)
}

func (t *Timer) ensureCalibrated() {
	t.calibrateOnce.Do(func() {
		t.granularity = measureGranularity(t)
		t.overheadPerIt = measureOverheadPerIteration(t, t.granularity)
	})
}

// measureGranularity repeatedly reads Now() back-to-back and returns the
// smallest non-zero delta observed across a short loop, per spec: the
// scheduler uses this floor to size samples so their duration dwarfs the
// clock's own resolution.
func measureGranularity(t *Timer) time.Duration {
	const probes = 200
	var min time.Duration
	prev := t.Now()
	for i := 0; i < probes; i++ {
		cur := t.Now()
		if d := t.Elapsed(prev, cur); d > 0 && (min == 0 || d < min) {
			min = d
		}
		prev = cur
	}
	if min == 0 {
		// Clock never advanced across the loop; assume 1ns to avoid a
		// divide-by-zero downstream, still effectively "as fine as we can tell".
		min = 1
	}
	return min
}

// measureOverheadPerIteration times an empty sample shaped the same way
// a real sample loop is shaped (same number of black-box round trips),
// at an iteration count large enough to clear the clock's granularity,
// and returns the mean per-iteration cost.
func measureOverheadPerIteration(t *Timer, granularity time.Duration) time.Duration {
	iters := uint64(1)
	for {
		d := timeEmptySample(t, iters)
		if d >= granularity*1000 || iters >= 1<<30 {
			return time.Duration(uint64(d) / iters)
		}
		iters *= 2
	}
}

func timeEmptySample(t *Timer, iters uint64) time.Duration {
	start := t.Now()
	var sink uint64
	for i := uint64(0); i < iters; i++ {
		sink += emptyBarrier(i)
	}
	end := t.Now()
	keepAlive(sink)
	return t.Elapsed(start, end)
}

//go:noinline
func emptyBarrier(v uint64) uint64 { return v }

var keepAliveSink uint64

//go:noinline
func keepAlive(v uint64) { keepAliveSink = v }
