// Package timer wraps a monotonic wall clock and, on amd64, an invariant
// TSC cycle counter, reporting per-tick precision and a calibrated
// per-sample measurement overhead.
//
// Overview
//
//   - Timer.Now returns an Instant from whichever backend is active.
//   - Timer.Since computes elapsed duration between two Instants.
//   - Timer.Granularity reports the clock's minimum observable tick,
//     measured once per process and cached.
//   - Timer.SampleOverhead(iters) reports the calibrated cost the harness
//     itself adds to a sample of the given shape, to be subtracted from
//     every recorded sample duration.
//
// Calibration happens at most once per Timer (guarded by sync.Once) and
// is shared by every benchmark entry that uses that Timer; a separately
// constructed Timer calibrates again.
package timer
