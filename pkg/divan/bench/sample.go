package bench

import (
	"time"

	"github.com/ja7ad/divan/pkg/divan/alloc"
	"github.com/ja7ad/divan/pkg/divan/counter"
)

// Sample is one measured run of Iterations iterations. Duration is the
// measured elapsed time minus calibrated loop overhead, clamped so it is
// never negative (invariant: duration >= 0).
type Sample struct {
	Duration   time.Duration
	Iterations uint64
	Counters   counter.Totals
	Alloc      *alloc.Tally
}

// PerIteration returns the sample's mean per-iteration duration. Callers
// must ensure Iterations > 0.
func (s Sample) PerIteration() time.Duration {
	return time.Duration(int64(s.Duration) / int64(s.Iterations))
}
