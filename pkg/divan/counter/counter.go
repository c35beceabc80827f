// Package counter implements Divan's per-iteration throughput counters:
// item count, byte count, char count, and cycle count. Counters attach to
// a benchmark from (highest precedence first) an input-counter function,
// a global configuration default, an entry attribute, or a group default;
// resolving that precedence is the caller's job (pkg/divan/divan/config.go).
// This package only defines the counter kinds and the arithmetic for
// summing and deriving throughput from them.
package counter

import "time"

// Kind identifies which of the four counter slots a value belongs to.
type Kind int

const (
	// ItemsCount tallies user-defined logical items processed per iteration.
	ItemsCount Kind = iota
	// BytesCount tallies bytes processed per iteration.
	BytesCount
	// CharsCount tallies characters (runes) processed per iteration.
	CharsCount
	// CyclesCount tallies CPU cycles attributed per iteration.
	CyclesCount

	numKinds = 4
)

func (k Kind) String() string {
	switch k {
	case ItemsCount:
		return "items"
	case BytesCount:
		return "bytes"
	case CharsCount:
		return "chars"
	case CyclesCount:
		return "cycles"
	default:
		return "unknown"
	}
}

// Totals holds the four per-sample counter totals, indexed by Kind.
// Each total must equal the sum of the per-iteration values contributed
// by every iteration in the sample; there is no fractional attribution.
type Totals [numKinds]uint64

// Add accumulates one iteration's per-kind values into the totals.
func (t *Totals) Add(kind Kind, n uint64) {
	t[kind] += n
}

// Merge adds another Totals element-wise, used when combining per-thread
// contributions in a multi-threaded sample.
func (t *Totals) Merge(other Totals) {
	for k := range t {
		t[k] += other[k]
	}
}

// Throughput reports total/duration for the given kind: items, bytes, or
// chars per second, and Hertz for CyclesCount.
func (t Totals) Throughput(kind Kind, d time.Duration) float64 {
	secs := d.Seconds()
	if secs <= 0 {
		return 0
	}
	return float64(t[kind]) / secs
}

// Active reports whether any iteration contributed to the given kind,
// used by the reporter to decide which throughput columns to display.
func (t Totals) Active(kind Kind) bool {
	return t[kind] > 0
}
