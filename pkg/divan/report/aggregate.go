package report

import (
	"sort"
	"time"

	"github.com/ja7ad/divan/pkg/divan/alloc"
	"github.com/ja7ad/divan/pkg/divan/bench"
	"github.com/ja7ad/divan/pkg/divan/counter"
)

// Statistics is the robust-statistics summary derived from one
// benchmark's sample vector at a given thread count: fastest, slowest,
// median, and mean per-iteration durations, plus counter throughputs and
// allocation totals when profiling was active.
type Statistics struct {
	Fastest time.Duration
	Slowest time.Duration
	Median  time.Duration
	Mean    time.Duration

	Samples int
	Iters   uint64

	Counters     counter.Totals
	TotalElapsed time.Duration // sum of sample durations, the denominator for counter throughput

	Alloc *alloc.Tally
}

// Throughput reports the aggregate throughput for the given counter
// kind: Σ counter_totals / Σ sample_durations, Hertz for CyclesCount.
func (s Statistics) Throughput(kind counter.Kind) float64 {
	return s.Counters.Throughput(kind, s.TotalElapsed)
}

// Aggregate computes Statistics from a sample vector. An empty vector
// (an ignored or zero-sample entry) yields the zero Statistics.
func Aggregate(samples []bench.Sample) Statistics {
	if len(samples) == 0 {
		return Statistics{}
	}

	perIter := make([]time.Duration, len(samples))
	stats := Statistics{Samples: len(samples)}

	var allocTallies []alloc.Tally
	for i, s := range samples {
		perIter[i] = s.PerIteration()
		stats.Iters += s.Iterations
		stats.TotalElapsed += s.Duration
		stats.Counters.Merge(s.Counters)
		if s.Alloc != nil {
			allocTallies = append(allocTallies, *s.Alloc)
		}
	}

	sorted := append([]time.Duration(nil), perIter...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	stats.Fastest = sorted[0]
	stats.Slowest = sorted[len(sorted)-1]
	stats.Median = median(sorted)

	if stats.Iters > 0 {
		stats.Mean = time.Duration(int64(stats.TotalElapsed) / int64(stats.Iters))
	}

	if len(allocTallies) > 0 {
		merged := alloc.Merge(allocTallies...)
		stats.Alloc = &merged
	}

	return stats
}

func median(sorted []time.Duration) time.Duration {
	n := len(sorted)
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}
