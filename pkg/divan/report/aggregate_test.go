package report

import (
	"testing"
	"time"

	"github.com/ja7ad/divan/pkg/divan/bench"
	"github.com/ja7ad/divan/pkg/divan/counter"
	"github.com/stretchr/testify/require"
)

func TestAggregateOrdersFastestSlowestMedianMean(t *testing.T) {
	samples := []bench.Sample{
		{Duration: 30 * time.Millisecond, Iterations: 10}, // 3ms/iter
		{Duration: 10 * time.Millisecond, Iterations: 10}, // 1ms/iter
		{Duration: 20 * time.Millisecond, Iterations: 10}, // 2ms/iter
	}

	s := Aggregate(samples)

	require.Equal(t, 1*time.Millisecond, s.Fastest)
	require.Equal(t, 3*time.Millisecond, s.Slowest)
	require.Equal(t, 2*time.Millisecond, s.Median)
	require.LessOrEqual(t, s.Fastest, s.Mean)
	require.LessOrEqual(t, s.Mean, s.Slowest)
	require.Equal(t, 3, s.Samples)
	require.Equal(t, uint64(30), s.Iters)
}

func TestAggregateEvenSampleCountAveragesMedian(t *testing.T) {
	samples := []bench.Sample{
		{Duration: 10 * time.Millisecond, Iterations: 10},
		{Duration: 20 * time.Millisecond, Iterations: 10},
		{Duration: 30 * time.Millisecond, Iterations: 10},
		{Duration: 40 * time.Millisecond, Iterations: 10},
	}

	s := Aggregate(samples)
	require.Equal(t, 2500*time.Microsecond, s.Median)
}

func TestAggregateEmptyReturnsZeroValue(t *testing.T) {
	s := Aggregate(nil)
	require.Equal(t, Statistics{}, s)
}

func TestAggregateCounterThroughput(t *testing.T) {
	samples := []bench.Sample{
		{Duration: time.Second, Iterations: 1, Counters: counter.Totals{counter.BytesCount: 1000}},
		{Duration: time.Second, Iterations: 1, Counters: counter.Totals{counter.BytesCount: 3000}},
	}
	s := Aggregate(samples)
	require.InDelta(t, 2000.0, s.Throughput(counter.BytesCount), 1e-9)
}
