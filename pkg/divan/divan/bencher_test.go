package divan

import (
	"testing"

	"github.com/ja7ad/divan/pkg/divan/counter"
	"github.com/stretchr/testify/require"
)

func TestBenchSetsRegion(t *testing.T) {
	b := newBencher(false)
	calls := 0
	Bench(b, func() int {
		calls++
		return calls
	})

	require.True(t, b.set)
	require.False(t, b.local)
	region := b.region(5)
	require.Equal(t, 5, calls)
	require.Equal(t, counter.Totals{}, region.Counters)
}

func TestBenchLocalForcesLocal(t *testing.T) {
	b := newBencher(false)
	BenchLocal(b, func() int { return 1 })

	require.True(t, b.set)
	require.True(t, b.local)
}

func TestBencherCountInputsAs(t *testing.T) {
	b := newBencher(false)
	b.CountInputsAs(counter.BytesCount)

	require.True(t, b.counterIsSet)
	require.Equal(t, counter.BytesCount, b.counterKind)
}

// A no-input benchmark with CountInputsAs contributes 1 per iteration
// towards the attached kind, so its throughput column is real data
// rather than an always-zero placeholder.
func TestBenchCountInputsAsContributesPerIteration(t *testing.T) {
	b := newBencher(false)
	b.CountInputsAs(counter.ItemsCount)
	Bench(b, func() int { return 1 })

	region := b.region(10)
	require.Equal(t, uint64(10), region.Counters[counter.ItemsCount])
}

func TestWithInputsBenchValuesConsumesGeneratedInputs(t *testing.T) {
	b := newBencher(false)
	n := 0
	var sum int
	BenchValues(WithInputs(b, func() int { n++; return n }), func(v int) int {
		sum += v
		return v
	})

	require.True(t, b.set)
	region := b.region(10)
	require.Greater(t, sum, 0)
	require.Equal(t, counter.Totals{}, region.Counters)
}

func TestWithInputsBenchRefsMutatesSharedPool(t *testing.T) {
	b := newBencher(false)
	BenchRefs(WithInputs(b, func() int { return 0 }), func(p *int) int {
		*p++
		return *p
	})

	require.True(t, b.set)
	b.region(pool) // run exactly once through the full pool
}

func TestInputsInputCounterIsAppliedOnValues(t *testing.T) {
	b := newBencher(false)
	in := WithInputs(b, func() int { return 4 }).
		InputCounter(func(v int) counter.Totals {
			var t counter.Totals
			t.Add(counter.BytesCount, uint64(v))
			return t
		})
	BenchValues(in, func(v int) int { return v })

	region := b.region(10)
	require.Equal(t, uint64(40), region.Counters[counter.BytesCount])
}

func TestInputsCountInputsAsSetsBencherCounter(t *testing.T) {
	b := newBencher(false)
	in := WithInputs(b, func() int { return 1 }).
		CountInputsAs(counter.ItemsCount)
	BenchValues(in, func(v int) int { return v })

	require.True(t, b.counterIsSet)
	require.Equal(t, counter.ItemsCount, b.counterKind)
}
