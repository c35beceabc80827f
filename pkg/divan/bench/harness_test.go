package bench

import (
	"testing"

	"github.com/ja7ad/divan/pkg/divan/counter"
	"github.com/stretchr/testify/require"
)

func TestRunNoInputInvokesBodyOncePerIteration(t *testing.T) {
	calls := 0
	run := RunNoInput(func() int {
		calls++
		return calls
	}, nil, false)

	region := run(50)
	require.Equal(t, 50, calls)
	require.Equal(t, counter.Totals{}, region.Counters)
	require.Nil(t, region.Defer)
}

func TestRunNoInputSkipExtTimeParksOutputs(t *testing.T) {
	calls := 0
	run := RunNoInput(func() int {
		calls++
		return calls
	}, nil, true)

	region := run(10)
	require.Equal(t, 10, calls)
	require.NotNil(t, region.Defer)
	require.NotPanics(t, region.Defer)
}

func TestRunValuesConsumesPreGeneratedInputs(t *testing.T) {
	inputs := GenerateInputs(func() int { return 7 }, 20)
	require.Len(t, inputs, 20)

	var sum int
	run := RunValues(inputs, func(v int) int {
		sum += v
		return v * 2
	}, nil, false)

	region := run(20)
	require.Equal(t, 140, sum)
	require.Equal(t, counter.Totals{}, region.Counters)
}

func TestRunRefsPassesPointersIntoBody(t *testing.T) {
	inputs := GenerateInputs(func() int { return 1 }, 5)

	var touched int
	run := RunRefs(inputs, func(p *int) int {
		*p++
		touched++
		return *p
	}, nil, false)

	run(5)
	require.Equal(t, 5, touched)
	for _, v := range inputs {
		require.Equal(t, 2, v)
	}
}

func TestRunValuesInputCounterAccumulates(t *testing.T) {
	inputs := GenerateInputs(func() int { return 4 }, 10)

	run := RunValues(inputs, func(v int) int { return v }, func(v int) counter.Totals {
		var t counter.Totals
		t.Add(counter.BytesCount, uint64(v))
		return t
	}, false)

	region := run(10)
	require.Equal(t, uint64(40), region.Counters[counter.BytesCount])
}

func TestGenerateInputsLength(t *testing.T) {
	n := 0
	inputs := GenerateInputs(func() int { n++; return n }, 7)
	require.Equal(t, []int{1, 2, 3, 4, 5, 6, 7}, inputs)
}

func TestRunValuesCyclesThroughBoundedPool(t *testing.T) {
	inputs := GenerateInputs(func() int { return 1 }, 3)

	var calls int
	run := RunValues(inputs, func(v int) int {
		calls++
		return v
	}, nil, false)

	region := run(10)
	require.Equal(t, 10, calls)
	require.Equal(t, counter.Totals{}, region.Counters)
}

func TestRunRefsCyclesThroughBoundedPool(t *testing.T) {
	inputs := GenerateInputs(func() int { return 0 }, 2)

	run := RunRefs(inputs, func(p *int) int {
		*p++
		return *p
	}, nil, false)

	run(10) // 10 iterations over a 2-element pool: each element touched 5 times
	require.Equal(t, 5, inputs[0])
	require.Equal(t, 5, inputs[1])
}
