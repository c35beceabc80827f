package divan

import (
	"testing"
	"time"

	"github.com/ja7ad/divan/pkg/divan/bench"
	"github.com/ja7ad/divan/pkg/divan/counter"
	"github.com/stretchr/testify/require"
)

func TestConfigResolveAppliesAscendingPrecedence(t *testing.T) {
	cfg := Config{
		Groups: []GroupDefault{
			{PathPrefix: "encode", Options: bench.Options{SampleCount: 50}},
		},
		Global: bench.Options{SampleCount: 100, MaxTime: 5 * time.Second},
		CLI:    bench.Options{SampleCount: 10},
	}

	entry := BenchmarkEntry{Path: "encode/json", Defaults: bench.Options{SampleSize: 8}}
	resolved := cfg.Resolve(entry)

	require.Equal(t, 10, resolved.SampleCount) // CLI wins over global and group
	require.Equal(t, uint64(8), resolved.SampleSize)
	require.Equal(t, 5*time.Second, resolved.MaxTime)
}

func TestConfigResolveGroupDefaultOnlyAppliesToMatchingPrefix(t *testing.T) {
	cfg := Config{
		Groups: []GroupDefault{
			{PathPrefix: "encode", Options: bench.Options{SampleCount: 50}},
		},
	}

	other := cfg.Resolve(BenchmarkEntry{Path: "decode/json"})
	require.Zero(t, other.SampleCount)

	matching := cfg.Resolve(BenchmarkEntry{Path: "encode/json"})
	require.Equal(t, 50, matching.SampleCount)
}

func TestResolveCounterPrefersBencherOverConfig(t *testing.T) {
	b := newBencher(false)
	b.CountInputsAs(counter.BytesCount)

	opts := bench.Options{CounterKind: counter.ItemsCount, CounterIsSet: true}
	kind, ok := ResolveCounter(b, opts)
	require.True(t, ok)
	require.Equal(t, counter.BytesCount, kind)
}

func TestResolveCounterFallsBackToConfig(t *testing.T) {
	b := newBencher(false)
	opts := bench.Options{CounterKind: counter.CharsCount, CounterIsSet: true}
	kind, ok := ResolveCounter(b, opts)
	require.True(t, ok)
	require.Equal(t, counter.CharsCount, kind)
}

func TestResolveCounterNoneSet(t *testing.T) {
	b := newBencher(false)
	kind, ok := ResolveCounter(b, bench.Options{})
	require.False(t, ok)
	require.Zero(t, kind)
}

func TestEnvOptionsParsesKnownVariables(t *testing.T) {
	env := map[string]string{
		"DIVAN_SAMPLE_COUNT": "42",
		"DIVAN_MAX_TIME":     "2s",
		"DIVAN_THREADS":      "1,2,4",
		"DIVAN_BYTES_COUNT":  "1",
	}
	opts, err := EnvOptions(func(k string) string { return env[k] })
	require.NoError(t, err)
	require.Equal(t, 42, opts.SampleCount)
	require.Equal(t, 2*time.Second, opts.MaxTime)
	require.Equal(t, []int{1, 2, 4}, opts.Threads)
	require.True(t, opts.CounterIsSet)
	require.Equal(t, counter.BytesCount, opts.CounterKind)
}

func TestEnvOptionsRejectsMalformedValue(t *testing.T) {
	env := map[string]string{"DIVAN_SAMPLE_COUNT": "not-a-number"}
	_, err := EnvOptions(func(k string) string { return env[k] })
	require.ErrorIs(t, err, ErrConfig)
}

func TestEnvOptionsEmptyEnvironmentIsZeroValue(t *testing.T) {
	opts, err := EnvOptions(func(string) string { return "" })
	require.NoError(t, err)
	require.Equal(t, bench.Options{}, opts)
}
