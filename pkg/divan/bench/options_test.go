package bench

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestMergePrecedence(t *testing.T) {
	base := DefaultOptions()
	override := Options{SampleCount: 50, MaxTime: 2 * time.Second}

	merged := base.Merge(override)

	require.Equal(t, 50, merged.SampleCount)
	require.Equal(t, 2*time.Second, merged.MaxTime)
	// Fields not set in override fall back to base.
	require.Equal(t, base.MinTime, merged.MinTime)
}

func TestResolvedThreadsDefaultsToSequential(t *testing.T) {
	o := Options{}
	require.Equal(t, []int{1}, o.ResolvedThreads(8))
}

func TestResolvedThreadsSubstitutesAvailableParallelism(t *testing.T) {
	o := Options{Threads: []int{1, 0, 4}}
	require.Equal(t, []int{1, 8, 4}, o.ResolvedThreads(8))
}

func TestResolvedThreadsFallsBackWhenParallelismUnknown(t *testing.T) {
	o := Options{Threads: []int{0}}
	require.Equal(t, []int{1}, o.ResolvedThreads(0))
}
