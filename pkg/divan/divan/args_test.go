package divan

import (
	"context"
	"testing"

	"github.com/ja7ad/divan/pkg/divan/bench"
	"github.com/stretchr/testify/require"
)

func TestRegisterArgsExpandsOneRecordPerValue(t *testing.T) {
	resetRegistry()
	defer resetRegistry()

	RegisterArgs("lengths", bench.Options{}, []int{16, 256}, func(b *Bencher, n int) {
		Bench(b, func() int { return n * 2 })
	})

	got := entries()
	require.Len(t, got, 2)
	require.Equal(t, "lengths", got[0].Path)
	require.Equal(t, "16", got[0].GenericLabel)
	require.Equal(t, "256", got[1].GenericLabel)
}

func TestRegisterArgsClosuresCaptureDistinctValues(t *testing.T) {
	resetRegistry()
	defer resetRegistry()

	var seen []string
	RegisterArgs("strings", bench.Options{}, []string{"a", "b"}, func(b *Bencher, s string) {
		seen = append(seen, s)
		Bench(b, func() string { return s })
	})

	for _, e := range entries() {
		e.Exec(newBencher(false))
	}
	require.Equal(t, []string{"a", "b"}, seen)
}

func TestRegisterConstsExpandsAndRunsUnderDriver(t *testing.T) {
	resetRegistry()
	defer resetRegistry()

	RegisterConsts("buf", bench.Options{}, []uint64{64, 1024}, func(b *Bencher, size uint64) {
		Bench(b, func() []byte { return make([]byte, size) })
	})

	d := NewDriver(Config{Global: fastOptions()})
	result, err := d.Run(context.Background())
	require.NoError(t, err)
	require.Empty(t, result.Failed)

	require.Len(t, result.Tree.Root.Children, 1)
	entry := result.Tree.Root.Children[0]
	require.Equal(t, "buf", entry.Name)
	require.Len(t, entry.Children, 2)
	labels := []string{entry.Children[0].Name, entry.Children[1].Name}
	require.ElementsMatch(t, []string{"64", "1024"}, labels)
}
