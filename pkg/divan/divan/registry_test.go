package divan

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRegisterAppendsEntry(t *testing.T) {
	resetRegistry()
	defer resetRegistry()

	Register(BenchmarkEntry{Path: "a"})
	Register(BenchmarkEntry{Path: "b"})

	got := entries()
	require.Len(t, got, 2)
	require.Equal(t, "a", got[0].Path)
	require.Equal(t, "b", got[1].Path)
}

func TestEntriesReturnsACopy(t *testing.T) {
	resetRegistry()
	defer resetRegistry()

	Register(BenchmarkEntry{Path: "a"})
	got := entries()
	got[0].Path = "mutated"

	require.Equal(t, "a", entries()[0].Path)
}

func TestResetRegistryClears(t *testing.T) {
	resetRegistry()
	Register(BenchmarkEntry{Path: "a"})
	resetRegistry()
	require.Empty(t, entries())
}
