package report

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/require"
)

// "a10", "a2", "a1" must sort to "a1", "a2", "a10".
func TestNaturalSortOrdersDigitRunsNumerically(t *testing.T) {
	names := []string{"a10", "a2", "a1"}
	sort.Slice(names, func(i, j int) bool { return NaturalLess(names[i], names[j]) })
	require.Equal(t, []string{"a1", "a2", "a10"}, names)
}

func TestNaturalSortPrefixOrdering(t *testing.T) {
	require.True(t, NaturalLess("a", "ab"))
	require.False(t, NaturalLess("ab", "a"))
}

func TestNaturalSortNonNumericFallsBackToLexical(t *testing.T) {
	require.True(t, NaturalLess("apple", "banana"))
}

func TestNaturalSortEqualStrings(t *testing.T) {
	require.False(t, NaturalLess("same", "same"))
}

func TestNaturalSortMixedAlphaNumeric(t *testing.T) {
	names := []string{"item2b", "item10a", "item2a"}
	sort.Slice(names, func(i, j int) bool { return NaturalLess(names[i], names[j]) })
	require.Equal(t, []string{"item2a", "item2b", "item10a"}, names)
}
