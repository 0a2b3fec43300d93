package numeric

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// TestMinMax checks the generic ordering helpers on integers and strings.
func TestMinMax(t *testing.T) {
	require.Equal(t, 1, Min(1, 2))
	require.Equal(t, 2, Max(1, 2))
	require.Equal(t, "a", Min("b", "a"))
	require.Equal(t, uint64(7), Max(uint64(7), uint64(3)))
}

// TestMajority checks the quorum threshold for small cluster sizes.
func TestMajority(t *testing.T) {
	require.Equal(t, 1, Majority(0))
	require.Equal(t, 1, Majority(1))
	require.Equal(t, 2, Majority(2))
	require.Equal(t, 2, Majority(3))
	require.Equal(t, 3, Majority(4))
	require.Equal(t, 3, Majority(5))
}
