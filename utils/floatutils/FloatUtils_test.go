package floatutils

import (
	"testing"

	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r1"
)

func TestArgmaxFirstIndexOnTies(t *testing.T) {
	require.Equal(t, 0, Argmax([]float64{3, 3, 1}))
	require.Equal(t, 1, Argmax([]float64{-1, 2, 2, 2}))
	require.Equal(t, 2, Argmax([]float64{-5, -4, -3}))
}

func TestMaxSlice(t *testing.T) {
	max, indices := MaxSlice([]float64{1, 4, 2, 4})
	require.Equal(t, 4.0, max)
	require.Equal(t, []int{1, 3}, indices)

	max, indices = MaxSlice([]float64{7, 7})
	require.Equal(t, 7.0, max)
	require.Equal(t, []int{0, 1}, indices)
}

func TestMax(t *testing.T) {
	require.Equal(t, 3.0, Max(1, 3, -2))
	require.Equal(t, -1.0, Max(-1))
}

func TestWithin(t *testing.T) {
	require.True(t, Within(1, r1.Interval{Min: 0, Max: 1}))
	require.False(t, Within(1.01, r1.Interval{Min: 0, Max: 1}))
}
