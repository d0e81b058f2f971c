package policy

import (
	"testing"

	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func TestLinearSchedule(t *testing.T) {
	schedule := NewLinearSchedule(1.0, 0.0, 5000, 0.01)
	require.Equal(t, 50.0, schedule.DecayEpisodes)
	require.NoError(t, schedule.Validate())

	require.Equal(t, 1.0, schedule.At(0))
	require.InDelta(t, 0.5, schedule.At(25), 1e-12)

	prev := schedule.At(0)
	for e := 1; e <= 50; e++ {
		eps := schedule.At(e)
		require.LessOrEqual(t, eps, prev)
		require.GreaterOrEqual(t, eps, 0.0)
		require.LessOrEqual(t, eps, 1.0)
		prev = eps
	}
	for e := 50; e < 200; e++ {
		require.Equal(t, 0.0, schedule.At(e))
	}
}

func TestLinearScheduleNoDecay(t *testing.T) {
	schedule := LinearSchedule{Max: 1, Min: 0.1, DecayEpisodes: 0}
	require.Equal(t, 0.1, schedule.At(0))

	require.Error(t, LinearSchedule{Max: 0.1, Min: 0.5}.Validate())
}

func TestGreedyTieBreak(t *testing.T) {
	require.Equal(t, 1, Greedy(mat.NewVecDense(3, []float64{0, 2, 2})))
	require.Equal(t, 0, Greedy(mat.NewVecDense(2, []float64{1, 1})))
}

func TestEGreedy(t *testing.T) {
	p := NewEGreedy(1)
	values := mat.NewVecDense(2, []float64{0, 1})

	for i := 0; i < 100; i++ {
		a, err := p.SelectAction(values, 0)
		require.NoError(t, err)
		require.Equal(t, 1, a)
	}

	counts := make([]int, 2)
	for i := 0; i < 1000; i++ {
		a, err := p.SelectAction(values, 1)
		require.NoError(t, err)
		counts[a]++
	}
	require.Greater(t, counts[0], 400)
	require.Greater(t, counts[1], 400)
}
