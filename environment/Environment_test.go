package environment

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r1"

	ts "github.com/golearn/duelingdqn/timestep"
)

func TestUniformStarterWithinBounds(t *testing.T) {
	bounds := []r1.Interval{{Min: -0.05, Max: 0.05}, {Min: 1, Max: 2}}
	s := NewUniformStarter(bounds, 42)

	for i := 0; i < 100; i++ {
		start := s.Start()
		require.Equal(t, 2, start.Len())
		for j, b := range bounds {
			require.GreaterOrEqual(t, start.AtVec(j), b.Min)
			require.LessOrEqual(t, start.AtVec(j), b.Max)
		}
	}
}

func TestUniformStarterSeeded(t *testing.T) {
	bounds := []r1.Interval{{Min: -1, Max: 1}}
	a := NewUniformStarter(bounds, 7).Start()
	b := NewUniformStarter(bounds, 7).Start()
	require.Equal(t, a.AtVec(0), b.AtVec(0))
}

func TestStepLimit(t *testing.T) {
	limit := NewStepLimit(3)
	step := ts.New(ts.Mid, 1, 1, mat.NewVecDense(1, nil), 2)
	require.False(t, limit.End(&step))
	require.False(t, step.Last())

	step.Number = 3
	require.True(t, limit.End(&step))
	require.True(t, step.Last())
	require.Equal(t, ts.Timeout, step.EndType())
}

func TestIntervalLimit(t *testing.T) {
	limit := NewIntervalLimit([]r1.Interval{{Min: -1, Max: 1}}, []int{1},
		ts.TerminalStateReached)

	inside := ts.New(ts.Mid, 1, 1, mat.NewVecDense(2, []float64{5, 0.5}), 1)
	require.False(t, limit.End(&inside))

	outside := ts.New(ts.Mid, 1, 1, mat.NewVecDense(2, []float64{0, -1.5}), 1)
	require.True(t, limit.End(&outside))
	require.Equal(t, ts.TerminalStateReached, outside.EndType())
}

func TestActionError(t *testing.T) {
	var err error = &ActionError{Action: 3, Min: 0, Max: 1}
	require.True(t, errors.Is(err, ErrIllegalAction))
	require.Contains(t, err.Error(), "3")
}

func TestSpecActions(t *testing.T) {
	actions, err := NewSpec(Action, Discrete, []float64{0}, []float64{2})
	require.NoError(t, err)
	n, err := actions.Actions()
	require.NoError(t, err)
	require.Equal(t, 3, n)

	continuous, err := NewSpec(Action, Continuous, []float64{0},
		[]float64{1})
	require.NoError(t, err)
	_, err = continuous.Actions()
	require.ErrorIs(t, err, ErrNotDiscrete)

	shifted, err := NewSpec(Action, Discrete, []float64{1}, []float64{2})
	require.NoError(t, err)
	_, err = shifted.Actions()
	require.Error(t, err)

	observations, err := NewSpec(Observation, Continuous, []float64{0, 0},
		[]float64{1, 1})
	require.NoError(t, err)
	_, err = observations.Actions()
	require.Error(t, err)
}

func TestSpecBounds(t *testing.T) {
	lower := []float64{-1, 0}
	s, err := NewSpec(Observation, Continuous, lower, []float64{1, 2})
	require.NoError(t, err)
	require.Equal(t, 2, s.Dim())

	lower[0] = -100
	require.Equal(t, r1.Interval{Min: -1, Max: 1}, s.Bound(0))

	require.True(t, s.Contains(mat.NewVecDense(2, []float64{0.5, 2})))
	require.False(t, s.Contains(mat.NewVecDense(2, []float64{0.5, 2.1})))
	require.False(t, s.Contains(mat.NewVecDense(1, []float64{0})))

	_, err = NewSpec(Observation, Continuous, []float64{1}, []float64{0})
	require.Error(t, err)
	_, err = NewSpec(Observation, Continuous, []float64{0}, []float64{0, 1})
	require.Error(t, err)
}
