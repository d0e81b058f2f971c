package cartpole

import (
	"errors"
	"math"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	env "github.com/golearn/duelingdqn/environment"
	ts "github.com/golearn/duelingdqn/timestep"
)

// fixedStarter always starts from the same state
type fixedStarter struct {
	state []float64
}

func (f fixedStarter) Start() *mat.VecDense {
	return mat.NewVecDense(len(f.state), append([]float64(nil), f.state...))
}

func newCartpole(t *testing.T, start []float64, steps int) *Cartpole {
	t.Helper()
	task := NewBalance(fixedStarter{start}, steps)
	c, first, err := New(task, 0.99)
	require.NoError(t, err)
	require.True(t, first.First())
	return c
}

func TestStartStateWithinBounds(t *testing.T) {
	starter := NewStarter(42)
	for i := 0; i < 100; i++ {
		state := starter.Start()
		require.Equal(t, 4, state.Len())
		for j := 0; j < state.Len(); j++ {
			require.LessOrEqual(t, math.Abs(state.AtVec(j)), StartBound)
		}
	}
}

func TestSpecs(t *testing.T) {
	c := newCartpole(t, []float64{0, 0, 0, 0}, EpisodeSteps)
	require.Equal(t, 4, env.Features(c))
	actions, err := env.Actions(c)
	require.NoError(t, err)
	require.Equal(t, 2, actions)

	require.True(t, c.ObservationSpec().Contains(c.LastStep().Observation))
	require.Equal(t, 2.0*FailAngle, c.ObservationSpec().Bound(2).Max)
	require.Equal(t, 0.99, c.DiscountSpec().Bound(0).Min)
}

func TestStepDynamics(t *testing.T) {
	c := newCartpole(t, []float64{0, 0, 0, 0}, EpisodeSteps)

	step, done, err := c.Step(1)
	require.NoError(t, err)
	require.False(t, done)
	require.Equal(t, 1.0, step.Reward)
	require.Equal(t, 1, step.Number)

	// Pushing right from rest accelerates the cart right and the pole
	// left, positions only change on the following step
	obs := step.Observation
	require.Equal(t, 0.0, obs.AtVec(0))
	require.Greater(t, obs.AtVec(1), 0.0)
	require.Equal(t, 0.0, obs.AtVec(2))
	require.Less(t, obs.AtVec(3), 0.0)
	require.InDelta(t, 0.1951, obs.AtVec(1), 1e-4)
	require.InDelta(t, -0.2927, obs.AtVec(3), 1e-4)
}

func TestIllegalAction(t *testing.T) {
	c := newCartpole(t, []float64{0, 0, 0, 0}, EpisodeSteps)

	_, _, err := c.Step(2)
	require.Error(t, err)
	require.True(t, errors.Is(err, env.ErrIllegalAction))

	_, _, err = c.Step(-1)
	require.True(t, errors.Is(err, env.ErrIllegalAction))
}

func TestFallingPoleTerminates(t *testing.T) {
	c := newCartpole(t, []float64{0, 0, 0.2, 0}, EpisodeSteps)

	var step ts.TimeStep
	var done bool
	var err error
	for i := 0; i < EpisodeSteps && !done; i++ {
		step, done, err = c.Step(0)
		require.NoError(t, err)
	}
	require.True(t, done)
	require.True(t, step.Last())
	require.Equal(t, ts.TerminalStateReached, step.EndType())
	require.False(t, c.AtGoal(step.Observation))

	_, _, err = c.Step(0)
	require.ErrorIs(t, err, env.ErrEpisodeOver)

	_, err = c.Reset()
	require.NoError(t, err)
	_, _, err = c.Step(0)
	require.NoError(t, err)
}

func TestStepLimitTimesOut(t *testing.T) {
	c := newCartpole(t, []float64{0, 0, 0, 0}, 3)

	var step ts.TimeStep
	var done bool
	var err error
	for i := 0; i < 3; i++ {
		require.False(t, done)
		step, done, err = c.Step(i % 2)
		require.NoError(t, err)
	}
	require.True(t, done)
	require.Equal(t, ts.Timeout, step.EndType())
}

func TestRenderWritesFrames(t *testing.T) {
	c := newCartpole(t, []float64{0.5, 0, 0.1, 0}, EpisodeSteps)
	dir := filepath.Join(t.TempDir(), "frames")
	require.NoError(t, c.SetFrameDir(dir))

	require.NoError(t, c.Render())
	_, _, err := c.Step(0)
	require.NoError(t, err)
	require.NoError(t, c.Render())

	require.Equal(t, 2, c.Frames())
	require.NotNil(t, c.Frame())
	require.Equal(t, int(ViewportW), c.Frame().Bounds().Dx())

	matches, err := filepath.Glob(filepath.Join(dir, "*.png"))
	require.NoError(t, err)
	require.Len(t, matches, 2)
}
