package experiment

import (
	"encoding/json"
	"math"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	env "github.com/golearn/duelingdqn/environment"
	"github.com/golearn/duelingdqn/experiment/tracker"
	ts "github.com/golearn/duelingdqn/timestep"
)

// corridor is an environment whose episodes last exactly length steps,
// each rewarded with 1. A zero length never ends an episode.
type corridor struct {
	length  int
	end     ts.EndType
	last    ts.TimeStep
	renders int
}

func (c *corridor) Reset() (ts.TimeStep, error) {
	c.last = ts.New(ts.First, 0, 1, mat.NewVecDense(2, nil), 0)
	return c.last, nil
}

func (c *corridor) Step(action int) (ts.TimeStep, bool, error) {
	n := c.last.Number + 1
	obs := mat.NewVecDense(2, []float64{float64(n), float64(action)})
	next := ts.New(ts.Mid, 1, 1, obs, n)

	done := c.length > 0 && n >= c.length
	if done {
		next.StepType = ts.Last
		next.SetEnd(c.end)
	}
	c.last = next
	return next, done, nil
}

func (c *corridor) Render() error {
	c.renders++
	return nil
}

func (c *corridor) ObservationSpec() env.Spec {
	s, _ := env.NewSpec(env.Observation, env.Continuous, []float64{0, 0},
		[]float64{math.MaxFloat64, 1})
	return s
}

func (c *corridor) ActionSpec() env.Spec {
	s, _ := env.NewSpec(env.Action, env.Discrete, []float64{0},
		[]float64{1})
	return s
}

func (c *corridor) DiscountSpec() env.Spec {
	s, _ := env.NewSpec(env.Discount, env.Continuous, []float64{1},
		[]float64{1})
	return s
}

// recorder is an agent that always pushes right and counts how it is
// used
type recorder struct {
	transitions []ts.Transition
	trained     []int // number of stored transitions at each Train call
	syncs       int
}

func (r *recorder) Remember(t ts.Transition) error {
	r.transitions = append(r.transitions, t)
	return nil
}

func (r *recorder) Train(iterations, sampleSize int) (float64, int, error) {
	r.trained = append(r.trained, len(r.transitions))
	if len(r.transitions) < sampleSize {
		return 0, 0, nil
	}
	return 0.25, iterations, nil
}

func (r *recorder) Sync() error {
	r.syncs++
	return nil
}

func (r *recorder) Stored() int { return len(r.transitions) }

func (r *recorder) SelectAction(mat.Vector, float64) (int, error) {
	return 1, nil
}

func (r *recorder) Greedy(mat.Vector) (int, error) { return 1, nil }

type episodes struct {
	tracked []tracker.Episode
	saved   bool
}

func (e *episodes) Track(ep tracker.Episode) error {
	e.tracked = append(e.tracked, ep)
	return nil
}

func (e *episodes) Save() error {
	e.saved = true
	return nil
}

func testConfig() Config {
	c := DefaultConfig(1)
	c.Agent.ReplayCapacity = 1000
	return c
}

func TestTerminalRewardOverride(t *testing.T) {
	e := &corridor{length: 3, end: ts.TerminalStateReached}
	a := &recorder{}
	c := testConfig()
	c.Episodes = 1
	c.EvalEpisodes = 0

	trainer, err := NewTrainer(e, a, c)
	require.NoError(t, err)
	_, err = trainer.Run()
	require.NoError(t, err)

	require.Len(t, a.transitions, 3)
	for _, tr := range a.transitions[:2] {
		require.Equal(t, 1.0, tr.Reward)
		require.False(t, tr.Done)
	}
	last := a.transitions[2]
	require.Equal(t, -100.0, last.Reward)
	require.True(t, last.Done)
}

func TestConvergesOnFullWindow(t *testing.T) {
	e := &corridor{length: 200, end: ts.Timeout}
	a := &recorder{}
	rec := &episodes{}
	c := testConfig()
	c.Agent.ReplayCapacity = 50000

	trainer, err := NewTrainer(e, a, c, rec)
	require.NoError(t, err)
	result, err := trainer.Run()
	require.NoError(t, err)
	require.NoError(t, trainer.Save())

	require.True(t, result.Converged())
	require.Equal(t, Converged, result.Outcome)
	require.Equal(t, 100, result.Episodes)
	require.Equal(t, 200.0, result.MovingAverage)
	require.Equal(t, 0.25, result.LastLoss)
	require.Equal(t, Done, trainer.State())

	// Training every 10 episodes, syncing each time
	require.Len(t, a.trained, 10)
	require.Equal(t, 10, a.syncs)

	require.Len(t, result.EvalReturns, 20)
	for _, r := range result.EvalReturns {
		require.Equal(t, 200.0, r)
	}
	require.Equal(t, 200.0, result.EvalAverage)
	require.Equal(t, 20*200, e.renders)

	require.Len(t, rec.tracked, 120)
	require.True(t, rec.saved)
	require.Equal(t, tracker.Training, rec.tracked[0].Phase)
	require.Equal(t, ts.Timeout, rec.tracked[0].End)
	require.Equal(t, 200.0, rec.tracked[99].MovingAverage)
	require.Equal(t, tracker.Evaluation, rec.tracked[119].Phase)
}

func TestExhaustedIsNotAnError(t *testing.T) {
	e := &corridor{length: 5, end: ts.TerminalStateReached}
	a := &recorder{}
	c := testConfig()
	c.Episodes = 25
	c.EvalEpisodes = 2
	c.Render = false

	trainer, err := NewTrainer(e, a, c)
	require.NoError(t, err)
	result, err := trainer.Run()
	require.NoError(t, err)

	require.False(t, result.Converged())
	require.Equal(t, Exhausted, result.Outcome)
	require.Equal(t, 25, result.Episodes)
	require.Equal(t, 5.0, result.MovingAverage)
	require.Zero(t, e.renders)

	// Episodes 0, 10 and 20 train. The first cycle has too few
	// transitions to sample, but the target is still synchronized.
	require.Equal(t, []int{5, 55, 105}, a.trained)
	require.Equal(t, 3, a.syncs)
	require.Equal(t, []float64{5, 5}, result.EvalReturns)
}

func TestNoUpdateLeavesLossUndefined(t *testing.T) {
	e := &corridor{length: 2, end: ts.TerminalStateReached}
	c := testConfig()
	c.Episodes = 1
	c.EvalEpisodes = 0

	trainer, err := NewTrainer(e, &recorder{}, c)
	require.NoError(t, err)
	result, err := trainer.Run()
	require.NoError(t, err)
	require.True(t, math.IsNaN(result.LastLoss))
}

func TestSafetyCapEndsEpisode(t *testing.T) {
	e := &corridor{}
	a := &recorder{}
	c := testConfig()
	c.Episodes = 2
	c.MaxEpisodeSteps = 50
	c.EvalEpisodes = 1
	c.Render = false

	trainer, err := NewTrainer(e, a, c)
	require.NoError(t, err)
	result, err := trainer.Run()
	require.NoError(t, err)

	require.Len(t, a.transitions, 100)
	for _, tr := range a.transitions {
		require.False(t, tr.Done)
		require.Equal(t, 1.0, tr.Reward)
	}
	require.Equal(t, []float64{50}, result.EvalReturns)
}

func TestConfigValidate(t *testing.T) {
	require.NoError(t, DefaultConfig(1).Validate())

	c := DefaultConfig(1)
	c.SampleSize = 0
	require.Error(t, c.Validate())

	c = DefaultConfig(1)
	c.Agent.ReplayCapacity = 5
	require.Error(t, c.Validate())

	c = DefaultConfig(1)
	c.Epsilon.Decay = 1.5
	require.Error(t, c.Validate())

	c = DefaultConfig(1)
	c.Epsilon.Max = 2
	require.Error(t, c.Validate())

	_, err := NewTrainer(&corridor{}, &recorder{}, c)
	require.Error(t, err)
}

func TestDefaultConfig(t *testing.T) {
	c := DefaultConfig(1)
	require.Equal(t, 5000, c.Episodes)
	require.Equal(t, 10000, c.MaxEpisodeSteps)
	require.Equal(t, -100.0, c.TerminalReward)
	require.Equal(t, 10, c.TargetUpdateCycle)
	require.Equal(t, 64, c.MinibatchIterations)
	require.Equal(t, 10, c.SampleSize)
	require.Equal(t, 100, c.Window)
	require.Equal(t, 199.0, c.RewardThreshold)
	require.Equal(t, 20, c.EvalEpisodes)
	require.Equal(t, 1.0, c.Schedule().At(0))
	require.Equal(t, 0.0, c.Schedule().At(50))
	require.Equal(t, 0.99, c.Agent.Gamma)
	require.Equal(t, 50000, c.Agent.ReplayCapacity)
}

func TestCartpoleRun(t *testing.T) {
	c := DefaultConfig(7)
	c.Episodes = 3
	c.TargetUpdateCycle = 1
	c.MinibatchIterations = 2
	c.EvalEpisodes = 1
	c.Agent.Network.TrunkHidden = 8
	c.Agent.Network.StreamHidden = 8
	c.Agent.ReplayCapacity = 500

	lengths := tracker.NewEpisodeLength(tracker.Training,
		filepath.Join(t.TempDir(), "lengths.bin"))
	trainer, err := c.CreateTrainer(7, t.TempDir(), lengths)
	require.NoError(t, err)

	result, err := trainer.Run()
	require.NoError(t, err)
	require.Equal(t, 3, result.Episodes)
	require.Equal(t, Exhausted, result.Outcome)
	require.False(t, math.IsNaN(result.LastLoss))
	require.Len(t, result.EvalReturns, 1)
	require.Greater(t, result.EvalReturns[0], 0.0)
	require.Len(t, lengths.Lengths(), 3)
	require.NoError(t, trainer.Save())
}

func TestEpsilonDecayFollowsEpisodeBudget(t *testing.T) {
	c := DefaultConfig(1)
	require.NoError(t, json.Unmarshal([]byte(`{"Episodes": 1000}`), &c))
	require.Equal(t, 1000, c.Episodes)

	schedule := c.Schedule()
	require.InDelta(t, 10.0, schedule.DecayEpisodes, 1e-9)
	require.InDelta(t, 0.5, schedule.At(5), 1e-9)
	require.InDelta(t, 0.0, schedule.At(10), 1e-9)

	e := &corridor{length: 1, end: ts.TerminalStateReached}
	a := &epsilons{}
	c.Episodes = 20
	c.EvalEpisodes = 0
	c.Agent.ReplayCapacity = 1000
	trainer, err := NewTrainer(e, a, c)
	require.NoError(t, err)
	_, err = trainer.Run()
	require.NoError(t, err)

	// 1% of 20 episodes decays ε to its minimum after the first episode
	require.Equal(t, 1.0, a.seen[0])
	require.Equal(t, 0.0, a.seen[1])
}

// epsilons records the ε passed to each action selection
type epsilons struct {
	recorder
	seen []float64
}

func (e *epsilons) SelectAction(_ mat.Vector, epsilon float64) (int, error) {
	e.seen = append(e.seen, epsilon)
	return 0, nil
}
