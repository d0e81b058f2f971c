package cartpole

import (
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r1"

	env "github.com/golearn/duelingdqn/environment"
	ts "github.com/golearn/duelingdqn/timestep"
)

const (
	// FailAngle is the pole angle (in radians) past which the pole is
	// considered fallen
	FailAngle float64 = 12 * 2 * math.Pi / 360

	// FailPosition is the cart position past which the cart has left
	// the track
	FailPosition float64 = 2.4

	// EpisodeSteps is the step limit of CartPole-v0
	EpisodeSteps int = 200

	// StartBound bounds (+/-) each feature of the starting state
	StartBound float64 = 0.05
)

// Balance implements the classic control Cartpole Balance task. In this
// Task, the goal of the agent is to balance the pole on the cart in
// an upright position for as long as possible.
//
// The reward is +1 for every timestep, including the last.
//
// Episodes end after a step limit (a timeout) or when the pole falls
// past the fail angle or the cart leaves the track (a terminal state).
type Balance struct {
	env.Starter
	stepLimiter  *env.StepLimit
	stateLimiter *env.IntervalLimit
	failAngle    float64
}

// NewBalance creates and returns a new Balance task
func NewBalance(s env.Starter, episodeSteps int) *Balance {
	stepLimiter := env.NewStepLimit(episodeSteps)

	limits := []r1.Interval{
		{Min: -FailPosition, Max: FailPosition},
		{Min: -FailAngle, Max: FailAngle},
	}
	stateLimiter := env.NewIntervalLimit(limits, []int{0, 2},
		ts.TerminalStateReached)

	return &Balance{s, stepLimiter, stateLimiter, FailAngle}
}

// NewStarter returns the CartPole-v0 starting state distribution,
// uniform over [-0.05, 0.05] for each feature
func NewStarter(seed uint64) env.UniformStarter {
	bounds := make([]r1.Interval, 4)
	for i := range bounds {
		bounds[i] = r1.Interval{Min: -StartBound, Max: StartBound}
	}
	return env.NewUniformStarter(bounds, seed)
}

// End checks if a TimeStep is the last in an episode. If so, it adjusts
// the TimeStep's StepType to timestep.Last and returns true. Otherwise,
// the function does not adjust the TimeStep and returns false. Failure
// takes precedence over the step limit.
func (b *Balance) End(t *ts.TimeStep) bool {
	if end := b.stateLimiter.End(t); end {
		return true
	}
	if end := b.stepLimiter.End(t); end {
		return true
	}
	return false
}

// GetReward returns the reward for an action taken in some state,
// resulting in a transition to the next state nextState.
func (b *Balance) GetReward(_, _, _ mat.Vector) float64 {
	return 1.0
}

// AtGoal returns whether the pole is still upright in state
func (b *Balance) AtGoal(state mat.Matrix) bool {
	return math.Abs(state.At(2, 0)) <= b.failAngle
}

// StepLimit returns the number of steps after which episodes time out
func (b *Balance) StepLimit() int {
	return b.stepLimiter.Limit()
}

// RewardSpec returns the reward specification for the environment
func (b *Balance) RewardSpec() env.Spec {
	return mustSpec(env.NewSpec(env.Reward, env.Continuous, []float64{1.0},
		[]float64{1.0}))
}
