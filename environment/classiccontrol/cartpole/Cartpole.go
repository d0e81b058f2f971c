// Package cartpole implements the Cartpole classic control environment
package cartpole

import (
	"fmt"
	"image"
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r1"

	env "github.com/golearn/duelingdqn/environment"
	ts "github.com/golearn/duelingdqn/timestep"
)

const (
	// Physical constants
	Gravity        float64 = 9.8
	CartMass       float64 = 1.0
	PoleMass       float64 = 0.1
	TotalMass      float64 = CartMass + PoleMass
	HalfPoleLength float64 = 0.5  // half of pole length
	ForceMag       float64 = 10.0 // Magnification of force applied
	Dt             float64 = 0.02 // seconds between state updates

	// Bounds (+/-) on state variables reported by the observation spec
	PositionBounds        float64 = 4.8
	SpeedBounds           float64 = math.MaxFloat64
	AngleBounds           float64 = 2 * FailAngle
	AngularVelocityBounds float64 = math.MaxFloat64

	// Discrete Actions
	MinDiscreteAction int = 0
	MaxDiscreteAction int = 1
)

// Cartpole implements the classic control environment Cartpole. In
// this environment, a pole is attached to a cart, which can move
// horizontally along a frictionless track. The agent must keep the pole
// upright for as long as possible.
//
// The state features are continuous and consist of the cart's x
// position and speed, as well as the pole's angle from the positive
// y-axis and the pole's angular velocity.
//
// Actions are discrete and consist of the force applied to the cart:
//
//	Action	Meaning
//	  0		Push left
//	  1		Push right
type Cartpole struct {
	env.Task
	lastStep ts.TimeStep
	discount float64
	done     bool

	positionBounds        r1.Interval
	speedBounds           r1.Interval
	angleBounds           r1.Interval
	angularVelocityBounds r1.Interval

	// Rendering
	frame    image.Image
	frameDir string
	frames   int
}

// New constructs a new Cartpole environment and returns it along with
// the first TimeStep of the first episode
func New(t env.Task, discount float64) (*Cartpole, ts.TimeStep, error) {
	if discount < 0 || discount > 1 {
		return nil, ts.TimeStep{}, fmt.Errorf("new: discount should be "+
			"in [0, 1] \n\twant(0 ≤ discount ≤ 1) \n\thave(%v)", discount)
	}

	c := &Cartpole{
		Task:                  t,
		discount:              discount,
		positionBounds:        r1.Interval{Min: -PositionBounds, Max: PositionBounds},
		speedBounds:           r1.Interval{Min: -SpeedBounds, Max: SpeedBounds},
		angleBounds:           r1.Interval{Min: -AngleBounds, Max: AngleBounds},
		angularVelocityBounds: r1.Interval{Min: -AngularVelocityBounds, Max: AngularVelocityBounds},
	}

	step, err := c.Reset()
	if err != nil {
		return nil, ts.TimeStep{}, err
	}
	return c, step, nil
}

// Reset resets the environment and returns a starting state drawn from
// the environment Starter
func (c *Cartpole) Reset() (ts.TimeStep, error) {
	state := c.Start()
	if state.Len() != 4 {
		return ts.TimeStep{}, fmt.Errorf("reset: starter should produce "+
			"states of length 4 \n\twant(4) \n\thave(%v)", state.Len())
	}

	startStep := ts.New(ts.First, 0, c.discount, state, 0)
	c.lastStep = startStep
	c.done = false

	return startStep, nil
}

// ActionSpec returns the action specification of the environment
func (c *Cartpole) ActionSpec() env.Spec {
	return mustSpec(env.NewSpec(env.Action, env.Discrete,
		[]float64{float64(MinDiscreteAction)},
		[]float64{float64(MaxDiscreteAction)}))
}

// ObservationSpec returns the observation specification of the
// environment
func (c *Cartpole) ObservationSpec() env.Spec {
	lower := []float64{c.positionBounds.Min, c.speedBounds.Min,
		c.angleBounds.Min, c.angularVelocityBounds.Min}
	upper := []float64{c.positionBounds.Max, c.speedBounds.Max,
		c.angleBounds.Max, c.angularVelocityBounds.Max}

	return mustSpec(env.NewSpec(env.Observation, env.Continuous, lower,
		upper))
}

// DiscountSpec returns the discounting specification of the environment
func (c *Cartpole) DiscountSpec() env.Spec {
	return mustSpec(env.NewSpec(env.Discount, env.Continuous,
		[]float64{c.discount}, []float64{c.discount}))
}

// mustSpec panics if the constant bounds of a cartpole Spec are illegal
func mustSpec(s env.Spec, err error) env.Spec {
	if err != nil {
		panic(err)
	}
	return s
}

// Step takes one environmental step given action a and returns the next
// state as a timestep.TimeStep and a bool indicating whether or not the
// episode has ended
func (c *Cartpole) Step(a int) (ts.TimeStep, bool, error) {
	if a < MinDiscreteAction || a > MaxDiscreteAction {
		return ts.TimeStep{}, false, &env.ActionError{Action: a,
			Min: MinDiscreteAction, Max: MaxDiscreteAction}
	}
	if c.done {
		return ts.TimeStep{}, true, env.ErrEpisodeOver
	}

	state := c.lastStep.Observation
	nextState := dynamics(state, a)

	reward := c.GetReward(state, mat.NewVecDense(1, []float64{float64(a)}),
		nextState)
	nextStep := ts.New(ts.Mid, reward, c.discount, nextState,
		c.lastStep.Number+1)

	// Check if the step ends the episode
	c.done = c.End(&nextStep)

	c.lastStep = nextStep
	return nextStep, c.done, nil
}

// dynamics computes the next state from the current state and action
// using Euler integration
func dynamics(state mat.Vector, action int) *mat.VecDense {
	x, xDot := state.AtVec(0), state.AtVec(1)
	th, thDot := state.AtVec(2), state.AtVec(3)

	force := ForceMag
	if action == 0 {
		force = -ForceMag
	}

	cosTheta := math.Cos(th)
	sinTheta := math.Sin(th)

	poleMassLength := PoleMass * HalfPoleLength

	temp := (force + poleMassLength*thDot*thDot*sinTheta) / TotalMass
	thAcc := (Gravity*sinTheta - cosTheta*temp) / (HalfPoleLength *
		(4.0/3.0 - PoleMass*cosTheta*cosTheta/TotalMass))
	xAcc := temp - poleMassLength*thAcc*cosTheta/TotalMass

	x += Dt * xDot
	xDot += Dt * xAcc
	th += Dt * thDot
	thDot += Dt * thAcc

	return mat.NewVecDense(4, []float64{x, xDot, th, thDot})
}

// LastStep returns the most recent TimeStep of the environment
func (c *Cartpole) LastStep() ts.TimeStep {
	return c.lastStep
}

func (c *Cartpole) String() string {
	msg := "Cartpole  |  Position: %v  | Speed: %v  |  Angle: %v" +
		"  |  Angular Velocity: %v"

	state := c.lastStep.Observation
	position, speed := state.AtVec(0), state.AtVec(1)
	angle, velocity := state.AtVec(2), state.AtVec(3)

	return fmt.Sprintf(msg, position, speed, angle, velocity)
}

var _ env.Environment = &Cartpole{}
