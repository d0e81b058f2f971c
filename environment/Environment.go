// Package environment outlines the interfaces and sturcts needed to implement
// concrete environments
package environment

import (
	"gonum.org/v1/gonum/mat"

	ts "github.com/golearn/duelingdqn/timestep"
)

// Starter implements a distribution of starting states and samples starting
// states for environments
type Starter interface {
	Start() *mat.VecDense
}

// Ender determines when episodes should end
type Ender interface {
	// End checks whether a TimeStep ends the episode. If so, the
	// TimeStep's StepType is set to timestep.Last and its end type is
	// recorded.
	End(*ts.TimeStep) bool
}

// Task implements the reward scheme for taking actions in some environment
type Task interface {
	Starter
	Ender
	GetReward(state, action, nextState mat.Vector) float64
	AtGoal(state mat.Matrix) bool
	RewardSpec() Spec
}

// Environment implements a simualted environment, which includes a Task to
// complete. Actions are discrete and enumerated from 0.
type Environment interface {
	// Reset resets the environment between episodes and returns the
	// first TimeStep of the new episode
	Reset() (ts.TimeStep, error)

	// Step takes an action in the environment, returning the next
	// TimeStep and whether the episode has ended. The reason an
	// episode ended is recorded in the TimeStep's EndType.
	Step(action int) (ts.TimeStep, bool, error)

	// Render visualizes the current state of the environment
	Render() error

	ObservationSpec() Spec
	ActionSpec() Spec
	DiscountSpec() Spec
}

// Features returns the dimension of observation vectors of an
// environment
func Features(e Environment) int {
	return e.ObservationSpec().Dim()
}

// Actions returns the number of discrete actions of an environment, or
// an error if its actions are not discrete and enumerated from 0
func Actions(e Environment) (int, error) {
	return e.ActionSpec().Actions()
}
