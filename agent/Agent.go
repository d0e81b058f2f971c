// Package agent defines an agent interface
package agent

import (
	"gonum.org/v1/gonum/mat"

	"github.com/golearn/duelingdqn/timestep"
)

// Agent determines the implementation details of an agent or algorithm
//
// An Agent is composed of a Learner, which learns weights from stored
// experience, and a Policy which chooses actions in each state.
type Agent interface {
	Learner
	Policy
}

// Learner implements a learning algorithm that defines how weights are
// updated.
type Learner interface {
	// Remember stores a transition for later learning
	Remember(t timestep.Transition) error

	// Train runs iterations minibatch updates of sampleSize transitions
	// each, returning the loss of the last update and the number of
	// updates run. No updates are run if fewer than sampleSize
	// transitions are stored.
	Train(iterations, sampleSize int) (float64, int, error)

	// Sync hard-updates the target network to the learned network
	Sync() error

	// Stored returns the number of stored transitions
	Stored() int
}

// Policy represents a policy that an agent can have.
type Policy interface {
	// SelectAction selects an action in state, choosing uniformly at
	// random with probability epsilon
	SelectAction(state mat.Vector, epsilon float64) (int, error)

	// Greedy selects the action with the highest value in state
	Greedy(state mat.Vector) (int, error)
}
