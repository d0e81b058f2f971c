package duelingq

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/golearn/duelingdqn/network"
	ts "github.com/golearn/duelingdqn/timestep"
	"github.com/golearn/duelingdqn/utils/floatutils"
	"github.com/golearn/duelingdqn/utils/matutils"
)

// BuildMinibatchTargets returns the states of a minibatch of transitions
// as the rows of X along with their regression targets Y. Row i of Y is
// the online prediction for state i with the entry of the action taken
// replaced by the TD target:
//
//	r                                  if the transition is terminal
//	r + γ * max_a' target(s')[a']      otherwise
//
// The target network both selects and evaluates the next action.
func BuildMinibatchTargets(online, target network.NeuralNet,
	transitions []ts.Transition, gamma float64) (*mat.Dense, *mat.Dense,
	error) {
	if len(transitions) == 0 {
		return nil, nil, fmt.Errorf("buildMinibatchTargets: no transitions")
	}

	states := make([]mat.Vector, len(transitions))
	nextStates := make([]mat.Vector, len(transitions))
	for i, t := range transitions {
		states[i] = t.State()
		nextStates[i] = t.NextState()
	}
	X := matutils.Stack(states)

	Y, err := online.Predict(X)
	if err != nil {
		return nil, nil, fmt.Errorf("buildMinibatchTargets: %w", err)
	}
	nextQ, err := target.Predict(matutils.Stack(nextStates))
	if err != nil {
		return nil, nil, fmt.Errorf("buildMinibatchTargets: %w", err)
	}

	_, actions := Y.Dims()
	for i, t := range transitions {
		if t.Action < 0 || t.Action >= actions {
			return nil, nil, fmt.Errorf("buildMinibatchTargets: action %v "+
				"of transition %v ∉ [0, %v)", t.Action, i, actions)
		}

		y := t.Reward
		if !t.Done {
			y += gamma * floatutils.Max(nextQ.RawRowView(i)...)
		}
		Y.Set(i, t.Action, y)
	}

	return X, Y, nil
}
