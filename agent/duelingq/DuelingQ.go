// Package duelingq implements the Dueling Deep Q-Network agent: an
// online dueling network learns by TD regression from replayed
// experience against a periodically synchronized target network.
package duelingq

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/golearn/duelingdqn/agent"
	"github.com/golearn/duelingdqn/agent/policy"
	env "github.com/golearn/duelingdqn/environment"
	"github.com/golearn/duelingdqn/expreplay"
	"github.com/golearn/duelingdqn/network"
	ts "github.com/golearn/duelingdqn/timestep"
)

// Network scope names
const (
	OnlineScope = "main"
	TargetScope = "target"
)

// Offsets from the agent seed of its random sources. The environment's
// starter uses the seed itself.
const (
	policySeedOffset = 1
	replaySeedOffset = 2
)

// DuelingQ implements the Dueling DQN agent
type DuelingQ struct {
	online network.NeuralNet // Learned network used to act
	target network.NeuralNet // Provides the bootstrap target

	replay *expreplay.Buffer
	policy *policy.EGreedy
	gamma  float64
}

// New creates and returns a new DuelingQ agent for environment e. The
// target network starts synchronized with the online network.
func New(e env.Environment, c Config, seed uint64) (*DuelingQ, error) {
	actions, err := env.Actions(e)
	if err != nil {
		return nil, fmt.Errorf("new: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}

	features := env.Features(e)

	online, err := network.NewDueling(OnlineScope, features, actions,
		c.Network, c.InitWFn, c.Solver)
	if err != nil {
		return nil, fmt.Errorf("new: could not create online network: %w",
			err)
	}
	target, err := network.NewDueling(TargetScope, features, actions,
		c.Network, c.InitWFn, c.Solver)
	if err != nil {
		return nil, fmt.Errorf("new: could not create target network: %w",
			err)
	}

	replay, err := expreplay.New(c.ReplayCapacity, features,
		seed+replaySeedOffset)
	if err != nil {
		return nil, fmt.Errorf("new: could not create experience replay "+
			"buffer: %w", err)
	}

	return NewWithNetworks(online, target, replay, c.Gamma,
		seed+policySeedOffset)
}

// NewWithNetworks returns a DuelingQ agent learning online against
// target, replaying experience from replay. The target network is
// synchronized with the online network before returning.
func NewWithNetworks(online, target network.NeuralNet,
	replay *expreplay.Buffer, gamma float64, seed uint64) (*DuelingQ, error) {
	if online.Features() != target.Features() ||
		online.Outputs() != target.Outputs() {
		return nil, &network.DimensionError{Op: "newWithNetworks",
			What: "target network outputs", Want: online.Outputs(),
			Have: target.Outputs()}
	}
	if replay.Features() != online.Features() {
		return nil, &network.DimensionError{Op: "newWithNetworks",
			What: "replay features", Want: online.Features(),
			Have: replay.Features()}
	}

	d := &DuelingQ{
		online: online,
		target: target,
		replay: replay,
		policy: policy.NewEGreedy(seed),
		gamma:  gamma,
	}
	if err := d.Sync(); err != nil {
		return nil, err
	}
	return d, nil
}

// actionValues returns the online network's action values in state
func (d *DuelingQ) actionValues(state mat.Vector) (mat.Vector, error) {
	q, err := d.online.Predict(state.T())
	if err != nil {
		return nil, err
	}
	return q.RowView(0), nil
}

// SelectAction selects an ε-greedy action from the online network's
// action values in state
func (d *DuelingQ) SelectAction(state mat.Vector, ε float64) (int, error) {
	values, err := d.actionValues(state)
	if err != nil {
		return 0, fmt.Errorf("selectAction: %w", err)
	}
	return d.policy.SelectAction(values, ε)
}

// Greedy selects the action with the highest online action value
func (d *DuelingQ) Greedy(state mat.Vector) (int, error) {
	values, err := d.actionValues(state)
	if err != nil {
		return 0, fmt.Errorf("greedy: %w", err)
	}
	return policy.Greedy(values), nil
}

// Remember stores a transition in the replay buffer
func (d *DuelingQ) Remember(t ts.Transition) error {
	return d.replay.Add(t)
}

// Train runs iterations minibatch updates of the online network, each
// on sampleSize freshly sampled transitions. It returns the loss of the
// last update and the number of updates run. If fewer than sampleSize
// transitions are stored, no update is run.
func (d *DuelingQ) Train(iterations, sampleSize int) (float64, int, error) {
	if d.replay.Len() < sampleSize {
		return 0, 0, nil
	}

	var loss float64
	for i := 0; i < iterations; i++ {
		batch, err := d.replay.Sample(sampleSize)
		if err != nil {
			return loss, i, fmt.Errorf("train: %w", err)
		}

		X, Y, err := BuildMinibatchTargets(d.online, d.target, batch,
			d.gamma)
		if err != nil {
			return loss, i, fmt.Errorf("train: %w", err)
		}

		loss, err = d.online.Update(X, Y)
		if err != nil {
			return loss, i, fmt.Errorf("train: %w", err)
		}
	}
	return loss, iterations, nil
}

// Sync copies the online network's parameters into the target network
func (d *DuelingQ) Sync() error {
	if err := network.Copy(d.target, d.online); err != nil {
		return fmt.Errorf("sync: %w", err)
	}
	return nil
}

// Stored returns the number of transitions in the replay buffer
func (d *DuelingQ) Stored() int {
	return d.replay.Len()
}

// Online returns the online network
func (d *DuelingQ) Online() network.NeuralNet {
	return d.online
}

// Target returns the target network
func (d *DuelingQ) Target() network.NeuralNet {
	return d.target
}

// Replay returns the replay buffer
func (d *DuelingQ) Replay() *expreplay.Buffer {
	return d.replay
}

var _ agent.Agent = &DuelingQ{}
