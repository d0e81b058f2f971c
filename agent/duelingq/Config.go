package duelingq

import (
	"fmt"

	env "github.com/golearn/duelingdqn/environment"
	"github.com/golearn/duelingdqn/initwfn"
	"github.com/golearn/duelingdqn/network"
	"github.com/golearn/duelingdqn/solver"
)

// Config implements a configuration for a DuelingQ agent
type Config struct {
	Network network.DuelingConfig // Architecture of both networks
	Solver  *solver.Solver        // Solver for learning weights

	// Initialization algorithm for weights
	InitWFn *initwfn.InitWFn

	Gamma          float64 // Discount of the TD target
	ReplayCapacity int     // Maximum transitions kept for replay
}

// DefaultConfig returns the configuration used to balance the cartpole:
// 200 unit layers, Adam with step size 0.001, γ = 0.99 and a replay
// buffer of 50000 transitions. Weights are initialized from seed.
func DefaultConfig(seed uint64) Config {
	init, err := initwfn.NewGlorotU(1.0, seed)
	if err != nil {
		panic(err)
	}
	adam, err := solver.NewDefaultAdam(0.001, 1)
	if err != nil {
		panic(err)
	}

	return Config{
		Network:        network.DefaultDuelingConfig(),
		Solver:         adam,
		InitWFn:        init,
		Gamma:          0.99,
		ReplayCapacity: 50000,
	}
}

// Validate checks a Config to ensure it is a valid configuration of a
// DuelingQ agent.
func (c Config) Validate() error {
	if err := c.Network.Validate(); err != nil {
		return err
	}
	if c.Solver == nil {
		return fmt.Errorf("validate: solver must be set")
	}
	if c.InitWFn == nil {
		return fmt.Errorf("validate: weight initializer must be set")
	}
	if c.Gamma < 0 || c.Gamma > 1 {
		return fmt.Errorf("validate: discount must be in [0, 1] "+
			"\n\twant(0 ≤ γ ≤ 1) \n\thave(%v)", c.Gamma)
	}
	if c.ReplayCapacity < 1 {
		return fmt.Errorf("validate: replay capacity must be positive "+
			"\n\twant(>0) \n\thave(%v)", c.ReplayCapacity)
	}
	return nil
}

// CreateAgent creates a new DuelingQ agent based on the configuration
func (c Config) CreateAgent(e env.Environment, seed uint64) (*DuelingQ,
	error) {
	return New(e, c, seed)
}
