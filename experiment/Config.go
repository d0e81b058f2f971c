// Package experiment implements functionality for running an experiment:
// training a Dueling DQN agent until it balances the cartpole, then
// evaluating the learned greedy policy
package experiment

import (
	"fmt"

	"github.com/golearn/duelingdqn/agent/duelingq"
	"github.com/golearn/duelingdqn/agent/policy"
	"github.com/golearn/duelingdqn/environment/classiccontrol/cartpole"
	"github.com/golearn/duelingdqn/experiment/tracker"
)

// Config represents a configuration of an experiment
type Config struct {
	Episodes        int     // Training episode budget
	MaxEpisodeSteps int     // Safety cap on the length of any episode
	EpisodeSteps    int     // Step limit of the cartpole task
	TerminalReward  float64 // Reward stored for transitions ending an episode

	TargetUpdateCycle   int // Train and sync every this many episodes
	MinibatchIterations int // Updates per training cycle
	SampleSize          int // Transitions per update

	Window          int     // Episodes in the convergence window
	RewardThreshold float64 // Window mean above which training stops

	EvalEpisodes int  // Greedy episodes run after training
	Render       bool // Render each evaluation step

	Epsilon Epsilon
	Agent   duelingq.Config
}

// Epsilon configures the linear ε schedule of training. ε decays from
// Max to Min over the first Decay fraction of the episode budget.
type Epsilon struct {
	Max   float64
	Min   float64
	Decay float64
}

// Schedule returns the ε schedule resolved against the episode budget
func (c Config) Schedule() policy.LinearSchedule {
	return policy.NewLinearSchedule(c.Epsilon.Max, c.Epsilon.Min,
		c.Episodes, c.Epsilon.Decay)
}

// DefaultConfig returns the configuration that balances CartPole-v0:
// 5000 episodes, training every 10 episodes with 64 updates of 10
// transitions, ε decaying from 1 to 0 over the first 1% of episodes,
// and 20 evaluation episodes.
func DefaultConfig(seed uint64) Config {
	episodes := 5000
	return Config{
		Episodes:            episodes,
		MaxEpisodeSteps:     10000,
		EpisodeSteps:        cartpole.EpisodeSteps,
		TerminalReward:      -100,
		TargetUpdateCycle:   10,
		MinibatchIterations: 64,
		SampleSize:          10,
		Window:              100,
		RewardThreshold:     199.0,
		EvalEpisodes:        20,
		Render:              true,
		Epsilon:             Epsilon{Max: 1.0, Min: 0.0, Decay: 0.01},
		Agent:               duelingq.DefaultConfig(seed),
	}
}

// Validate checks a Config to ensure it is a valid configuration of an
// experiment
func (c Config) Validate() error {
	positive := []struct {
		name  string
		value int
	}{
		{"episodes", c.Episodes},
		{"max episode steps", c.MaxEpisodeSteps},
		{"episode steps", c.EpisodeSteps},
		{"target update cycle", c.TargetUpdateCycle},
		{"minibatch iterations", c.MinibatchIterations},
		{"sample size", c.SampleSize},
		{"window", c.Window},
	}
	for _, p := range positive {
		if p.value <= 0 {
			return fmt.Errorf("validate: %v must be positive "+
				"\n\twant(> 0) \n\thave(%v)", p.name, p.value)
		}
	}

	if c.EvalEpisodes < 0 {
		return fmt.Errorf("validate: evaluation episodes cannot be "+
			"negative \n\twant(≥ 0) \n\thave(%v)", c.EvalEpisodes)
	}
	if c.SampleSize > c.Agent.ReplayCapacity {
		return fmt.Errorf("validate: sample size exceeds replay capacity "+
			"\n\twant(≤ %v) \n\thave(%v)", c.Agent.ReplayCapacity,
			c.SampleSize)
	}
	if c.Epsilon.Decay < 0 || c.Epsilon.Decay > 1 {
		return fmt.Errorf("validate: ε decay must be a fraction of the "+
			"episodes \n\twant(0 ≤ decay ≤ 1) \n\thave(%v)", c.Epsilon.Decay)
	}
	if err := c.Schedule().Validate(); err != nil {
		return err
	}
	return c.Agent.Validate()
}

// CreateTrainer creates the cartpole environment and the agent
// described by the configuration and returns a Trainer for them. If
// frameDir is not empty, rendered frames are written there as PNGs.
func (c Config) CreateTrainer(seed uint64, frameDir string,
	t ...tracker.Tracker) (*Trainer, error) {
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("createTrainer: %w", err)
	}

	task := cartpole.NewBalance(cartpole.NewStarter(seed), c.EpisodeSteps)
	env, _, err := cartpole.New(task, c.Agent.Gamma)
	if err != nil {
		return nil, fmt.Errorf("createTrainer: could not create "+
			"environment: %w", err)
	}
	if frameDir != "" {
		if err := env.SetFrameDir(frameDir); err != nil {
			return nil, fmt.Errorf("createTrainer: %w", err)
		}
	}

	agent, err := c.Agent.CreateAgent(env, seed)
	if err != nil {
		return nil, fmt.Errorf("createTrainer: could not create agent: %w",
			err)
	}

	return NewTrainer(env, agent, c, t...)
}
