package experiment

import (
	"fmt"
	"math"

	"github.com/aunum/log"
	"github.com/logrusorgru/aurora"
	"gonum.org/v1/gonum/stat"

	"github.com/golearn/duelingdqn/agent"
	"github.com/golearn/duelingdqn/agent/policy"
	env "github.com/golearn/duelingdqn/environment"
	"github.com/golearn/duelingdqn/experiment/tracker"
	ts "github.com/golearn/duelingdqn/timestep"
)

// State is a state of the training state machine
type State int

const (
	RunningEpisode State = iota
	Updating
	Syncing
	Converged
	Exhausted
	Evaluating
	Done
)

func (s State) String() string {
	switch s {
	case RunningEpisode:
		return "RunningEpisode"
	case Updating:
		return "Updating"
	case Syncing:
		return "Syncing"
	case Converged:
		return "Converged"
	case Exhausted:
		return "Exhausted"
	case Evaluating:
		return "Evaluating"
	default:
		return "Done"
	}
}

// Result summarizes a finished run
type Result struct {
	// Outcome is Converged if the window mean exceeded the reward
	// threshold, otherwise Exhausted
	Outcome State

	Episodes      int     // Training episodes run
	MovingAverage float64 // Final window mean
	LastLoss      float64 // NaN if no update ran

	EvalReturns []float64
	EvalAverage float64
}

// Converged returns whether training reached the reward threshold
func (r Result) Converged() bool {
	return r.Outcome == Converged
}

// Trainer trains an agent online on an environment, then evaluates its
// greedy policy. Every finished episode is sent to the registered
// Trackers.
type Trainer struct {
	env      env.Environment
	agent    agent.Agent
	config   Config
	schedule policy.LinearSchedule
	window   *tracker.Window
	trackers []tracker.Tracker

	state    State
	lastLoss float64
}

// NewTrainer returns a new Trainer of agent a on environment e
func NewTrainer(e env.Environment, a agent.Agent, c Config,
	t ...tracker.Tracker) (*Trainer, error) {
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("newTrainer: %w", err)
	}
	if _, err := env.Actions(e); err != nil {
		return nil, fmt.Errorf("newTrainer: %w", err)
	}

	window, err := tracker.NewWindow(c.Window)
	if err != nil {
		return nil, fmt.Errorf("newTrainer: %w", err)
	}

	return &Trainer{
		env:      e,
		agent:    a,
		config:   c,
		schedule: c.Schedule(),
		window:   window,
		trackers: t,
		state:    RunningEpisode,
		lastLoss: math.NaN(),
	}, nil
}

// Register registers a Tracker so that the episodes of the (possibly
// already running) experiment are tracked
func (t *Trainer) Register(tr tracker.Tracker) {
	t.trackers = append(t.trackers, tr)
}

// State returns the current state of the Trainer
func (t *Trainer) State() State {
	return t.state
}

// Window returns the window of recent training episode lengths
func (t *Trainer) Window() *tracker.Window {
	return t.window
}

func (t *Trainer) setState(s State) {
	if s != t.state {
		log.Debugf("trainer: %v -> %v", t.state, s)
	}
	t.state = s
}

// Run trains the agent until convergence or until the episode budget
// is exhausted, then evaluates the greedy policy. Exhausting the budget
// is not an error: it is reported by Result.Outcome.
func (t *Trainer) Run() (Result, error) {
	var result Result

	converged := false
	for e := 0; e < t.config.Episodes && !converged; e++ {
		var err error
		converged, err = t.RunEpisode(e)
		if err != nil {
			return result, err
		}
		result.Episodes = e + 1
	}

	result.MovingAverage = t.window.Mean()
	result.LastLoss = t.lastLoss
	if converged {
		result.Outcome = Converged
		t.setState(Converged)
		log.Successf("game cleared within %d episodes with average "+
			"reward %.2f", result.Episodes, result.MovingAverage)
	} else {
		result.Outcome = Exhausted
		t.setState(Exhausted)
		log.Warningf("did not converge within %d episodes, average "+
			"reward %.2f", result.Episodes, result.MovingAverage)
	}

	returns, err := t.Evaluate()
	if err != nil {
		return result, err
	}
	result.EvalReturns = returns
	if len(returns) > 0 {
		result.EvalAverage = stat.Mean(returns, nil)
	}

	t.setState(Done)
	return result, nil
}

// RunEpisode runs training episode e: it collects one episode of
// experience, trains and synchronizes the agent if e starts a target
// update cycle, then records the episode length. It returns whether
// the window of recent episode lengths has converged.
func (t *Trainer) RunEpisode(e int) (bool, error) {
	t.setState(RunningEpisode)
	epsilon := t.schedule.At(e)

	step, err := t.env.Reset()
	if err != nil {
		return false, fmt.Errorf("runEpisode: %w", err)
	}

	steps, ret := 0, 0.0
	done := false
	for !done && steps < t.config.MaxEpisodeSteps {
		steps++

		action, err := t.agent.SelectAction(step.Observation, epsilon)
		if err != nil {
			return false, fmt.Errorf("runEpisode: %w", err)
		}

		var next ts.TimeStep
		next, done, err = t.env.Step(action)
		if err != nil {
			return false, fmt.Errorf("runEpisode: %w", err)
		}
		ret += next.Reward

		reward := next.Reward
		if done {
			reward = t.config.TerminalReward
		}
		transition := ts.NewTransition(step.Observation, action, reward,
			next.Observation, done)
		if err := t.agent.Remember(transition); err != nil {
			return false, fmt.Errorf("runEpisode: %w", err)
		}

		step = next
	}

	if e%t.config.TargetUpdateCycle == 0 {
		if err := t.update(e, steps); err != nil {
			return false, err
		}
	}

	t.window.Push(float64(steps))
	err = t.track(tracker.Episode{
		Phase:         tracker.Training,
		Number:        e,
		Steps:         steps,
		Return:        ret,
		Epsilon:       epsilon,
		Loss:          t.lastLoss,
		MovingAverage: t.window.Mean(),
		End:           step.EndType(),
	})
	if err != nil {
		return false, err
	}

	return t.window.Full() && t.window.Mean() > t.config.RewardThreshold,
		nil
}

// update trains the agent on replayed experience, then synchronizes
// its target network
func (t *Trainer) update(e, steps int) error {
	t.setState(Updating)
	loss, n, err := t.agent.Train(t.config.MinibatchIterations,
		t.config.SampleSize)
	if err != nil {
		return fmt.Errorf("update: %w", err)
	}
	if n > 0 {
		t.lastLoss = loss
	}

	t.setState(Syncing)
	if err := t.agent.Sync(); err != nil {
		return fmt.Errorf("update: %w", err)
	}

	log.Infof("loss: %.4f  |  episode: %5d  |  steps: %5d  |  "+
		"recent average: %6.2f  |  buffer: %5d", t.lastLoss, e, steps,
		t.window.Mean(), t.agent.Stored())
	return nil
}

// Evaluate runs the evaluation episodes with the greedy policy and
// returns the environment's total reward of each. No learning happens
// during evaluation.
func (t *Trainer) Evaluate() ([]float64, error) {
	t.setState(Evaluating)

	returns := make([]float64, 0, t.config.EvalEpisodes)
	for e := 0; e < t.config.EvalEpisodes; e++ {
		step, err := t.env.Reset()
		if err != nil {
			return returns, fmt.Errorf("evaluate: %w", err)
		}

		steps, ret := 0, 0.0
		done := false
		for !done && steps < t.config.MaxEpisodeSteps {
			if t.config.Render {
				if err := t.env.Render(); err != nil {
					return returns, fmt.Errorf("evaluate: %w", err)
				}
			}
			steps++

			action, err := t.agent.Greedy(step.Observation)
			if err != nil {
				return returns, fmt.Errorf("evaluate: %w", err)
			}
			step, done, err = t.env.Step(action)
			if err != nil {
				return returns, fmt.Errorf("evaluate: %w", err)
			}
			ret += step.Reward
		}

		returns = append(returns, ret)
		average := stat.Mean(returns, nil)
		log.Infof("evaluation episode: %5d  |  steps: %5d  |  reward: %s"+
			"  |  average reward: %6.2f", e, steps,
			aurora.Green(fmt.Sprintf("%.0f", ret)), average)

		err = t.track(tracker.Episode{
			Phase:  tracker.Evaluation,
			Number: e,
			Steps:  steps,
			Return: ret,
			Loss:   t.lastLoss,
			End:    step.EndType(),
		})
		if err != nil {
			return returns, err
		}
	}
	return returns, nil
}

// Save saves the data of every registered Tracker
func (t *Trainer) Save() error {
	if err := tracker.Multi(t.trackers).Save(); err != nil {
		return fmt.Errorf("save: %w", err)
	}
	return nil
}

func (t *Trainer) track(e tracker.Episode) error {
	if err := tracker.Multi(t.trackers).Track(e); err != nil {
		return fmt.Errorf("track: %w", err)
	}
	return nil
}
