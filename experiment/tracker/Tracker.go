// Package tracker implements Trackers, which record the episodes of an
// experiment and save the data once the experiment has finished
package tracker

import (
	"fmt"

	ts "github.com/golearn/duelingdqn/timestep"
)

// Phase denotes the part of an experiment an episode belongs to
type Phase int

const (
	Training Phase = iota
	Evaluation
)

func (p Phase) String() string {
	if p == Evaluation {
		return "evaluation"
	}
	return "training"
}

// Episode summarizes a single finished episode
type Episode struct {
	Phase  Phase
	Number int
	Steps  int

	// Return is the sum of rewards the environment produced, before any
	// terminal reward override
	Return float64

	Epsilon float64

	// Loss is the most recent training loss, NaN if no update has run
	// yet
	Loss float64

	// MovingAverage is the mean episode length over the reward window
	// after this episode was added. Zero for evaluation episodes.
	MovingAverage float64
	End           ts.EndType
}

func (e Episode) String() string {
	return fmt.Sprintf("Episode %v (%v) | Steps: %v  |  Return: %.2f  |  "+
		"Epsilon: %.3f  |  Loss: %.4f  |  End: %v", e.Number, e.Phase,
		e.Steps, e.Return, e.Epsilon, e.Loss, e.End)
}

// Tracker keeps track of experiment data and saves the data after the
// experiment has finished
type Tracker interface {
	Track(e Episode) error
	Save() error
}

// Multi fans every call out to a list of Trackers. The first error is
// returned, but every Tracker is still called.
type Multi []Tracker

// Track tracks the episode with every Tracker
func (m Multi) Track(e Episode) error {
	var first error
	for _, t := range m {
		if err := t.Track(e); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// Save saves the data of every Tracker
func (m Multi) Save() error {
	var first error
	for _, t := range m {
		if err := t.Save(); err != nil && first == nil {
			first = err
		}
	}
	return first
}
