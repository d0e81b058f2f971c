package timestep

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// Transition is a single (s, a, r, s', done) tuple of experience. A
// Transition owns copies of its state vectors and should be treated
// as immutable once created.
type Transition struct {
	state     *mat.VecDense
	Action    int
	Reward    float64
	nextState *mat.VecDense
	Done      bool
}

// NewTransition returns a new Transition. The state vectors are copied
// so later changes to them do not leak into the Transition.
func NewTransition(state mat.Vector, action int, reward float64,
	nextState mat.Vector, done bool) Transition {
	return Transition{
		state:     mat.VecDenseCopyOf(state),
		Action:    action,
		Reward:    reward,
		nextState: mat.VecDenseCopyOf(nextState),
		Done:      done,
	}
}

// State returns a copy of the state the action was taken in
func (t Transition) State() *mat.VecDense {
	return mat.VecDenseCopyOf(t.state)
}

// NextState returns a copy of the state that followed
func (t Transition) NextState() *mat.VecDense {
	return mat.VecDenseCopyOf(t.nextState)
}

// Features returns the length of the state vectors
func (t Transition) Features() int {
	if t.state == nil {
		return 0
	}
	return t.state.Len()
}

func (t Transition) String() string {
	return fmt.Sprintf("Transition | Action: %v  |  Reward: %.2f  |  "+
		"Done: %v", t.Action, t.Reward, t.Done)
}
