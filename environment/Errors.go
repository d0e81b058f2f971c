package environment

import (
	"errors"
	"fmt"
)

// ErrIllegalAction is returned when an action outside the action
// specification is taken
var ErrIllegalAction = errors.New("illegal action")

// ActionError records an illegal action taken in an environment
type ActionError struct {
	Action int
	Min    int
	Max    int
}

func (a *ActionError) Error() string {
	return fmt.Sprintf("step: %v %v ∉ [%v, %v]", ErrIllegalAction,
		a.Action, a.Min, a.Max)
}

// Unwrap allows errors.Is(err, ErrIllegalAction)
func (a *ActionError) Unwrap() error {
	return ErrIllegalAction
}

// ErrEpisodeOver is returned when stepping an environment whose
// episode has ended without first calling Reset
var ErrEpisodeOver = errors.New("episode is over, reset the environment")

// ErrNotDiscrete is returned when discrete actions are required but an
// environment's actions are continuous
var ErrNotDiscrete = errors.New("actions are not discrete")
