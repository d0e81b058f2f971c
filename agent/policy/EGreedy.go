// Package policy implements action selection from action values
package policy

import (
	"fmt"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/mat"

	"github.com/golearn/duelingdqn/utils/matutils"
)

// EGreedy implements an ε-greedy policy over a vector of action values
type EGreedy struct {
	rng *rand.Rand
}

// NewEGreedy returns a new EGreedy policy drawing random numbers from
// a source seeded with seed
func NewEGreedy(seed uint64) *EGreedy {
	return &EGreedy{rng: rand.New(rand.NewSource(seed))}
}

// SelectAction returns a uniformly random action with probability ε
// and the greedy action otherwise
func (p *EGreedy) SelectAction(values mat.Vector, ε float64) (int, error) {
	if values.Len() == 0 {
		return 0, fmt.Errorf("selectAction: no action values")
	}
	if p.rng.Float64() < ε {
		return p.rng.Intn(values.Len()), nil
	}
	return Greedy(values), nil
}

// Greedy returns the action with the highest value. Ties are broken in
// favour of the lowest action.
func Greedy(values mat.Vector) int {
	return matutils.MaxVec(values)
}
