package environment

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r1"

	"github.com/golearn/duelingdqn/utils/floatutils"
)

// SpecType determines what a Spec describes: the actions, observations,
// discounts, or rewards of an environment
type SpecType int

const (
	Action SpecType = iota
	Observation
	Discount
	Reward
)

func (s SpecType) String() string {
	switch s {
	case Action:
		return "Action"
	case Observation:
		return "Observation"
	case Discount:
		return "Discount"
	default:
		return "Reward"
	}
}

// Cardinality determines whether the values a Spec describes are
// discrete or continuous
type Cardinality string

const (
	Continuous Cardinality = "Continuous"
	Discrete   Cardinality = "Discrete"
)

// Spec describes the bounds of each dimension of the actions,
// observations, discounts, or rewards of an environment
type Spec struct {
	Type       SpecType
	LowerBound *mat.VecDense
	UpperBound *mat.VecDense
	Cardinality
}

// NewSpec returns a Spec with one dimension per bound. The bounds are
// copied.
func NewSpec(t SpecType, c Cardinality, lower, upper []float64) (Spec,
	error) {
	if len(lower) == 0 || len(lower) != len(upper) {
		return Spec{}, fmt.Errorf("newSpec: %v bounds must have equal, "+
			"positive lengths \n\thave(lower = %v, upper = %v)", t,
			len(lower), len(upper))
	}
	for i := range lower {
		if lower[i] > upper[i] {
			return Spec{}, fmt.Errorf("newSpec: %v lower bound exceeds "+
				"upper bound in dimension %v \n\thave(%v > %v)", t, i,
				lower[i], upper[i])
		}
	}

	return Spec{
		Type:        t,
		LowerBound:  mat.NewVecDense(len(lower), append([]float64(nil), lower...)),
		UpperBound:  mat.NewVecDense(len(upper), append([]float64(nil), upper...)),
		Cardinality: c,
	}, nil
}

// Dim returns the number of dimensions the Spec describes
func (s Spec) Dim() int {
	if s.LowerBound == nil {
		return 0
	}
	return s.LowerBound.Len()
}

// Bound returns the interval of dimension i
func (s Spec) Bound(i int) r1.Interval {
	return r1.Interval{Min: s.LowerBound.AtVec(i), Max: s.UpperBound.AtVec(i)}
}

// Contains returns whether v lies within the bounds of every dimension
func (s Spec) Contains(v mat.Vector) bool {
	if v.Len() != s.Dim() {
		return false
	}
	for i := 0; i < v.Len(); i++ {
		if !floatutils.Within(v.AtVec(i), s.Bound(i)) {
			return false
		}
	}
	return true
}

// Actions returns the number of actions of a discrete, one-dimensional
// action Spec whose actions are enumerated from 0
func (s Spec) Actions() (int, error) {
	if s.Type != Action {
		return 0, fmt.Errorf("actions: not an action spec \n\thave(%v)",
			s.Type)
	}
	if s.Cardinality != Discrete {
		return 0, fmt.Errorf("actions: %w", ErrNotDiscrete)
	}
	if s.Dim() != 1 {
		return 0, fmt.Errorf("actions: actions must be 1-dimensional "+
			"\n\twant(1) \n\thave(%v)", s.Dim())
	}
	if s.LowerBound.AtVec(0) != 0 {
		return 0, fmt.Errorf("actions: actions must be enumerated from 0 "+
			"\n\twant(0) \n\thave(%v)", s.LowerBound.AtVec(0))
	}
	return int(s.UpperBound.AtVec(0)) + 1, nil
}

func (s Spec) String() string {
	return fmt.Sprintf("%v Spec | %v  |  Lower: %v  |  Upper: %v", s.Type,
		s.Cardinality, mat.Formatted(s.LowerBound.T(), mat.Squeeze()),
		mat.Formatted(s.UpperBound.T(), mat.Squeeze()))
}
