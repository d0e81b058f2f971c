// Package network implements neural network function approximators
// built on Gorgonia computational graphs.
package network

import (
	"gonum.org/v1/gonum/mat"
)

// NeuralNet is a function approximator mapping batches of states to
// one value per action. Implementations own their parameters and their
// optimizer.
type NeuralNet interface {
	// Features returns the number of input features
	Features() int

	// Outputs returns the number of outputs per input row
	Outputs() int

	// Predict returns the outputs for each row of states. Any number of
	// rows may be given.
	Predict(states mat.Matrix) (*mat.Dense, error)

	// Update takes one gradient step on the mean squared error between
	// the predictions for states and targets. The loss computed before
	// the step is returned.
	Update(states, targets mat.Matrix) (float64, error)

	// Parameters returns a deep copy of all parameters by name
	Parameters() Parameters

	// SetParameters overwrites every parameter by name
	SetParameters(Parameters) error
}
