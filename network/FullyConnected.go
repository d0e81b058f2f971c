package network

import (
	"fmt"

	"github.com/pkg/errors"
	G "gorgonia.org/gorgonia"
	"gorgonia.org/tensor"
)

// Layer names the two parameters of a fully connected layer
const (
	weightsName = "weights"
	biasName    = "bias"
)

// fcLayer implements a fully connected layer of a feed forward neural
// network
type fcLayer struct {
	weights *G.Node
	bias    *G.Node
	act     *Activation
}

// newFCLayer adds a fully connected layer called scope to g. The layer's
// weights and bias are bound to the parameters scope/weights and
// scope/bias of params.
func newFCLayer(g *G.ExprGraph, prefix, scope string, params Parameters,
	act *Activation) (*fcLayer, error) {
	weights, err := paramNode(g, prefix, scope+"/"+weightsName, params)
	if err != nil {
		return nil, err
	}
	bias, err := paramNode(g, prefix, scope+"/"+biasName, params)
	if err != nil {
		return nil, err
	}

	return &fcLayer{weights: weights, bias: bias, act: act}, nil
}

// paramNode creates a learnable matrix node holding the named parameter
func paramNode(g *G.ExprGraph, prefix, name string,
	params Parameters) (*G.Node, error) {
	value, ok := params[name]
	if !ok {
		return nil, fmt.Errorf("paramNode: no parameter %v", name)
	}

	return G.NewMatrix(
		g,
		tensor.Float64,
		G.WithShape(value.Shape()...),
		G.WithName(prefix+"/"+name),
		G.WithValue(value),
	), nil
}

// fwd adds the forward pass of the fcLayer to the computational graph
func (f *fcLayer) fwd(x *G.Node) (*G.Node, error) {
	x, err := G.Mul(x, f.weights)
	if err != nil {
		return nil, errors.Wrap(err, "fwd: weights")
	}

	// Broadcast the bias weights to all samples along the batch
	// dimension
	x, err = G.BroadcastAdd(x, f.bias, nil, []byte{0})
	if err != nil {
		return nil, errors.Wrap(err, "fwd: bias")
	}

	if f.act == nil || f.act.IsIdentity() {
		return x, nil
	}
	return f.act.fwd(x)
}

// learnables returns the weights and bias nodes of the layer
func (f *fcLayer) learnables() G.Nodes {
	return G.Nodes{f.weights, f.bias}
}

// fcShapes returns the parameter names and shapes of a fully connected
// layer called scope with in inputs and out outputs
func fcShapes(scope string, in, out int) ([]string, []tensor.Shape) {
	names := []string{scope + "/" + weightsName, scope + "/" + biasName}
	shapes := []tensor.Shape{{in, out}, {1, out}}
	return names, shapes
}
