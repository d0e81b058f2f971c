package network

import (
	"fmt"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
	G "gorgonia.org/gorgonia"
	"gorgonia.org/tensor"

	"github.com/golearn/duelingdqn/initwfn"
	"github.com/golearn/duelingdqn/solver"
	"github.com/golearn/duelingdqn/utils/matutils"
)

// Centering selects how the advantage stream of a Dueling network is
// centered before it is added to the value stream
type Centering string

const (
	// PerRowMean subtracts from each advantage the mean advantage of
	// the same input row: Q = V + (A - mean_a A)
	PerRowMean Centering = "PerRowMean"

	// GlobalMean subtracts the mean of every advantage in the batch
	GlobalMean Centering = "GlobalMean"
)

// DuelingConfig configures the architecture of a Dueling network
type DuelingConfig struct {
	TrunkHidden  int         // Width of the shared layer
	StreamHidden int         // Width of the hidden layer of each stream
	Activation   *Activation // Activation of all hidden layers
	Centering    Centering
}

// DefaultDuelingConfig returns the architecture used to balance the
// cartpole: 200 hidden units everywhere with ReLU activations
func DefaultDuelingConfig() DuelingConfig {
	return DuelingConfig{
		TrunkHidden:  200,
		StreamHidden: 200,
		Activation:   ReLU(),
		Centering:    PerRowMean,
	}
}

// Validate checks that the configuration describes a legal network
func (c DuelingConfig) Validate() error {
	if c.TrunkHidden <= 0 || c.StreamHidden <= 0 {
		return fmt.Errorf("validate: hidden layers must have at least one "+
			"unit \n\twant(>0) \n\thave(trunk = %v, stream = %v)",
			c.TrunkHidden, c.StreamHidden)
	}
	if c.Activation == nil {
		return fmt.Errorf("validate: activation must be set")
	}
	if c.Centering != PerRowMean && c.Centering != GlobalMean {
		return fmt.Errorf("validate: unknown centering %q", c.Centering)
	}
	return nil
}

// Streams holds the intermediate outputs of a Dueling network for a
// batch of states
type Streams struct {
	Value     *mat.Dense // V', one row per state
	Advantage *mat.Dense // A', one row per state
	Q         *mat.Dense // V' + centered A'
}

// layerSpec describes one fully connected layer of the network
type layerSpec struct {
	scope   string
	in, out int
	hidden  bool
}

// Dueling implements a dueling architecture action-value network. A
// diagram of the network:
//
//	                      ╭─→ value/hidden     ─→ value/out     ─→ V' ─╮
//	Input ─→ trunk layer ─┤                                              ├─→ Q
//	                      ╰─→ advantage/hidden ─→ advantage/out ─→ A' ─╯
//
// where Q = V' + (A' - mean(A')). The network owns its parameters and
// its own solver. Gorgonia graphs have fixed shapes, so a graph is
// built for each batch size the first time it is needed. Every graph
// binds the same named parameters.
type Dueling struct {
	name     string
	features int
	outputs  int
	config   DuelingConfig
	layers   []layerSpec

	params  Parameters
	order   []string // Parameter names in learnable node order
	version int      // Incremented whenever params change

	solver     G.Solver
	predictors map[int]*duelingGraph
	trainers   map[int]*duelingGraph

	// centering is the matrix I - 1/n used for PerRowMean centering
	centering *tensor.Dense
}

// duelingGraph is a computational graph of a Dueling network for a
// single batch size
type duelingGraph struct {
	g          *G.ExprGraph
	input      *G.Node
	learnables G.Nodes
	value      *G.Node
	advantage  *G.Node
	q          *G.Node

	valueVal     G.Value
	advantageVal G.Value
	qVal         G.Value

	// Only set for training graphs
	targets *G.Node
	loss    *G.Node
	lossVal G.Value

	vm      G.VM
	version int
}

// NewDueling returns a new Dueling network called name, taking states
// with features features and predicting outputs action values. Weights
// are initialized with init and biases with zeroes. The network learns
// with its own solver described by s.
func NewDueling(name string, features, outputs int, config DuelingConfig,
	init *initwfn.InitWFn, s *solver.Solver) (*Dueling, error) {
	if features <= 0 {
		return nil, &DimensionError{Op: "newDueling", What: "features",
			Want: 1, Have: features}
	}
	if outputs <= 0 {
		return nil, &DimensionError{Op: "newDueling", What: "outputs",
			Want: 1, Have: outputs}
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("newDueling: %v", err)
	}
	if init == nil || s == nil {
		return nil, fmt.Errorf("newDueling: weight initializer and " +
			"solver must be set")
	}

	layers := []layerSpec{
		{"trunk", features, config.TrunkHidden, true},
		{"value/hidden", config.TrunkHidden, config.StreamHidden, true},
		{"value/out", config.StreamHidden, outputs, false},
		{"advantage/hidden", config.TrunkHidden, config.StreamHidden, true},
		{"advantage/out", config.StreamHidden, outputs, false},
	}

	weightInit := init.InitWFn()
	params := make(Parameters)
	order := make([]string, 0, 2*len(layers))
	for _, layer := range layers {
		names, shapes := fcShapes(layer.scope, layer.in, layer.out)

		weights := weightInit(tensor.Float64, shapes[0]...).([]float64)
		params[names[0]] = tensor.New(
			tensor.WithShape(shapes[0]...),
			tensor.WithBacking(weights),
		)
		params[names[1]] = tensor.New(
			tensor.WithShape(shapes[1]...),
			tensor.WithBacking(make([]float64, shapes[1].TotalSize())),
		)
		order = append(order, names...)
	}

	return &Dueling{
		name:       name,
		features:   features,
		outputs:    outputs,
		config:     config,
		layers:     layers,
		params:     params,
		order:      order,
		solver:     s.Create(),
		predictors: make(map[int]*duelingGraph),
		trainers:   make(map[int]*duelingGraph),
		centering:  centeringMatrix(outputs),
	}, nil
}

// centeringMatrix returns the n x n matrix I - 1/n. Right multiplying a
// row vector by it subtracts the row's mean from each element.
func centeringMatrix(n int) *tensor.Dense {
	backing := make([]float64, n*n)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			backing[i*n+j] = -1.0 / float64(n)
			if i == j {
				backing[i*n+j] += 1.0
			}
		}
	}
	return tensor.New(tensor.WithShape(n, n), tensor.WithBacking(backing))
}

// Name returns the scope name of the network
func (d *Dueling) Name() string {
	return d.name
}

// Features returns the number of input features
func (d *Dueling) Features() int {
	return d.features
}

// Outputs returns the number of action values predicted per state
func (d *Dueling) Outputs() int {
	return d.outputs
}

// Config returns the architecture of the network
func (d *Dueling) Config() DuelingConfig {
	return d.config
}

// Parameters returns a deep copy of the network's parameters
func (d *Dueling) Parameters() Parameters {
	return d.params.Clone()
}

// SetParameters overwrites every parameter of the network with the
// equally named parameter in p. If any parameter is missing or has the
// wrong shape, the network is left unchanged.
func (d *Dueling) SetParameters(p Parameters) error {
	if err := d.params.checkCompatible(p); err != nil {
		return fmt.Errorf("setParameters: %v", err)
	}
	d.params.assign(p)
	d.version++
	return nil
}

// Predict returns the action values of each row of states
func (d *Dueling) Predict(states mat.Matrix) (*mat.Dense, error) {
	streams, err := d.Forward(states)
	if err != nil {
		return nil, err
	}
	return streams.Q, nil
}

// Forward runs the forward pass on states, returning the value and
// advantage streams along with the action values
func (d *Dueling) Forward(states mat.Matrix) (Streams, error) {
	batch, err := d.checkStates("forward", states)
	if err != nil {
		return Streams{}, err
	}

	dg, err := d.graph(d.predictors, batch, false)
	if err != nil {
		return Streams{}, err
	}
	if err := d.prepare(dg, states); err != nil {
		return Streams{}, err
	}

	if err := dg.vm.RunAll(); err != nil {
		dg.vm.Reset()
		return Streams{}, errors.Wrap(err, "forward")
	}
	streams := Streams{
		Value:     d.toDense(batch, dg.valueVal),
		Advantage: d.toDense(batch, dg.advantageVal),
		Q:         d.toDense(batch, dg.qVal),
	}
	dg.vm.Reset()

	return streams, nil
}

// Update takes one solver step on the mean squared error between the
// action values predicted for states and targets, returning the loss
// before the step
func (d *Dueling) Update(states, targets mat.Matrix) (float64, error) {
	batch, err := d.checkStates("update", states)
	if err != nil {
		return 0, err
	}
	rows, cols := targets.Dims()
	if rows != batch {
		return 0, &DimensionError{Op: "update", What: "target rows",
			Want: batch, Have: rows}
	}
	if cols != d.outputs {
		return 0, &DimensionError{Op: "update", What: "target columns",
			Want: d.outputs, Have: cols}
	}

	dg, err := d.graph(d.trainers, batch, true)
	if err != nil {
		return 0, err
	}
	if err := d.prepare(dg, states); err != nil {
		return 0, err
	}
	if err := G.Let(dg.targets, toTensor(targets)); err != nil {
		return 0, errors.Wrap(err, "update: could not set targets")
	}

	if err := dg.vm.RunAll(); err != nil {
		dg.vm.Reset()
		return 0, errors.Wrap(err, "update")
	}
	loss := dg.lossVal.Data().(float64)

	if err := d.solver.Step(G.NodesToValueGrads(dg.learnables)); err != nil {
		dg.vm.Reset()
		return 0, errors.Wrap(err, "update: solver step")
	}
	dg.vm.Reset()

	if err := d.capture(dg); err != nil {
		return 0, err
	}
	return loss, nil
}

// checkStates returns the batch size of states, or an error if the
// states have the wrong number of features
func (d *Dueling) checkStates(op string, states mat.Matrix) (int, error) {
	rows, cols := states.Dims()
	if cols != d.features {
		return 0, &DimensionError{Op: op, What: "features", Want: d.features,
			Have: cols}
	}
	return rows, nil
}

// graph returns the graph for the given batch size from cache, building
// it if needed
func (d *Dueling) graph(cache map[int]*duelingGraph, batch int,
	train bool) (*duelingGraph, error) {
	if dg, ok := cache[batch]; ok {
		return dg, nil
	}

	dg, err := d.build(batch, train)
	if err != nil {
		return nil, err
	}
	cache[batch] = dg
	return dg, nil
}

// build constructs the computational graph of the network for a batch
// size. Training graphs also compute the loss and its gradient.
func (d *Dueling) build(batch int, train bool) (*duelingGraph, error) {
	g := G.NewGraph()
	input := G.NewMatrix(g, tensor.Float64, G.WithShape(batch, d.features),
		G.WithName("input"), G.WithInit(G.Zeroes()))

	fc := make(map[string]*fcLayer, len(d.layers))
	learnables := make(G.Nodes, 0, len(d.order))
	for _, layer := range d.layers {
		act := Identity()
		if layer.hidden {
			act = d.config.Activation
		}

		l, err := newFCLayer(g, d.name, layer.scope, d.params, act)
		if err != nil {
			return nil, errors.Wrap(err, "build")
		}
		fc[layer.scope] = l
		learnables = append(learnables, l.learnables()...)
	}

	trunk, err := fc["trunk"].fwd(input)
	if err != nil {
		return nil, errors.Wrap(err, "build: trunk")
	}
	value, err := d.stream(fc["value/hidden"], fc["value/out"], trunk)
	if err != nil {
		return nil, errors.Wrap(err, "build: value stream")
	}
	advantage, err := d.stream(fc["advantage/hidden"], fc["advantage/out"],
		trunk)
	if err != nil {
		return nil, errors.Wrap(err, "build: advantage stream")
	}

	centered, err := d.center(g, advantage)
	if err != nil {
		return nil, errors.Wrap(err, "build: centering")
	}
	q, err := G.Add(value, centered)
	if err != nil {
		return nil, errors.Wrap(err, "build: action values")
	}

	dg := &duelingGraph{
		g:          g,
		input:      input,
		learnables: learnables,
		value:      value,
		advantage:  advantage,
		q:          q,
		version:    d.version,
	}

	if !train {
		G.Read(value, &dg.valueVal)
		G.Read(advantage, &dg.advantageVal)
		G.Read(q, &dg.qVal)
		dg.vm = G.NewTapeMachine(g)
		return dg, nil
	}

	// Mean squared error between predictions and targets
	dg.targets = G.NewMatrix(g, tensor.Float64,
		G.WithShape(batch, d.outputs), G.WithName("targets"),
		G.WithInit(G.Zeroes()))
	losses := G.Must(G.Sub(q, dg.targets))
	losses = G.Must(G.Square(losses))
	dg.loss = G.Must(G.Mean(losses))

	if _, err := G.Grad(dg.loss, learnables...); err != nil {
		return nil, errors.Wrap(err, "build: could not compute gradient")
	}
	G.Read(dg.loss, &dg.lossVal)
	dg.vm = G.NewTapeMachine(g, G.BindDualValues(learnables...))

	return dg, nil
}

// stream computes the forward pass of a hidden layer followed by an
// output layer
func (d *Dueling) stream(hidden, out *fcLayer, x *G.Node) (*G.Node,
	error) {
	h, err := hidden.fwd(x)
	if err != nil {
		return nil, err
	}
	return out.fwd(h)
}

// center subtracts the mean advantage from the advantage stream
func (d *Dueling) center(g *G.ExprGraph, advantage *G.Node) (*G.Node,
	error) {
	switch d.config.Centering {
	case GlobalMean:
		mean, err := G.Mean(advantage)
		if err != nil {
			return nil, err
		}
		return G.Sub(advantage, mean)

	default:
		c := G.NewMatrix(g, tensor.Float64,
			G.WithShape(d.outputs, d.outputs),
			G.WithName(d.name+"/centering"), G.WithValue(d.centering))
		return G.Mul(advantage, c)
	}
}

// prepare binds the current parameters and the states to the graph's
// input nodes
func (d *Dueling) prepare(dg *duelingGraph, states mat.Matrix) error {
	if dg.version != d.version {
		for i, name := range d.order {
			if err := G.Let(dg.learnables[i], d.params[name]); err != nil {
				return errors.Wrapf(err, "prepare: could not set %v", name)
			}
		}
		dg.version = d.version
	}

	if err := G.Let(dg.input, toTensor(states)); err != nil {
		return errors.Wrap(err, "prepare: could not set input")
	}
	return nil
}

// capture stores the parameters learned by a training graph as the
// network's parameters
func (d *Dueling) capture(dg *duelingGraph) error {
	for i, name := range d.order {
		value, ok := dg.learnables[i].Value().(*tensor.Dense)
		if !ok {
			return fmt.Errorf("capture: parameter %v is not a dense tensor",
				name)
		}
		if canonical := d.params[name]; value != canonical {
			copy(canonical.Float64s(), value.Float64s())
		}
	}
	d.version++
	dg.version = d.version
	return nil
}

// toDense copies a batch x outputs value out of a graph
func (d *Dueling) toDense(batch int, v G.Value) *mat.Dense {
	data := v.Data().([]float64)
	backing := make([]float64, len(data))
	copy(backing, data)
	return mat.NewDense(batch, d.outputs, backing)
}

// toTensor copies a matrix into a new tensor of the same shape
func toTensor(m mat.Matrix) *tensor.Dense {
	rows, cols := m.Dims()
	return tensor.New(
		tensor.WithShape(rows, cols),
		tensor.WithBacking(matutils.Flatten(m)),
	)
}

func (d *Dueling) String() string {
	return fmt.Sprintf("Dueling(%v) | Features: %v  |  Outputs: %v  |  "+
		"Hidden: %v/%v  |  Centering: %v  |  Parameters: %v", d.name,
		d.features, d.outputs, d.config.TrunkHidden, d.config.StreamHidden,
		d.config.Centering, d.params.Count())
}

var _ NeuralNet = &Dueling{}
