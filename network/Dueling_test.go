package network

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/golearn/duelingdqn/initwfn"
	"github.com/golearn/duelingdqn/solver"
	"github.com/golearn/duelingdqn/utils/matutils"
)

const (
	testFeatures = 4
	testActions  = 2
)

func newTestDueling(t *testing.T, name string, seed uint64,
	centering Centering) *Dueling {
	t.Helper()

	config := DuelingConfig{
		TrunkHidden:  8,
		StreamHidden: 8,
		Activation:   ReLU(),
		Centering:    centering,
	}
	init, err := initwfn.NewGlorotU(1.0, seed)
	require.NoError(t, err)
	s, err := solver.NewDefaultAdam(0.001, 1)
	require.NoError(t, err)

	net, err := NewDueling(name, testFeatures, testActions, config, init, s)
	require.NoError(t, err)
	return net
}

func randomStates(rows int, seed uint64) *mat.Dense {
	rng := rand.New(rand.NewSource(seed))
	data := make([]float64, rows*testFeatures)
	for i := range data {
		data[i] = rng.Float64()*2 - 1
	}
	return mat.NewDense(rows, testFeatures, data)
}

func TestDuelingIdentity(t *testing.T) {
	states := randomStates(5, 1)

	t.Run("PerRowMean", func(t *testing.T) {
		net := newTestDueling(t, "main", 1, PerRowMean)
		streams, err := net.Forward(states)
		require.NoError(t, err)

		means := matutils.RowMean(streams.Advantage)
		for i := 0; i < 5; i++ {
			for j := 0; j < testActions; j++ {
				want := streams.Value.At(i, j) + streams.Advantage.At(i, j) -
					means.AtVec(i)
				require.InDelta(t, want, streams.Q.At(i, j), 1e-9)
			}
		}
	})

	t.Run("GlobalMean", func(t *testing.T) {
		net := newTestDueling(t, "main", 1, GlobalMean)
		streams, err := net.Forward(states)
		require.NoError(t, err)

		mean := floats.Sum(streams.Advantage.RawMatrix().Data) / 10.0
		for i := 0; i < 5; i++ {
			for j := 0; j < testActions; j++ {
				want := streams.Value.At(i, j) + streams.Advantage.At(i, j) -
					mean
				require.InDelta(t, want, streams.Q.At(i, j), 1e-9)
			}
		}
	})
}

func TestPredictAnyBatchSize(t *testing.T) {
	net := newTestDueling(t, "main", 2, PerRowMean)
	states := randomStates(6, 2)

	batch, err := net.Predict(states)
	require.NoError(t, err)
	r, c := batch.Dims()
	require.Equal(t, 6, r)
	require.Equal(t, testActions, c)

	for i := 0; i < 6; i++ {
		single, err := net.Predict(states.Slice(i, i+1, 0, testFeatures))
		require.NoError(t, err)
		require.InDeltaSlice(t, batch.RawRowView(i), single.RawRowView(0),
			1e-9)
	}

	// Predicting is pure
	again, err := net.Predict(states)
	require.NoError(t, err)
	require.True(t, mat.Equal(batch, again))
}

func TestCopy(t *testing.T) {
	online := newTestDueling(t, "main", 3, PerRowMean)
	target := newTestDueling(t, "target", 4, PerRowMean)
	states := randomStates(10, 3)

	qOnline, err := online.Predict(states)
	require.NoError(t, err)
	qTarget, err := target.Predict(states)
	require.NoError(t, err)
	require.False(t, mat.EqualApprox(qOnline, qTarget, 1e-12))

	require.NoError(t, Copy(target, online))
	qTarget, err = target.Predict(states)
	require.NoError(t, err)
	require.True(t, mat.Equal(qOnline, qTarget))

	// Only the online network changes after an update
	targets := mat.NewDense(10, testActions, nil)
	_, err = online.Update(states, targets)
	require.NoError(t, err)

	qOnlineAfter, err := online.Predict(states)
	require.NoError(t, err)
	qTargetAfter, err := target.Predict(states)
	require.NoError(t, err)
	require.True(t, mat.Equal(qTarget, qTargetAfter))
	require.False(t, mat.Equal(qOnlineAfter, qTargetAfter))
}

func TestUpdateDoesNotIncreaseLoss(t *testing.T) {
	net := newTestDueling(t, "main", 5, PerRowMean)
	states := randomStates(10, 5)

	data := make([]float64, 10*testActions)
	for i := range data {
		data[i] = 1.0
	}
	targets := mat.NewDense(10, testActions, data)

	first, err := net.Update(states, targets)
	require.NoError(t, err)
	second, err := net.Update(states, targets)
	require.NoError(t, err)

	require.Greater(t, first, 0.0)
	require.LessOrEqual(t, second, first)
}

func TestDimensionErrors(t *testing.T) {
	net := newTestDueling(t, "main", 6, PerRowMean)

	_, err := net.Predict(mat.NewDense(2, testFeatures+1, nil))
	require.Error(t, err)
	require.True(t, IsDimensionError(err))

	states := randomStates(3, 6)
	_, err = net.Update(states, mat.NewDense(2, testActions, nil))
	require.True(t, IsDimensionError(err))

	_, err = net.Update(states, mat.NewDense(3, testActions+1, nil))
	require.True(t, IsDimensionError(err))

	_, err = NewDueling("bad", 0, testActions, DefaultDuelingConfig(), nil,
		nil)
	require.True(t, IsDimensionError(err))
}

func TestParameters(t *testing.T) {
	net := newTestDueling(t, "main", 7, PerRowMean)
	states := randomStates(4, 7)
	before, err := net.Predict(states)
	require.NoError(t, err)

	params := net.Parameters()
	require.Len(t, params, 10)
	require.Contains(t, params.Names(), "trunk/weights")
	require.Contains(t, params.Names(), "advantage/out/bias")
	require.Equal(t, testFeatures*8+8+(8*8+8)*2+(8*testActions+testActions)*2,
		params.Count())

	// Parameters is a deep copy
	w := params["trunk/weights"].Float64s()
	w[0] += 10
	after, err := net.Predict(states)
	require.NoError(t, err)
	require.True(t, mat.Equal(before, after))

	// Invalid parameters leave the network unchanged
	delete(params, "value/out/bias")
	require.Error(t, net.SetParameters(params))
	after, err = net.Predict(states)
	require.NoError(t, err)
	require.True(t, mat.Equal(before, after))

	other := newTestDueling(t, "other", 8, PerRowMean)
	wrongShape := other.Parameters()
	wide, err := NewDueling("wide", testFeatures+1, testActions,
		other.Config(), mustGlorot(t), mustAdam(t))
	require.NoError(t, err)
	wrongShape["trunk/weights"] = wide.Parameters()["trunk/weights"]
	require.Error(t, net.SetParameters(wrongShape))
}

func TestDuelingConfigJSON(t *testing.T) {
	config := DefaultDuelingConfig()
	config.Centering = GlobalMean
	config.Activation = TanH()

	data, err := json.Marshal(config)
	require.NoError(t, err)
	require.Contains(t, string(data), `"tanh"`)

	var loaded DuelingConfig
	require.NoError(t, json.Unmarshal(data, &loaded))
	require.NoError(t, loaded.Validate())
	require.Equal(t, GlobalMean, loaded.Centering)
	require.Equal(t, "tanh", loaded.Activation.String())

	require.Error(t, json.Unmarshal([]byte(`{"Activation": "softsign"}`),
		&loaded))
}

func mustGlorot(t *testing.T) *initwfn.InitWFn {
	init, err := initwfn.NewGlorotU(1.0, 1)
	require.NoError(t, err)
	return init
}

func mustAdam(t *testing.T) *solver.Solver {
	s, err := solver.NewDefaultAdam(0.001, 1)
	require.NoError(t, err)
	return s
}
