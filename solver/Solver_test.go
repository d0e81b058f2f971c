package solver

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
	G "gorgonia.org/gorgonia"
)

func TestNewAdam(t *testing.T) {
	s, err := NewDefaultAdam(0.001, 1)
	require.NoError(t, err)
	require.Equal(t, Adam, s.Type)

	_, ok := s.Create().(*G.AdamSolver)
	require.True(t, ok)

	// Each call creates an independent solver
	require.NotSame(t, s.Create(), s.Create())
}

func TestValidate(t *testing.T) {
	_, err := NewDefaultAdam(0, 1)
	require.Error(t, err)

	_, err = NewAdam(0.1, 1e-8, 1.0, 0.999, 1, -1)
	require.Error(t, err)

	_, err = NewVanilla(0.1, 0, -1)
	require.Error(t, err)

	bad := []byte(`{"Type": "RMSProp", "Config": {"StepSize": 0.1}}`)
	var s Solver
	require.Error(t, json.Unmarshal(bad, &s))
}

func TestJSON(t *testing.T) {
	s, err := NewVanilla(0.01, 4, -1)
	require.NoError(t, err)

	data, err := json.Marshal(s)
	require.NoError(t, err)

	var loaded Solver
	require.NoError(t, json.Unmarshal(data, &loaded))
	require.Equal(t, Vanilla, loaded.Type)
	require.Equal(t, VanillaConfig{StepSize: 0.01, Batch: 4, Clip: -1},
		loaded.Config)

	bad := []byte(`{"Type": "Adam", "Config": {"StepSize": -1, "Batch": 1}}`)
	require.Error(t, json.Unmarshal(bad, &loaded))
}

func TestStepOpts(t *testing.T) {
	require.Len(t, stepOpts(0.1, 1, -1), 2)
	require.Len(t, stepOpts(0.1, 1, 5), 3)

	s, err := NewAdam(0.01, 1e-8, 0.9, 0.999, 1, 5)
	require.NoError(t, err)
	_, ok := s.Create().(*G.AdamSolver)
	require.True(t, ok)

	v, err := NewVanilla(0.01, 1, 5)
	require.NoError(t, err)
	_, ok = v.Create().(*G.VanillaSolver)
	require.True(t, ok)
}
