package initwfn

import (
	"fmt"
	"math"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distuv"
	G "gorgonia.org/gorgonia"
	"gorgonia.org/tensor"
)

// GlorotUConfig implements a configuration of the Glorot Uniform
// initialization algorithm.
type GlorotUConfig struct {
	Gain float64
}

// NewGlorotU returns a new Glorot Uniform weight initializer
func NewGlorotU(gain float64, seed uint64) (*InitWFn, error) {
	return newInitWFn(GlorotUConfig{Gain: gain}, seed)
}

// Type returns the type of initialization algorithm described by
// the configuration.
func (g GlorotUConfig) Type() Type {
	return GlorotU
}

// Validate checks the gain
func (g GlorotUConfig) Validate() error {
	return validateGain("glorotU", g.Gain)
}

// Create returns the weight initialization algorithm as a Gorgonia
// InitWFn. Weights are drawn from U[-a, a], a = gain * √(6/(in+out)).
func (g GlorotUConfig) Create(src rand.Source) G.InitWFn {
	return func(dt tensor.Dtype, s ...int) interface{} {
		in, out := fans(s...)
		limit := g.Gain * math.Sqrt(6.0/(in+out))
		dist := distuv.Uniform{Min: -limit, Max: limit, Src: src}

		return fill(dt, dist.Rand, s...)
	}
}

// GlorotNConfig implements a configuration of the Glorot Normal
// initialization algorithm.
type GlorotNConfig struct {
	Gain float64
}

// NewGlorotN returns a new Glorot Normal weight initializer.
func NewGlorotN(gain float64, seed uint64) (*InitWFn, error) {
	return newInitWFn(GlorotNConfig{Gain: gain}, seed)
}

// Type returns the type of initialization algorithm described by the
// configuration.
func (g GlorotNConfig) Type() Type {
	return GlorotN
}

// Validate checks the gain
func (g GlorotNConfig) Validate() error {
	return validateGain("glorotN", g.Gain)
}

// Create returns the weight initialization algorithm as a Gorgonia
// InitWFn. Weights are drawn from N(0, σ²), σ = gain * √(2/(in+out)).
func (g GlorotNConfig) Create(src rand.Source) G.InitWFn {
	return func(dt tensor.Dtype, s ...int) interface{} {
		in, out := fans(s...)
		stddev := g.Gain * math.Sqrt(2.0/(in+out))
		dist := distuv.Normal{Mu: 0, Sigma: stddev, Src: src}

		return fill(dt, dist.Rand, s...)
	}
}

// HeUConfig implements a configuration of the He uniform
// initialization algorithm.
type HeUConfig struct {
	Gain float64
}

// NewHeU returns a new He Uniform weight initializer
func NewHeU(gain float64, seed uint64) (*InitWFn, error) {
	return newInitWFn(HeUConfig{Gain: gain}, seed)
}

// Type returns the type of initialization algorithm described by
// the configuration.
func (h HeUConfig) Type() Type {
	return HeU
}

// Validate checks the gain
func (h HeUConfig) Validate() error {
	return validateGain("heU", h.Gain)
}

// Create returns the weight initialization algorithm as a Gorgonia
// InitWFn
func (h HeUConfig) Create(src rand.Source) G.InitWFn {
	return func(dt tensor.Dtype, s ...int) interface{} {
		in, _ := fans(s...)
		limit := h.Gain * math.Sqrt(6.0/in)
		dist := distuv.Uniform{Min: -limit, Max: limit, Src: src}

		return fill(dt, dist.Rand, s...)
	}
}

// HeNConfig implements a configuration of the He normal
// initialization algorithm.
type HeNConfig struct {
	Gain float64
}

// NewHeN returns a new He Normal weight initializer
func NewHeN(gain float64, seed uint64) (*InitWFn, error) {
	return newInitWFn(HeNConfig{Gain: gain}, seed)
}

// Type returns the type of initialization algorithm described by
// the configuration.
func (h HeNConfig) Type() Type {
	return HeN
}

// Validate checks the gain
func (h HeNConfig) Validate() error {
	return validateGain("heN", h.Gain)
}

// Create returns the weight initialization algorithm as a Gorgonia
// InitWFn
func (h HeNConfig) Create(src rand.Source) G.InitWFn {
	return func(dt tensor.Dtype, s ...int) interface{} {
		in, _ := fans(s...)
		stddev := h.Gain * math.Sqrt(2.0/in)
		dist := distuv.Normal{Mu: 0, Sigma: stddev, Src: src}

		return fill(dt, dist.Rand, s...)
	}
}

func validateGain(op string, gain float64) error {
	if gain <= 0 {
		return fmt.Errorf("%v: gain must be positive \n\twant(>0) "+
			"\n\thave(%v)", op, gain)
	}
	return nil
}
