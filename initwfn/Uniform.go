package initwfn

import (
	"fmt"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distuv"
	G "gorgonia.org/gorgonia"
	"gorgonia.org/tensor"
)

// UniformConfig implements a configuration of a weight initializer
// that draws weights uniformly from [Low, High)
type UniformConfig struct {
	Low, High float64
}

// NewUniform returns a new uniform weight initializer
func NewUniform(low, high float64, seed uint64) (*InitWFn, error) {
	return newInitWFn(UniformConfig{Low: low, High: high}, seed)
}

// Type returns the type of initialization algorithm described by
// the configuration.
func (u UniformConfig) Type() Type {
	return Uniform
}

// Validate checks that the interval is not empty
func (u UniformConfig) Validate() error {
	if u.Low >= u.High {
		return fmt.Errorf("uniform: low must be less than high "+
			"\n\twant(low < high) \n\thave(%v ≥ %v)", u.Low, u.High)
	}
	return nil
}

// Create returns the weight initialization algorithm as a Gorgonia
// InitWFn
func (u UniformConfig) Create(src rand.Source) G.InitWFn {
	return func(dt tensor.Dtype, s ...int) interface{} {
		dist := distuv.Uniform{Min: u.Low, Max: u.High, Src: src}
		return fill(dt, dist.Rand, s...)
	}
}

// GaussianConfig implements a configuration of a weight initializer
// that draws weights from a gaussian distribution
type GaussianConfig struct {
	Mean, StdDev float64
}

// NewGaussian returns a new gaussian weight initializer
func NewGaussian(mean, stddev float64, seed uint64) (*InitWFn, error) {
	return newInitWFn(GaussianConfig{Mean: mean, StdDev: stddev}, seed)
}

// Type returns the type of initialization algorithm described by
// the configuration.
func (g GaussianConfig) Type() Type {
	return Gaussian
}

// Validate checks the standard deviation
func (g GaussianConfig) Validate() error {
	if g.StdDev <= 0 {
		return fmt.Errorf("gaussian: standard deviation must be positive "+
			"\n\twant(>0) \n\thave(%v)", g.StdDev)
	}
	return nil
}

// Create returns the weight initialization algorithm as a Gorgonia
// InitWFn
func (g GaussianConfig) Create(src rand.Source) G.InitWFn {
	return func(dt tensor.Dtype, s ...int) interface{} {
		dist := distuv.Normal{Mu: g.Mean, Sigma: g.StdDev, Src: src}
		return fill(dt, dist.Rand, s...)
	}
}

// ConstantConfig implements a configuration of a weight initializer
// that initializes all weights to a constant value.
type ConstantConfig struct {
	Value float64
}

// NewConstant returns a new constant weight intializer
func NewConstant(value float64) (*InitWFn, error) {
	return newInitWFn(ConstantConfig{value}, 0)
}

// NewZeroes returns a new zeroes weight intializer
func NewZeroes() (*InitWFn, error) {
	return NewConstant(0)
}

// Type returns the type of the weight initializer created using this
// config
func (c ConstantConfig) Type() Type {
	if c.Value == 0 {
		return Zeroes
	}
	return Constant
}

// Validate always succeeds
func (c ConstantConfig) Validate() error {
	return nil
}

// Create creates the Gorgonia weight initializer from this
// initializer config
func (c ConstantConfig) Create(rand.Source) G.InitWFn {
	return func(dt tensor.Dtype, s ...int) interface{} {
		return fill(dt, func() float64 { return c.Value }, s...)
	}
}
