package network

import (
	"fmt"
	"sort"

	"gorgonia.org/tensor"
)

// Parameters maps scope-relative parameter names, such as
// "trunk/weights" or "value/out/bias", to their values
type Parameters map[string]*tensor.Dense

// Clone returns a deep copy of the Parameters
func (p Parameters) Clone() Parameters {
	out := make(Parameters, len(p))
	for name, value := range p {
		out[name] = value.Clone().(*tensor.Dense)
	}
	return out
}

// Names returns the parameter names in sorted order
func (p Parameters) Names() []string {
	names := make([]string, 0, len(p))
	for name := range p {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Count returns the total number of scalar parameters
func (p Parameters) Count() int {
	total := 0
	for _, value := range p {
		total += value.Shape().TotalSize()
	}
	return total
}

// checkCompatible returns an error if src does not hold a parameter of
// the same shape for every parameter in p
func (p Parameters) checkCompatible(src Parameters) error {
	for name, value := range p {
		other, ok := src[name]
		if !ok {
			return fmt.Errorf("missing parameter %v", name)
		}
		if !value.Shape().Eq(other.Shape()) {
			return fmt.Errorf("parameter %v has wrong shape "+
				"\n\twant(%v) \n\thave(%v)", name, value.Shape(),
				other.Shape())
		}
	}
	return nil
}

// assign copies the values of src into p in place. The parameters must
// already have been checked with checkCompatible.
func (p Parameters) assign(src Parameters) {
	for name, value := range p {
		copy(value.Float64s(), src[name].Float64s())
	}
}

// Copy overwrites every parameter of dest with the correspondingly
// named parameter of src. It is a hard update: after Copy both networks
// compute the same function until one of them is updated.
func Copy(dest, src NeuralNet) error {
	if err := dest.SetParameters(src.Parameters()); err != nil {
		return fmt.Errorf("copy: %v", err)
	}
	return nil
}
