// Package initwfn implements seeded weight initializers for Gorgonia
// graphs that can be JSON serialized into configuration files.
package initwfn

import (
	"encoding/json"
	"fmt"
	"reflect"

	"golang.org/x/exp/rand"
	G "gorgonia.org/gorgonia"
	"gorgonia.org/tensor"
)

// Type describes different types of InitWFn that are available.
// Type is used to implement a basic type system of InitWFn's.
type Type string

// Available InitWFn types
const (
	GlorotU  Type = "GlorotU"
	GlorotN  Type = "GlorotN"
	HeU      Type = "HeU"
	HeN      Type = "HeN"
	Uniform  Type = "Uniform"
	Gaussian Type = "Gaussian"
	Constant Type = "Constant"
	Zeroes   Type = "Zeroes"
)

// InitWFn wraps a weight initializer configuration together with the
// seed of the random source it draws from so that initialization is
// reproducible and the initializer can be JSON marshalled and
// unmarshalled.
type InitWFn struct {
	Type
	Config
	Seed uint64
}

// newInitWFn returns a new InitWFn
func newInitWFn(c Config, seed uint64) (*InitWFn, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &InitWFn{Type: c.Type(), Config: c, Seed: seed}, nil
}

// InitWFn returns a Gorgonia InitWFn drawing from a new random source
// seeded with the initializer's seed. Each call restarts the sequence.
func (i *InitWFn) InitWFn() G.InitWFn {
	return i.Config.Create(rand.NewSource(i.Seed))
}

// String implements the fmt.Stringer interface
func (i *InitWFn) String() string {
	return fmt.Sprintf("{%v InitWFn: %v Seed: %v}", i.Type, i.Config, i.Seed)
}

// UnmarshalJSON implements the json.Unmarshaller interface
func (i *InitWFn) UnmarshalJSON(data []byte) error {
	config, typeName, err := unmarshalConfig(
		data,
		"Type",
		"Config",
		map[string]reflect.Type{
			string(GlorotU):  reflect.TypeOf(GlorotUConfig{}),
			string(GlorotN):  reflect.TypeOf(GlorotNConfig{}),
			string(HeU):      reflect.TypeOf(HeUConfig{}),
			string(HeN):      reflect.TypeOf(HeNConfig{}),
			string(Uniform):  reflect.TypeOf(UniformConfig{}),
			string(Gaussian): reflect.TypeOf(GaussianConfig{}),
			string(Constant): reflect.TypeOf(ConstantConfig{}),
			string(Zeroes):   reflect.TypeOf(ConstantConfig{}),
		})
	if err != nil {
		return err
	}

	var seed struct{ Seed uint64 }
	if err := json.Unmarshal(data, &seed); err != nil {
		return err
	}

	if err := config.Validate(); err != nil {
		return err
	}

	i.Type = typeName
	i.Config = config
	i.Seed = seed.Seed

	return nil
}

// unmarshalConfig uses reflection to unmarshall a Config into its
// concrete type. Both the Config and its Type are returned.
func unmarshalConfig(data []byte, typeJsonField, valueJsonField string,
	customTypes map[string]reflect.Type) (Config, Type, error) {
	m := map[string]interface{}{}
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, "", err
	}

	typeName, ok := m[typeJsonField].(string)
	if !ok {
		return nil, "", fmt.Errorf("unmarshalConfig: missing field %v",
			typeJsonField)
	}
	ty, found := customTypes[typeName]
	if !found {
		return nil, "", fmt.Errorf("unmarshalConfig: unknown initializer "+
			"type %v", typeName)
	}
	value := reflect.New(ty).Interface()

	valueBytes, err := json.Marshal(m[valueJsonField])
	if err != nil {
		return nil, "", err
	}

	if err = json.Unmarshal(valueBytes, value); err != nil {
		return nil, "", err
	}
	concreteValue := reflect.ValueOf(value).Elem().Interface().(Config)

	return concreteValue, Type(typeName), nil
}

// Config implements a weight initializer configuration and can be used
// to create the described Gorgonia InitWFn's.
type Config interface {
	// Create returns the Gorgonia InitWFn that the Config describes,
	// drawing random numbers from src
	Create(src rand.Source) G.InitWFn

	// Type returns the type of Gorgonia InitWFn that is returned
	Type() Type

	// Validate returns an error if the Config's hyperparameters are
	// illegal
	Validate() error
}

// fans returns the fan in and fan out of a weight tensor with the given
// shape. The last dimension is the fan out.
func fans(s ...int) (fanIn, fanOut float64) {
	switch len(s) {
	case 0:
		return 1, 1
	case 1:
		return float64(s[0]), float64(s[0])
	}

	in := 1
	for _, dim := range s[:len(s)-1] {
		in *= dim
	}
	return float64(in), float64(s[len(s)-1])
}

// fill returns a backing slice of the given dtype and shape with each
// element drawn from sample
func fill(dt tensor.Dtype, sample func() float64, s ...int) interface{} {
	size := tensor.Shape(s).TotalSize()

	switch dt {
	case tensor.Float64:
		out := make([]float64, size)
		for i := range out {
			out[i] = sample()
		}
		return out

	case tensor.Float32:
		out := make([]float32, size)
		for i := range out {
			out[i] = float32(sample())
		}
		return out

	default:
		panic(fmt.Sprintf("fill: dtype %v not supported", dt))
	}
}
