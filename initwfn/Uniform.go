package initwfn

import G "gorgonia.org/gorgonia"

// UniformConfig implements a configuration of a weight initializer
// that draws weights uniformly from an interval.
type UniformConfig struct {
	Low, High float64
}

// NewUniform returns a new uniform weight initializer
func NewUniform(low, high float64) (*InitWFn, error) {
	config := UniformConfig{
		Low:  low,
		High: high,
	}

	return newInitWFn(config)
}

// Type returns the type of the weight initializer created using this
// config
func (u UniformConfig) Type() Type {
	return Uniform
}

// Create creates the Gorgonia weight initializer from this
// initializer config
func (u UniformConfig) Create() G.InitWFn {
	return G.Uniform(u.Low, u.High)
}
