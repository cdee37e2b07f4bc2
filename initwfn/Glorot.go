package initwfn

import G "gorgonia.org/gorgonia"

// GlorotUConfig implements a configuration of the Glorot uniform
// initialization algorithm.
type GlorotUConfig struct {
	Gain float64
}

// NewGlorotU returns a new Glorot uniform weight initializer
func NewGlorotU(gain float64) (*InitWFn, error) {
	config := GlorotUConfig{
		Gain: gain,
	}

	return newInitWFn(config)
}

// Type returns the type of the weight initializer created using this
// config
func (g GlorotUConfig) Type() Type {
	return GlorotU
}

// Create creates the Gorgonia weight initializer from this
// initializer config
func (g GlorotUConfig) Create() G.InitWFn {
	return G.GlorotU(g.Gain)
}

// GlorotNConfig implements a configuration of the Glorot normal
// initialization algorithm.
type GlorotNConfig struct {
	Gain float64
}

// NewGlorotN returns a new Glorot normal weight initializer
func NewGlorotN(gain float64) (*InitWFn, error) {
	config := GlorotNConfig{
		Gain: gain,
	}

	return newInitWFn(config)
}

// Type returns the type of the weight initializer created using this
// config
func (g GlorotNConfig) Type() Type {
	return GlorotN
}

// Create creates the Gorgonia weight initializer from this
// initializer config
func (g GlorotNConfig) Create() G.InitWFn {
	return G.GlorotN(g.Gain)
}
