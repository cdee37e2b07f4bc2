package initwfn

import G "gorgonia.org/gorgonia"

// GaussianConfig implements a configuration of a weight initializer
// that draws weights from a Gaussian distribution.
type GaussianConfig struct {
	Mean, StdDev float64
}

// NewGaussian returns a new Gaussian weight initializer
func NewGaussian(mean, stddev float64) (*InitWFn, error) {
	config := GaussianConfig{
		Mean:   mean,
		StdDev: stddev,
	}

	return newInitWFn(config)
}

// Type returns the type of the weight initializer created using this
// config
func (g GaussianConfig) Type() Type {
	return Gaussian
}

// Create creates the Gorgonia weight initializer from this
// initializer config
func (g GaussianConfig) Create() G.InitWFn {
	return G.Gaussian(g.Mean, g.StdDev)
}
