package model

import (
	"fmt"

	"github.com/samuelfneumann/godqn/initwfn"
	"github.com/samuelfneumann/godqn/network"
	"github.com/samuelfneumann/godqn/solver"
)

// Config implements a configuration for a DQN value model. The zero
// value is not a valid configuration; at least the observation shape,
// number of actions, batch size, replay capacity, and learning rate
// must be set.
type Config struct {
	// Network architecture. ObservationShape holds the number of
	// observation features for Dense networks and (channels, height,
	// width) for Conv networks. HiddenSizes applies to Dense networks
	// only and defaults to two layers of 512 units.
	Architecture     network.Architecture
	ObservationShape []int
	NumActions       int
	HiddenSizes      []int

	// Initialization algorithms for weights and biases. InitWFn
	// defaults to Glorot uniform with gain 1.0, and BiasInitWFn to a
	// small positive constant.
	InitWFn     *initwfn.InitWFn
	BiasInitWFn *initwfn.InitWFn

	// Learning parameters. Solver adapts the weights of the learning
	// network and defaults to RMSProp with step size LearningRate.
	BatchSize      int
	ReplayCapacity int
	Gamma          float64
	LearningRate   float64
	Solver         *solver.Solver

	Seed int64
}

// Validate checks a Config to ensure it is a valid configuration of a
// DQN value model
func (c Config) Validate() error {
	if len(c.ObservationShape) == 0 {
		return fmt.Errorf("new: empty observation shape")
	}
	for _, dim := range c.ObservationShape {
		if dim < 1 {
			return fmt.Errorf("new: observation dimensions must be "+
				"positive \n\twant(>= 1) \n\thave(%v)", dim)
		}
	}

	if c.NumActions < 1 {
		return fmt.Errorf("new: models predict the value of at least "+
			"one action \n\twant(>= 1) \n\thave(%v)", c.NumActions)
	}

	if c.BatchSize < 1 {
		return fmt.Errorf("new: batches must hold at least one "+
			"transition \n\twant(>= 1) \n\thave(%v)", c.BatchSize)
	}

	if c.Gamma < 0.0 || c.Gamma > 1.0 {
		return fmt.Errorf("new: discount must be in [0, 1] \n\thave(%v)",
			c.Gamma)
	}

	if c.Solver == nil && c.LearningRate <= 0 {
		return fmt.Errorf("new: the default solver requires a positive "+
			"learning rate \n\thave(%v)", c.LearningRate)
	}

	return nil
}
