package network

import (
	"fmt"

	"github.com/samuelfneumann/godqn/utils/intutils"
	G "gorgonia.org/gorgonia"
)

// Architecture enumerates the network architectures available for
// action-value prediction
type Architecture int

const (
	// Dense denotes a fully connected network for vector observations
	Dense Architecture = iota

	// Conv denotes a convolutional network for stacked-frame image
	// observations
	Conv
)

// String returns the string representation of an Architecture
func (a Architecture) String() string {
	switch a {
	case Dense:
		return "Dense"

	case Conv:
		return "Conv"

	default:
		return fmt.Sprintf("Architecture(%d)", int(a))
	}
}

// InvalidArchitectureError indicates that a network was requested
// with an Architecture that this package does not implement
type InvalidArchitectureError struct {
	Arch Architecture
}

// Error implements the error interface
func (e *InvalidArchitectureError) Error() string {
	return fmt.Sprintf("invalid architecture %v", e.Arch)
}

// IsInvalidArchitecture returns whether the error err resulted from
// requesting a network with an architecture this package does not
// implement
func IsInvalidArchitecture(err error) bool {
	_, ok := err.(*InvalidArchitectureError)
	return ok
}

// New creates an action-value network with the given architecture on
// the graph g. Vector observations use a one-dimensional obsShape;
// image observations use (channels, height, width).
//
// Dense networks use ReLU activations and a bias unit on each hidden
// layer, with hidden layer sizes given by hiddenSizes, defaulting to
// two layers of 512 units. Conv networks use a fixed convolutional
// stack and ignore hiddenSizes.
func New(arch Architecture, obsShape []int, batch, outputs int,
	g *G.ExprGraph, hiddenSizes []int, init,
	biasInit G.InitWFn) (NeuralNet, error) {
	if len(obsShape) == 0 {
		return nil, fmt.Errorf("new: empty observation shape")
	}
	if outputs < 1 {
		return nil, fmt.Errorf("new: networks require at least one "+
			"output\n\twant(>= 1)\n\thave(%v)", outputs)
	}

	switch arch {
	case Dense:
		features := intutils.Prod(obsShape...)
		if len(hiddenSizes) == 0 {
			hiddenSizes = []int{512, 512}
		}
		biases := make([]bool, len(hiddenSizes))
		activations := make([]*Activation, len(hiddenSizes))
		for i := range hiddenSizes {
			biases[i] = true
			activations[i] = ReLU()
		}
		return NewDense(features, batch, outputs, g, hiddenSizes,
			biases, init, biasInit, activations)

	case Conv:
		if len(obsShape) != 3 {
			return nil, fmt.Errorf("new: conv networks require a "+
				"(channels, height, width) observation shape"+
				"\n\twant(3 dimensions)\n\thave(%v)", len(obsShape))
		}
		return NewConv(obsShape[0], obsShape[1], obsShape[2], batch,
			outputs, g, init, biasInit)

	default:
		return nil, &InvalidArchitectureError{Arch: arch}
	}
}
