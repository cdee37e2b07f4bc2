package network

import (
	"fmt"

	G "gorgonia.org/gorgonia"
)

type activationType string

const (
	relu     activationType = "relu"
	identity activationType = "identity"
	tanh     activationType = "tanh"
	none     activationType = "nil"
)

// Activation represents an activation function that a network layer
// applies to its outputs
type Activation struct {
	activationType
	f func(x *G.Node) (*G.Node, error)
}

// ReLU returns a rectified linear unit *Activation
func ReLU() *Activation {
	return &Activation{
		activationType: relu,
		f:              G.Rectify,
	}
}

// TanH returns a hyperbolic tangent *Activation
func TanH() *Activation {
	return &Activation{
		activationType: tanh,
		f:              G.Tanh,
	}
}

// Identity returns an identity *Activation
func Identity() *Activation {
	return &Activation{
		activationType: identity,
		f: func(x *G.Node) (*G.Node, error) {
			return x, nil
		},
	}
}

// Nil returns an *Activation that applies no function at all
func Nil() *Activation {
	return &Activation{
		activationType: none,
		f:              nil,
	}
}

// fwd applies the activation function to a node in a computational
// graph
func (a *Activation) fwd(x *G.Node) (*G.Node, error) {
	return a.f(x)
}

// String implements the fmt.Stringer interface
func (a *Activation) String() string {
	return string(a.activationType)
}

// IsNil returns whether the Activation applies no function at all
func (a *Activation) IsNil() bool {
	return a.activationType == none
}

// GobEncode implements the gob.GobEncoder interface
func (a *Activation) GobEncode() ([]byte, error) {
	return []byte(a.activationType), nil
}

// GobDecode implements the gob.GobDecoder interface
func (a *Activation) GobDecode(encoded []byte) error {
	switch decoded := activationType(encoded); decoded {
	case relu:
		*a = *ReLU()
	case identity:
		*a = *Identity()
	case tanh:
		*a = *TanH()
	case none:
		*a = *Nil()
	default:
		return fmt.Errorf("gobdecode: no activation of type %v", decoded)
	}
	return nil
}
