// Package network implements neural networks for predicting action
// values from environment observations
package network

import (
	G "gorgonia.org/gorgonia"
)

// NeuralNet implements a neural network which predicts one value per
// environmental action given a batch of observations
type NeuralNet interface {
	// Graph returns the computational graph that the network is
	// built on
	Graph() *G.ExprGraph

	// Clone clones the network onto a new computational graph
	Clone() (NeuralNet, error)

	// CloneWithBatch clones the network onto a new computational
	// graph, changing the batch size of the cloned network
	CloneWithBatch(int) (NeuralNet, error)

	// BatchSize returns the number of observations the network takes
	// in a single forward pass
	BatchSize() int

	// Features returns the number of features in a single flattened
	// observation
	Features() int

	// Outputs returns the number of action values the network
	// predicts per observation
	Outputs() int

	// SetInput sets the value of the input node before running the
	// forward pass. The input is a flattened batch of observations.
	SetInput([]float64) error

	// Set sets the weights of the network to a copy of the weights
	// of another network with the same architecture
	Set(NeuralNet) error

	// Learnables returns the learnable nodes of the network
	Learnables() G.Nodes

	// Model returns the learnable nodes of the network along with
	// their gradients
	Model() []G.ValueGrad

	// Output returns the value of the prediction node after the last
	// forward pass
	Output() G.Value

	// Prediction returns the node of the computational graph that
	// stores the network's prediction
	Prediction() *G.Node
}

// Layer implements a single layer of a NeuralNet
type Layer interface {
	fwd(*G.Node) (*G.Node, error)

	// CloneTo clones the layer onto a new computational graph
	CloneTo(*G.ExprGraph) Layer

	Weights() *G.Node
	Bias() *G.Node
	Activation() *Activation
}
