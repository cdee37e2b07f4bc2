package network

import (
	"bytes"
	"encoding/gob"
	"fmt"

	G "gorgonia.org/gorgonia"
	"gorgonia.org/tensor"
)

// denseQNet implements a fully connected multi-layered perceptron
// with one output per environmental action. Observations are flat
// feature vectors.
type denseQNet struct {
	g          *G.ExprGraph
	layers     []Layer
	input      *G.Node
	numOutputs int
	numInputs  int
	batchSize  int

	// Data needed for gobbing
	hiddenSizes []int
	biases      []bool
	activations []*Activation

	learnables G.Nodes
	model      []G.ValueGrad

	prediction *G.Node
	predVal    G.Value
}

// NewDense creates and returns a new fully connected action-value
// network on the graph g. The network takes batches of batch
// observations with features features each and predicts outputs
// action values per observation.
//
// The network has len(hiddenSizes) + 1 layers. A final linear layer
// with a bias unit and no activation is always added so that the
// network predicts outputs values. For index i, hiddenSizes[i] is
// the number of nodes in hidden layer i; biases[i] is true if hidden
// layer i contains a bias unit; and activations[i] is the activation
// function of hidden layer i. The parameters init and biasInit
// determine the initialization of weights and biases respectively.
func NewDense(features, batch, outputs int, g *G.ExprGraph,
	hiddenSizes []int, biases []bool, init, biasInit G.InitWFn,
	activations []*Activation) (NeuralNet, error) {
	// Ensure we have one activation per layer
	if len(hiddenSizes) != len(activations) {
		msg := "newdense: invalid number of activations\n\twant(%d)" +
			"\n\thave(%d)"
		return nil, fmt.Errorf(msg, len(hiddenSizes), len(activations))
	}

	// Ensure one bias bool per layer
	if len(hiddenSizes) != len(biases) {
		msg := "newdense: invalid number of biases\n\twant(%d)" +
			"\n\thave(%d)"
		return nil, fmt.Errorf(msg, len(hiddenSizes), len(biases))
	}

	// Add a final linear layer so that the network always predicts
	// one value per action. The arguments are copied so that the
	// caller's slices are never modified.
	hiddenSizes = append(append([]int{}, hiddenSizes...), outputs)
	biases = append(append([]bool{}, biases...), true)
	activations = append(append([]*Activation{}, activations...),
		Identity())

	// Set up the input node
	input := G.NewMatrix(g, tensor.Float64, G.WithShape(batch, features),
		G.WithName("input"), G.WithInit(G.Zeroes()))

	layers := addFCLayers(g, hiddenSizes, biases, activations, init,
		biasInit, features, "")

	// Create the network and run the forward pass on the input node
	network := denseQNet{
		g:           g,
		layers:      layers,
		input:       input,
		numOutputs:  outputs,
		numInputs:   features,
		batchSize:   batch,
		hiddenSizes: hiddenSizes,
		biases:      biases,
		activations: activations,
	}
	if _, err := network.fwd(input); err != nil {
		return nil, fmt.Errorf("newdense: could not compute forward "+
			"pass: %v", err)
	}

	return &network, nil
}

// Graph returns the computational graph of the denseQNet
func (e *denseQNet) Graph() *G.ExprGraph {
	return e.g
}

// Clone clones a denseQNet
func (e *denseQNet) Clone() (NeuralNet, error) {
	return e.CloneWithBatch(e.batchSize)
}

// CloneWithBatch clones a denseQNet onto a new computational graph
// with a new input batch size
func (e *denseQNet) CloneWithBatch(batchSize int) (NeuralNet, error) {
	graph := G.NewGraph()

	input := G.NewMatrix(
		graph,
		tensor.Float64,
		G.WithShape(batchSize, e.numInputs),
		G.WithName("input"),
		G.WithInit(G.Zeroes()),
	)

	return e.cloneWithInputTo(input, graph)
}

// cloneWithInputTo clones a denseQNet onto the graph with a
// specified input node
func (e *denseQNet) cloneWithInputTo(input *G.Node,
	graph *G.ExprGraph) (NeuralNet, error) {
	if input.Graph() != graph {
		return nil, fmt.Errorf("clonewithinputto: input node not on " +
			"the target graph")
	}
	if !input.IsMatrix() {
		return nil, fmt.Errorf("clonewithinputto: input must be a " +
			"matrix node")
	}

	l := make([]Layer, len(e.layers))
	for i := range e.layers {
		l[i] = e.layers[i].CloneTo(graph)
	}

	batchSize := input.Shape()[0]

	// Create the network and run the forward pass on the input node
	network := denseQNet{
		g:           graph,
		layers:      l,
		input:       input,
		numOutputs:  e.numOutputs,
		numInputs:   e.numInputs,
		batchSize:   batchSize,
		hiddenSizes: e.hiddenSizes,
		biases:      e.biases,
		activations: e.activations,
	}
	if _, err := network.fwd(input); err != nil {
		return nil, fmt.Errorf("clonewithinputto: could not compute "+
			"forward pass: %v", err)
	}

	return &network, nil
}

// BatchSize returns the batch size of inputs to the network
func (e *denseQNet) BatchSize() int {
	return e.batchSize
}

// Features returns the number of features in a single observation
// vector that the network takes as input
func (e *denseQNet) Features() int {
	return e.numInputs
}

// Outputs returns the number of action values predicted per
// observation
func (e *denseQNet) Outputs() int {
	return e.numOutputs
}

// SetInput sets the value of the input node before running the
// forward pass
func (e *denseQNet) SetInput(input []float64) error {
	if len(input) != e.numInputs*e.batchSize {
		return fmt.Errorf("setinput: invalid number of inputs"+
			"\n\twant(%v)\n\thave(%v)", e.numInputs*e.batchSize,
			len(input))
	}
	inputTensor := tensor.New(
		tensor.WithBacking(input),
		tensor.WithShape(e.input.Shape()...),
	)
	return G.Let(e.input, inputTensor)
}

// Set sets the weights of a denseQNet to be equal to the weights of
// another denseQNet
func (dest *denseQNet) Set(source NeuralNet) error {
	sourceNodes := source.Learnables()
	nodes := dest.Learnables()
	if len(sourceNodes) != len(nodes) {
		return fmt.Errorf("set: invalid number of source learnables"+
			"\n\twant(%v)\n\thave(%v)", len(nodes), len(sourceNodes))
	}

	for i, destLearnable := range nodes {
		sourceLearnable := sourceNodes[i].Clone()
		err := G.Let(destLearnable, sourceLearnable.(*G.Node).Value())
		if err != nil {
			return err
		}
	}
	return nil
}

// Learnables returns the learnable nodes in a denseQNet
func (e *denseQNet) Learnables() G.Nodes {
	// Lazy instantiation
	if e.learnables == nil {
		e.learnables = learnables(e.layers)
	}
	return e.learnables
}

// Model returns the learnable nodes with their gradients
func (e *denseQNet) Model() []G.ValueGrad {
	// Lazy instantiation
	if e.model == nil {
		e.model = model(e.layers)
	}
	return e.model
}

// fwd performs the forward pass of the denseQNet on the input node
func (e *denseQNet) fwd(input *G.Node) (*G.Node, error) {
	inputShape := input.Shape()[len(input.Shape())-1]
	if inputShape != e.numInputs {
		return nil, fmt.Errorf("fwd: invalid shape for input to network:"+
			" \n\twant(%v) \n\thave(%v)", e.numInputs, inputShape)
	}

	pred := input
	var err error
	for i, l := range e.layers {
		if pred, err = l.fwd(pred); err != nil {
			msg := "fwd: could not compute forward pass of layer %v: %v"
			return nil, fmt.Errorf(msg, i, err)
		}
	}

	e.prediction = pred
	G.Read(e.prediction, &e.predVal)

	return pred, nil
}

// Output returns the output of the denseQNet after the last forward
// pass
func (e *denseQNet) Output() G.Value {
	return e.predVal
}

// Prediction returns the node of the computational graph that stores
// the output of the denseQNet
func (e *denseQNet) Prediction() *G.Node {
	return e.prediction
}

// GobEncode implements the gob.GobEncoder interface
func (e *denseQNet) GobEncode() ([]byte, error) {
	var buf bytes.Buffer
	enc := gob.NewEncoder(&buf)

	if err := enc.Encode(e.numOutputs); err != nil {
		return nil, fmt.Errorf("gobencode: could not encode number " +
			"of outputs")
	}

	if err := enc.Encode(e.numInputs); err != nil {
		return nil, fmt.Errorf("gobencode: could not encode number " +
			"of inputs")
	}

	if err := enc.Encode(e.batchSize); err != nil {
		return nil, fmt.Errorf("gobencode: could not encode batch size")
	}

	if err := enc.Encode(e.hiddenSizes); err != nil {
		return nil, fmt.Errorf("gobencode: could not encode hidden sizes")
	}

	if err := enc.Encode(e.biases); err != nil {
		return nil, fmt.Errorf("gobencode: could not encode biases")
	}

	if err := enc.Encode(e.activations); err != nil {
		return nil, fmt.Errorf("gobencode: could not encode activations")
	}

	// Store the layer weights
	for i, layer := range e.layers {
		if err := enc.Encode(layer); err != nil {
			msg := "gobencode: could not encode layer %v: %v"
			return nil, fmt.Errorf(msg, i, err)
		}
	}

	return buf.Bytes(), nil
}

// GobDecode implements the gob.GobDecoder interface
func (e *denseQNet) GobDecode(in []byte) error {
	buf := bytes.NewReader(in)
	dec := gob.NewDecoder(buf)

	var numOutputs int
	if err := dec.Decode(&numOutputs); err != nil {
		return fmt.Errorf("gobdecode: could not decode number of outputs")
	}

	var numInputs int
	if err := dec.Decode(&numInputs); err != nil {
		return fmt.Errorf("gobdecode: could not decode number of inputs")
	}

	var batchSize int
	if err := dec.Decode(&batchSize); err != nil {
		return fmt.Errorf("gobdecode: could not decode batch size")
	}

	var hiddenSizes []int
	if err := dec.Decode(&hiddenSizes); err != nil {
		return fmt.Errorf("gobdecode: could not decode hidden sizes")
	}

	var biases []bool
	if err := dec.Decode(&biases); err != nil {
		return fmt.Errorf("gobdecode: could not decode biases")
	}

	var activations []*Activation
	if err := dec.Decode(&activations); err != nil {
		return fmt.Errorf("gobdecode: could not decode activations")
	}

	// The encoded sizes include the final linear layer, which the
	// constructor adds back
	hiddenSizes = hiddenSizes[:len(hiddenSizes)-1]
	biases = biases[:len(biases)-1]
	activations = activations[:len(activations)-1]

	// Create a new network to decode the weights into
	g := G.NewGraph()
	newNet, err := NewDense(numInputs, batchSize, numOutputs, g,
		hiddenSizes, biases, G.Zeroes(), G.Zeroes(), activations)
	if err != nil {
		return fmt.Errorf("gobdecode: could not construct decoded "+
			"network: %v", err)
	}
	newDense := newNet.(*denseQNet)

	// Fill the new network's layers with the decoded weights
	for i := range newDense.layers {
		if err := dec.Decode(newDense.layers[i]); err != nil {
			return fmt.Errorf("gobdecode: could not decode layer %v: %v",
				i, err)
		}
	}

	*e = *newDense
	return nil
}

// learnables computes the learnable nodes of a sequence of layers
func learnables(layers []Layer) G.Nodes {
	nodes := make([]*G.Node, 0, 2*len(layers))

	for i := range layers {
		nodes = append(nodes, layers[i].Weights())
		if bias := layers[i].Bias(); bias != nil {
			nodes = append(nodes, bias)
		}
	}
	return G.Nodes(nodes)
}

// model computes the learnable nodes with their gradients of a
// sequence of layers
func model(layers []Layer) []G.ValueGrad {
	grads := make([]G.ValueGrad, 0, 2*len(layers))
	for _, node := range learnables(layers) {
		grads = append(grads, node)
	}
	return grads
}
