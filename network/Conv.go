package network

import (
	"bytes"
	"encoding/gob"
	"fmt"

	G "gorgonia.org/gorgonia"
	"gorgonia.org/tensor"
)

// Convolutional feature extractor dimensions. Observations pass
// through three convolutional layers and a single hidden fully
// connected layer before the output layer.
var (
	convChannels = []int{32, 64, 128}
	convKernels  = []int{8, 4, 3}
	convStrides  = []int{4, 3, 1}
)

const convHiddenSize int = 512

// convQNet implements an action-value network for image
// observations. Inputs are batches of stacked frames of shape
// (batch, channels, height, width), fed to the network flattened
// row-major.
type convQNet struct {
	g      *G.ExprGraph
	layers []Layer
	input  *G.Node

	channels   int
	height     int
	width      int
	numOutputs int
	batchSize  int

	// Number of leading layers that are convolutional; the remaining
	// layers are fully connected and operate on flattened features
	numConvLayers int
	flatFeatures  int

	learnables G.Nodes
	model      []G.ValueGrad

	prediction *G.Node
	predVal    G.Value
}

// NewConv creates and returns a new convolutional action-value
// network on the graph g. The network takes batches of batch
// observations of shape (channels, height, width) and predicts
// outputs action values per observation. The parameters init and
// biasInit determine the initialization of weights and biases
// respectively.
func NewConv(channels, height, width, batch, outputs int,
	g *G.ExprGraph, init, biasInit G.InitWFn) (NeuralNet, error) {
	if channels < 1 || height < 1 || width < 1 {
		return nil, fmt.Errorf("newconv: invalid observation shape "+
			"(%v, %v, %v)", channels, height, width)
	}

	layers := make([]Layer, 0, len(convChannels)+2)

	// Convolutional feature extractor
	in := channels
	h, w := height, width
	for i := range convChannels {
		layer := newConvLayer(g, in, convChannels[i], convKernels[i],
			convStrides[i], ReLU(), init, biasInit,
			fmt.Sprintf("Conv%d", i))

		conv := layer.(*convLayer)
		h, w = conv.outSize(h), conv.outSize(w)
		if h < 1 || w < 1 {
			return nil, fmt.Errorf("newconv: observation of size "+
				"(%v, %v) is too small for convolutional layer %v",
				height, width, i)
		}

		layers = append(layers, layer)
		in = convChannels[i]
	}
	flatFeatures := in * h * w

	// Fully connected head
	layers = append(layers, addFCLayers(
		g,
		[]int{convHiddenSize, outputs},
		[]bool{true, true},
		[]*Activation{ReLU(), Identity()},
		init,
		biasInit,
		flatFeatures,
		"FC",
	)...)

	// Set up the input node
	input := G.NewTensor(g, tensor.Float64, 4,
		G.WithShape(batch, channels, height, width),
		G.WithName("input"), G.WithInit(G.Zeroes()))

	// Create the network and run the forward pass on the input node
	network := convQNet{
		g:             g,
		layers:        layers,
		input:         input,
		channels:      channels,
		height:        height,
		width:         width,
		numOutputs:    outputs,
		batchSize:     batch,
		numConvLayers: len(convChannels),
		flatFeatures:  flatFeatures,
	}
	if _, err := network.fwd(input); err != nil {
		return nil, fmt.Errorf("newconv: could not compute forward "+
			"pass: %v", err)
	}

	return &network, nil
}

// Graph returns the computational graph of the convQNet
func (e *convQNet) Graph() *G.ExprGraph {
	return e.g
}

// Clone clones a convQNet
func (e *convQNet) Clone() (NeuralNet, error) {
	return e.CloneWithBatch(e.batchSize)
}

// CloneWithBatch clones a convQNet onto a new computational graph
// with a new input batch size
func (e *convQNet) CloneWithBatch(batchSize int) (NeuralNet, error) {
	graph := G.NewGraph()

	input := G.NewTensor(graph, tensor.Float64, 4,
		G.WithShape(batchSize, e.channels, e.height, e.width),
		G.WithName("input"), G.WithInit(G.Zeroes()))

	l := make([]Layer, len(e.layers))
	for i := range e.layers {
		l[i] = e.layers[i].CloneTo(graph)
	}

	// Create the network and run the forward pass on the input node
	network := convQNet{
		g:             graph,
		layers:        l,
		input:         input,
		channels:      e.channels,
		height:        e.height,
		width:         e.width,
		numOutputs:    e.numOutputs,
		batchSize:     batchSize,
		numConvLayers: e.numConvLayers,
		flatFeatures:  e.flatFeatures,
	}
	if _, err := network.fwd(input); err != nil {
		return nil, fmt.Errorf("clonewithbatch: could not compute "+
			"forward pass: %v", err)
	}

	return &network, nil
}

// BatchSize returns the batch size of inputs to the network
func (e *convQNet) BatchSize() int {
	return e.batchSize
}

// Features returns the number of features in a single flattened
// observation that the network takes as input
func (e *convQNet) Features() int {
	return e.channels * e.height * e.width
}

// Outputs returns the number of action values predicted per
// observation
func (e *convQNet) Outputs() int {
	return e.numOutputs
}

// SetInput sets the value of the input node before running the
// forward pass. The input is a batch of stacked frames flattened
// row-major.
func (e *convQNet) SetInput(input []float64) error {
	if len(input) != e.Features()*e.batchSize {
		return fmt.Errorf("setinput: invalid number of inputs"+
			"\n\twant(%v)\n\thave(%v)", e.Features()*e.batchSize,
			len(input))
	}
	inputTensor := tensor.New(
		tensor.WithBacking(input),
		tensor.WithShape(e.input.Shape()...),
	)
	return G.Let(e.input, inputTensor)
}

// Set sets the weights of a convQNet to be equal to the weights of
// another convQNet
func (dest *convQNet) Set(source NeuralNet) error {
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

// Learnables returns the learnable nodes in a convQNet
func (e *convQNet) Learnables() G.Nodes {
	// Lazy instantiation
	if e.learnables == nil {
		e.learnables = learnables(e.layers)
	}
	return e.learnables
}

// Model returns the learnable nodes with their gradients
func (e *convQNet) Model() []G.ValueGrad {
	// Lazy instantiation
	if e.model == nil {
		e.model = model(e.layers)
	}
	return e.model
}

// fwd performs the forward pass of the convQNet on the input node
func (e *convQNet) fwd(input *G.Node) (*G.Node, error) {
	pred := input
	var err error
	for i, l := range e.layers {
		if i == e.numConvLayers {
			// Flatten the convolutional features before the fully
			// connected head
			pred, err = G.Reshape(pred,
				tensor.Shape{e.batchSize, e.flatFeatures})
			if err != nil {
				return nil, fmt.Errorf("fwd: could not flatten "+
					"convolutional features: %v", err)
			}
		}

		if pred, err = l.fwd(pred); err != nil {
			msg := "fwd: could not compute forward pass of layer %v: %v"
			return nil, fmt.Errorf(msg, i, err)
		}
	}

	e.prediction = pred
	G.Read(e.prediction, &e.predVal)

	return pred, nil
}

// Output returns the output of the convQNet after the last forward
// pass
func (e *convQNet) Output() G.Value {
	return e.predVal
}

// Prediction returns the node of the computational graph that stores
// the output of the convQNet
func (e *convQNet) Prediction() *G.Node {
	return e.prediction
}

// GobEncode implements the gob.GobEncoder interface
func (e *convQNet) GobEncode() ([]byte, error) {
	var buf bytes.Buffer
	enc := gob.NewEncoder(&buf)

	if err := enc.Encode(e.channels); err != nil {
		return nil, fmt.Errorf("gobencode: could not encode channels")
	}

	if err := enc.Encode(e.height); err != nil {
		return nil, fmt.Errorf("gobencode: could not encode height")
	}

	if err := enc.Encode(e.width); err != nil {
		return nil, fmt.Errorf("gobencode: could not encode width")
	}

	if err := enc.Encode(e.batchSize); err != nil {
		return nil, fmt.Errorf("gobencode: could not encode batch size")
	}

	if err := enc.Encode(e.numOutputs); err != nil {
		return nil, fmt.Errorf("gobencode: could not encode number " +
			"of outputs")
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
func (e *convQNet) GobDecode(in []byte) error {
	buf := bytes.NewReader(in)
	dec := gob.NewDecoder(buf)

	var channels int
	if err := dec.Decode(&channels); err != nil {
		return fmt.Errorf("gobdecode: could not decode channels")
	}

	var height int
	if err := dec.Decode(&height); err != nil {
		return fmt.Errorf("gobdecode: could not decode height")
	}

	var width int
	if err := dec.Decode(&width); err != nil {
		return fmt.Errorf("gobdecode: could not decode width")
	}

	var batchSize int
	if err := dec.Decode(&batchSize); err != nil {
		return fmt.Errorf("gobdecode: could not decode batch size")
	}

	var numOutputs int
	if err := dec.Decode(&numOutputs); err != nil {
		return fmt.Errorf("gobdecode: could not decode number of outputs")
	}

	// Create a new network to decode the weights into
	g := G.NewGraph()
	newNet, err := NewConv(channels, height, width, batchSize,
		numOutputs, g, G.Zeroes(), G.Zeroes())
	if err != nil {
		return fmt.Errorf("gobdecode: could not construct decoded "+
			"network: %v", err)
	}
	newConv := newNet.(*convQNet)

	// Fill the new network's layers with the decoded weights
	for i := range newConv.layers {
		if err := dec.Decode(newConv.layers[i]); err != nil {
			return fmt.Errorf("gobdecode: could not decode layer %v: %v",
				i, err)
		}
	}

	*e = *newConv
	return nil
}
