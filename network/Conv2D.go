package network

import (
	"bytes"
	"encoding/gob"
	"fmt"

	G "gorgonia.org/gorgonia"
	"gorgonia.org/tensor"
)

// convLayer implements a 2-dimensional convolutional layer of a
// neural network. Inputs are image batches of shape (batch,
// channels, height, width).
type convLayer struct {
	filters *G.Node
	bias    *G.Node
	act     *Activation

	kernel []int
	pad    []int
	stride []int
}

// newConvLayer creates a convolutional layer on the graph g with
// square kernels and no padding. The bias is a single unit per
// output channel, broadcast over the spatial dimensions.
func newConvLayer(g *G.ExprGraph, inChannels, outChannels, kernel,
	stride int, act *Activation, init, biasInit G.InitWFn,
	name string) Layer {
	filters := G.NewTensor(
		g,
		tensor.Float64,
		4,
		G.WithShape(outChannels, inChannels, kernel, kernel),
		G.WithName(name+"W"),
		G.WithInit(init),
	)
	bias := G.NewTensor(
		g,
		tensor.Float64,
		4,
		G.WithShape(1, outChannels, 1, 1),
		G.WithName(name+"B"),
		G.WithInit(biasInit),
	)

	return &convLayer{
		filters: filters,
		bias:    bias,
		act:     act,
		kernel:  []int{kernel, kernel},
		pad:     []int{0, 0},
		stride:  []int{stride, stride},
	}
}

// fwd adds the forward pass of the convLayer to the computational
// graph
func (c *convLayer) fwd(x *G.Node) (*G.Node, error) {
	x, err := G.Conv2d(x, c.filters, tensor.Shape(c.kernel), c.pad,
		c.stride, []int{1, 1})
	if err != nil {
		return nil, fmt.Errorf("fwd: could not convolve: %v", err)
	}
	if c.Bias() != nil {
		// Broadcast the channel biases over the batch and spatial
		// dimensions
		x = G.Must(G.BroadcastAdd(x, c.Bias(), nil, []byte{0, 2, 3}))
	}
	if act := c.Activation(); act == nil || act.IsNil() {
		return x, nil
	}
	return c.Activation().fwd(x)
}

// CloneTo clones a convLayer to a new computational graph
func (c *convLayer) CloneTo(g *G.ExprGraph) Layer {
	var newFilters, newBias *G.Node

	if c.Weights() != nil {
		newFilters = c.Weights().CloneTo(g)
	}
	if c.Bias() != nil {
		newBias = c.Bias().CloneTo(g)
	}

	return &convLayer{
		filters: newFilters,
		bias:    newBias,
		act:     c.act,
		kernel:  c.kernel,
		pad:     c.pad,
		stride:  c.stride,
	}
}

// Activation returns the activation function of the convLayer
func (c *convLayer) Activation() *Activation {
	return c.act
}

// Bias returns the bias node of the convLayer
func (c *convLayer) Bias() *G.Node {
	return c.bias
}

// Weights returns the filter node of the convLayer
func (c *convLayer) Weights() *G.Node {
	return c.filters
}

// outSize returns the spatial output size of the layer for a square
// input of size in
func (c *convLayer) outSize(in int) int {
	return (in-c.kernel[0])/c.stride[0] + 1
}

// GobEncode implements the gob.GobEncoder interface by encoding the
// values of the layer's filter and bias nodes
func (c *convLayer) GobEncode() ([]byte, error) {
	var buf bytes.Buffer
	enc := gob.NewEncoder(&buf)

	filters, ok := c.filters.Value().(*tensor.Dense)
	if !ok {
		return nil, fmt.Errorf("gobencode: filters are not a dense tensor")
	}
	if err := enc.Encode(filters); err != nil {
		return nil, fmt.Errorf("gobencode: could not encode filters: %v",
			err)
	}

	hasBias := c.bias != nil
	if err := enc.Encode(hasBias); err != nil {
		return nil, fmt.Errorf("gobencode: could not encode bias flag: %v",
			err)
	}
	if hasBias {
		bias, ok := c.bias.Value().(*tensor.Dense)
		if !ok {
			return nil, fmt.Errorf("gobencode: bias is not a dense tensor")
		}
		if err := enc.Encode(bias); err != nil {
			return nil, fmt.Errorf("gobencode: could not encode bias: %v",
				err)
		}
	}

	return buf.Bytes(), nil
}

// GobDecode implements the gob.GobDecoder interface. The layer must
// already hold filter nodes of the correct shape on some graph; the
// decoded values are copied into those nodes.
func (c *convLayer) GobDecode(in []byte) error {
	buf := bytes.NewReader(in)
	dec := gob.NewDecoder(buf)

	filters := new(tensor.Dense)
	if err := dec.Decode(filters); err != nil {
		return fmt.Errorf("gobdecode: could not decode filters: %v", err)
	}
	if err := G.Let(c.filters, filters); err != nil {
		return fmt.Errorf("gobdecode: could not set filters: %v", err)
	}

	var hasBias bool
	if err := dec.Decode(&hasBias); err != nil {
		return fmt.Errorf("gobdecode: could not decode bias flag: %v", err)
	}
	if hasBias {
		if c.bias == nil {
			return fmt.Errorf("gobdecode: layer has no bias node")
		}
		bias := new(tensor.Dense)
		if err := dec.Decode(bias); err != nil {
			return fmt.Errorf("gobdecode: could not decode bias: %v", err)
		}
		if err := G.Let(c.bias, bias); err != nil {
			return fmt.Errorf("gobdecode: could not set bias: %v", err)
		}
	}

	return nil
}
