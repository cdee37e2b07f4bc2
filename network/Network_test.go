package network

import (
	"testing"

	G "gorgonia.org/gorgonia"
	"gorgonia.org/tensor"
)

// learnablesEqual fails the test if the learnable values of two
// networks differ
func learnablesEqual(t *testing.T, a, b NeuralNet) {
	aNodes, bNodes := a.Learnables(), b.Learnables()
	if len(aNodes) != len(bNodes) {
		t.Fatalf("unequal number of learnables \n\twant(%v) \n\thave(%v)",
			len(aNodes), len(bNodes))
	}

	for i := range aNodes {
		aData := aNodes[i].Value().Data().([]float64)
		bData := bNodes[i].Value().Data().([]float64)
		if len(aData) != len(bData) {
			t.Errorf("learnable %v has unequal sizes \n\twant(%v) "+
				"\n\thave(%v)", i, len(aData), len(bData))
			continue
		}
		for j := range aData {
			if aData[j] != bData[j] {
				t.Errorf("learnable %v differs at element %v: %v != %v",
					i, j, aData[j], bData[j])
				break
			}
		}
	}
}

// TestActivationGob ensures every activation survives a gob round
// trip and unknown activation types are rejected
func TestActivationGob(t *testing.T) {
	for _, act := range []*Activation{ReLU(), Identity(), TanH(), Nil()} {
		encoded, err := act.GobEncode()
		if err != nil {
			t.Fatalf("could not encode %v activation: %v", act, err)
		}

		var decoded Activation
		if err := decoded.GobDecode(encoded); err != nil {
			t.Fatalf("could not decode %v activation: %v", act, err)
		}
		if decoded.String() != act.String() {
			t.Errorf("unexpected activation \n\twant(%v) \n\thave(%v)",
				act, &decoded)
		}
	}

	var decoded Activation
	if err := decoded.GobDecode([]byte("softplus")); err == nil {
		t.Error("expected an error for an unknown activation type")
	}
}

// TestDenseShapes ensures dense networks report their dimensions and
// predict one value per action for each observation in the batch
func TestDenseShapes(t *testing.T) {
	g := G.NewGraph()
	net, err := NewDense(3, 2, 4, g, []int{5}, []bool{true}, G.Zeroes(),
		G.Zeroes(), []*Activation{ReLU()})
	if err != nil {
		t.Fatalf("could not create network: %v", err)
	}

	if net.BatchSize() != 2 {
		t.Errorf("unexpected batch size \n\twant(%v) \n\thave(%v)", 2,
			net.BatchSize())
	}
	if net.Features() != 3 {
		t.Errorf("unexpected features \n\twant(%v) \n\thave(%v)", 3,
			net.Features())
	}
	if net.Outputs() != 4 {
		t.Errorf("unexpected outputs \n\twant(%v) \n\thave(%v)", 4,
			net.Outputs())
	}

	shape := net.Prediction().Shape()
	if len(shape) != 2 || shape[0] != 2 || shape[1] != 4 {
		t.Errorf("unexpected prediction shape \n\twant(%v) \n\thave(%v)",
			[]int{2, 4}, shape)
	}
}

// TestDenseForward runs a forward pass through a network with zeroed
// weights and constant biases, for which every predicted action
// value is known exactly
func TestDenseForward(t *testing.T) {
	g := G.NewGraph()
	net, err := NewDense(3, 2, 4, g, []int{5}, []bool{true}, G.Zeroes(),
		G.ValuesOf(0.5), []*Activation{ReLU()})
	if err != nil {
		t.Fatalf("could not create network: %v", err)
	}

	vm := G.NewTapeMachine(g)
	defer vm.Close()

	err = net.SetInput([]float64{1, 2, 3, 4, 5, 6})
	if err != nil {
		t.Fatalf("could not set input: %v", err)
	}
	if err := vm.RunAll(); err != nil {
		t.Fatalf("could not run forward pass: %v", err)
	}

	out := net.Output().Data().([]float64)
	if len(out) != 2*4 {
		t.Fatalf("unexpected number of outputs \n\twant(%v) \n\thave(%v)",
			8, len(out))
	}
	for i, v := range out {
		if v != 0.5 {
			t.Errorf("unexpected action value at %v \n\twant(%v) "+
				"\n\thave(%v)", i, 0.5, v)
		}
	}
	vm.Reset()

	if err := net.SetInput([]float64{1, 2, 3}); err == nil {
		t.Error("expected an error for a mis-sized input")
	}
}

// TestDenseSet ensures Set copies the source network's weights by
// value, so that later changes to the source do not affect the
// destination
func TestDenseSet(t *testing.T) {
	gSource := G.NewGraph()
	source, err := NewDense(3, 2, 4, gSource, []int{5}, []bool{true},
		G.Ones(), G.Ones(), []*Activation{ReLU()})
	if err != nil {
		t.Fatalf("could not create source network: %v", err)
	}

	gDest := G.NewGraph()
	dest, err := NewDense(3, 2, 4, gDest, []int{5}, []bool{true},
		G.Zeroes(), G.Zeroes(), []*Activation{ReLU()})
	if err != nil {
		t.Fatalf("could not create destination network: %v", err)
	}

	if err := dest.Set(source); err != nil {
		t.Fatalf("could not set weights: %v", err)
	}
	learnablesEqual(t, dest, source)

	// Overwrite the source's first weight matrix and ensure the
	// destination still holds the old values
	weights := source.Learnables()[0]
	backing := make([]float64, 3*5)
	for i := range backing {
		backing[i] = 2.0
	}
	err = G.Let(weights, tensor.New(tensor.WithShape(3, 5),
		tensor.WithBacking(backing)))
	if err != nil {
		t.Fatalf("could not overwrite source weights: %v", err)
	}

	destData := dest.Learnables()[0].Value().Data().([]float64)
	for i, v := range destData {
		if v != 1.0 {
			t.Errorf("destination weights aliased the source at "+
				"element %v: %v", i, v)
		}
	}
}

// TestDenseCloneWithBatch ensures cloning preserves weights while
// changing the input batch size
func TestDenseCloneWithBatch(t *testing.T) {
	g := G.NewGraph()
	net, err := NewDense(3, 1, 4, g, []int{5}, []bool{true},
		G.GlorotU(1.0), G.ValuesOf(0.01), []*Activation{ReLU()})
	if err != nil {
		t.Fatalf("could not create network: %v", err)
	}

	clone, err := net.CloneWithBatch(16)
	if err != nil {
		t.Fatalf("could not clone network: %v", err)
	}

	if clone.BatchSize() != 16 {
		t.Errorf("unexpected clone batch size \n\twant(%v) \n\thave(%v)",
			16, clone.BatchSize())
	}
	if clone.Graph() == net.Graph() {
		t.Error("clone shares the source's computational graph")
	}

	shape := clone.Prediction().Shape()
	if len(shape) != 2 || shape[0] != 16 || shape[1] != 4 {
		t.Errorf("unexpected clone prediction shape \n\twant(%v) "+
			"\n\thave(%v)", []int{16, 4}, shape)
	}

	learnablesEqual(t, clone, net)
}

// TestDenseGob ensures the weights of a dense network survive a gob
// encode-decode round trip
func TestDenseGob(t *testing.T) {
	g := G.NewGraph()
	net, err := NewDense(3, 2, 4, g, []int{5}, []bool{true},
		G.GlorotU(1.0), G.ValuesOf(0.01), []*Activation{ReLU()})
	if err != nil {
		t.Fatalf("could not create network: %v", err)
	}
	orig := net.(*denseQNet)

	encoded, err := orig.GobEncode()
	if err != nil {
		t.Fatalf("could not encode network: %v", err)
	}

	var decoded denseQNet
	if err := decoded.GobDecode(encoded); err != nil {
		t.Fatalf("could not decode network: %v", err)
	}

	if decoded.BatchSize() != orig.BatchSize() ||
		decoded.Features() != orig.Features() ||
		decoded.Outputs() != orig.Outputs() {
		t.Errorf("decoded dimensions differ: (%v %v %v) != (%v %v %v)",
			decoded.BatchSize(), decoded.Features(), decoded.Outputs(),
			orig.BatchSize(), orig.Features(), orig.Outputs())
	}

	learnablesEqual(t, &decoded, orig)
}

// TestConvShapes ensures the convolutional network computes its
// flattened feature size from the observation shape
func TestConvShapes(t *testing.T) {
	g := G.NewGraph()
	net, err := NewConv(4, 84, 84, 2, 6, g, G.Zeroes(), G.Zeroes())
	if err != nil {
		t.Fatalf("could not create network: %v", err)
	}

	if net.Features() != 4*84*84 {
		t.Errorf("unexpected features \n\twant(%v) \n\thave(%v)",
			4*84*84, net.Features())
	}
	if net.Outputs() != 6 {
		t.Errorf("unexpected outputs \n\twant(%v) \n\thave(%v)", 6,
			net.Outputs())
	}

	// Stacked 84x84 frames leave 128 channels of 4x4 features after
	// the convolutional stack
	if flat := net.(*convQNet).flatFeatures; flat != 2048 {
		t.Errorf("unexpected flattened size \n\twant(%v) \n\thave(%v)",
			2048, flat)
	}

	shape := net.Prediction().Shape()
	if len(shape) != 2 || shape[0] != 2 || shape[1] != 6 {
		t.Errorf("unexpected prediction shape \n\twant(%v) \n\thave(%v)",
			[]int{2, 6}, shape)
	}
}

// TestConvTooSmall ensures observations too small for the
// convolutional stack are rejected
func TestConvTooSmall(t *testing.T) {
	g := G.NewGraph()
	if _, err := NewConv(1, 16, 16, 1, 3, g, G.Zeroes(),
		G.Zeroes()); err == nil {
		t.Error("expected an error for an observation smaller than " +
			"the convolutional stack")
	}
}

// TestConvForward runs a forward pass through a convolutional
// network with zeroed filters and constant biases, for which every
// predicted action value is known exactly
func TestConvForward(t *testing.T) {
	g := G.NewGraph()
	net, err := NewConv(1, 44, 44, 1, 3, g, G.Zeroes(), G.ValuesOf(0.5))
	if err != nil {
		t.Fatalf("could not create network: %v", err)
	}

	vm := G.NewTapeMachine(g)
	defer vm.Close()

	input := make([]float64, 44*44)
	for i := range input {
		input[i] = float64(i)
	}
	if err := net.SetInput(input); err != nil {
		t.Fatalf("could not set input: %v", err)
	}
	if err := vm.RunAll(); err != nil {
		t.Fatalf("could not run forward pass: %v", err)
	}

	out := net.Output().Data().([]float64)
	if len(out) != 3 {
		t.Fatalf("unexpected number of outputs \n\twant(%v) \n\thave(%v)",
			3, len(out))
	}
	for i, v := range out {
		if v != 0.5 {
			t.Errorf("unexpected action value at %v \n\twant(%v) "+
				"\n\thave(%v)", i, 0.5, v)
		}
	}
}

// TestConvGob ensures the weights of a convolutional network survive
// a gob encode-decode round trip
func TestConvGob(t *testing.T) {
	g := G.NewGraph()
	net, err := NewConv(1, 44, 44, 1, 2, g, G.GlorotU(1.0),
		G.ValuesOf(0.01))
	if err != nil {
		t.Fatalf("could not create network: %v", err)
	}
	orig := net.(*convQNet)

	encoded, err := orig.GobEncode()
	if err != nil {
		t.Fatalf("could not encode network: %v", err)
	}

	var decoded convQNet
	if err := decoded.GobDecode(encoded); err != nil {
		t.Fatalf("could not decode network: %v", err)
	}

	learnablesEqual(t, &decoded, orig)
}

// TestNewArchitectures ensures the factory dispatches on the
// architecture and rejects unknown architectures with an
// InvalidArchitectureError
func TestNewArchitectures(t *testing.T) {
	g := G.NewGraph()
	net, err := New(Dense, []int{4}, 1, 2, g, nil, G.Zeroes(),
		G.Zeroes())
	if err != nil {
		t.Fatalf("could not create dense network: %v", err)
	}

	// Unspecified hidden sizes default to two layers of 512 units,
	// plus the final output layer
	hidden := net.(*denseQNet).hiddenSizes
	if len(hidden) != 3 || hidden[0] != 512 || hidden[1] != 512 ||
		hidden[2] != 2 {
		t.Errorf("unexpected default hidden sizes: %v", hidden)
	}

	g = G.NewGraph()
	if _, err := New(Conv, []int{4}, 1, 2, g, nil, G.Zeroes(),
		G.Zeroes()); err == nil {
		t.Error("expected an error for a conv network with a vector " +
			"observation shape")
	}

	g = G.NewGraph()
	_, err = New(Architecture(42), []int{4}, 1, 2, g, nil, G.Zeroes(),
		G.Zeroes())
	if err == nil {
		t.Fatal("expected an error for an unknown architecture")
	}
	if !IsInvalidArchitecture(err) {
		t.Errorf("expected an invalid architecture error, got: %v", err)
	}

	g = G.NewGraph()
	if _, err := New(Dense, []int{4}, 1, 2, g, nil, G.Zeroes(),
		G.Zeroes()); IsInvalidArchitecture(err) {
		t.Error("valid architecture misreported as invalid")
	}
}
