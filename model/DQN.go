// Package model implements the DQN value model: an action-value
// neural network trained on replayed transitions against a target
// network.
package model

import (
	"fmt"
	"math/rand"

	"gonum.org/v1/gonum/mat"
	G "gorgonia.org/gorgonia"
	"gorgonia.org/tensor"

	"github.com/samuelfneumann/godqn/checkpoint"
	"github.com/samuelfneumann/godqn/expreplay"
	"github.com/samuelfneumann/godqn/initwfn"
	"github.com/samuelfneumann/godqn/network"
	"github.com/samuelfneumann/godqn/solver"
	"github.com/samuelfneumann/godqn/timestep"
	"github.com/samuelfneumann/godqn/utils/floatutils"
	"github.com/samuelfneumann/godqn/utils/intutils"
)

// DQN implements the deep Q-learning value model. The model holds two
// networks of identical architecture: an evaluation network whose
// weights are adapted on every learning step, and a target network
// whose weights are a past snapshot of the evaluation network's,
// updated only by SyncTarget or Load. Update targets are computed
// from the target network so that the regression target does not
// move with every gradient step.
//
// The evaluation network concretely consists of two Gorgonia graphs
// kept weight-identical: a batch-1 graph for action selection and a
// batched graph for learning. Gorgonia graphs have static shapes, so
// one logical network at two batch sizes requires two graphs.
//
// A DQN is created in two phases. New validates the configuration and
// creates the replay buffer, so transitions can be stored right away.
// Initialize builds the computational graphs, the tape machines, and
// the solver. SelectAction, Learn, SyncTarget, Save, and Load all
// fail with an error satisfying IsUninitialized until Initialize is
// called.
type DQN struct {
	// Batch-1 network for action selection
	evalNet network.NeuralNet
	evalVM  G.VM

	// Batched network whose weights are learned
	trainNet network.NeuralNet
	trainVM  G.VM
	solver   G.Solver // Adapts the weights of trainNet

	// Batched network providing the update target
	targetNet network.NeuralNet
	targetVM  G.VM

	// Input nodes of the learning graph. nextStateActionValues is
	// given the target network's action values of the next states,
	// selectedActions the one-hot encodings of the actions taken at
	// the previous states.
	nextStateActionValues *G.Node
	rewards               *G.Node
	discounts             *G.Node
	selectedActions       *G.Node

	replay expreplay.ExperienceReplayer
	rng    *rand.Rand // Breaks ties between equally valued actions

	config      Config
	gamma       float64
	numActions  int
	numFeatures int
	batchSize   int

	initialized bool
}

// New returns a new DQN value model with its experience replay buffer
// created, but no networks yet. Transitions can be stored in the
// returned model immediately; all other operations require a call to
// Initialize first.
func New(config Config) (*DQN, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	numFeatures := intutils.Prod(config.ObservationShape...)
	replay, err := expreplay.Config{
		Capacity: config.ReplayCapacity,
	}.Create(numFeatures, config.Seed)
	if err != nil {
		return nil, fmt.Errorf("new: could not create experience "+
			"replay buffer: %v", err)
	}

	return &DQN{
		replay:      replay,
		rng:         rand.New(rand.NewSource(config.Seed)),
		config:      config,
		gamma:       config.Gamma,
		numActions:  config.NumActions,
		numFeatures: numFeatures,
		batchSize:   config.BatchSize,
		initialized: false,
	}, nil
}

// Initialize builds the evaluation and target networks, the learning
// graph, the tape machines, and the solver, then synchronizes the
// target network to the evaluation network. Initialize may be called
// exactly once.
func (m *DQN) Initialize() error {
	if m.initialized {
		return &ModelError{Op: "initialize", Err: errInitialized}
	}

	init := m.config.InitWFn
	if init == nil {
		var err error
		init, err = initwfn.NewGlorotU(1.0)
		if err != nil {
			return fmt.Errorf("initialize: could not create weight "+
				"init function: %v", err)
		}
	}
	biasInit := m.config.BiasInitWFn
	if biasInit == nil {
		var err error
		biasInit, err = initwfn.NewConstant(0.01)
		if err != nil {
			return fmt.Errorf("initialize: could not create bias init "+
				"function: %v", err)
		}
	}

	// Network whose weights are learned
	gTrain := G.NewGraph()
	trainNet, err := network.New(m.config.Architecture,
		m.config.ObservationShape, m.batchSize, m.numActions, gTrain,
		m.config.HiddenSizes, init.InitWFn(), biasInit.InitWFn())
	if err != nil {
		return fmt.Errorf("initialize: could not create learning "+
			"network: %v", err)
	}

	// Batch-1 network for action selection
	evalNet, err := trainNet.CloneWithBatch(1)
	if err != nil {
		return fmt.Errorf("initialize: could not create selection "+
			"network: %v", err)
	}
	evalVM := G.NewTapeMachine(evalNet.Graph())

	// Network providing the update target
	targetNet, err := trainNet.CloneWithBatch(m.batchSize)
	if err != nil {
		return fmt.Errorf("initialize: could not create target "+
			"network: %v", err)
	}
	targetVM := G.NewTapeMachine(targetNet.Graph())

	// Create nodes to compute the update target: r + γ * max[Q(s', a')]
	nextStateActionValues := G.NewMatrix(gTrain, tensor.Float64,
		G.WithShape(m.batchSize, m.numActions),
		G.WithName("targetActionVals"))
	rewards := G.NewVector(gTrain, tensor.Float64,
		G.WithShape(m.batchSize), G.WithName("reward"))
	discounts := G.NewVector(gTrain, tensor.Float64,
		G.WithShape(m.batchSize), G.WithName("discount"))

	// Compute the update target
	updateTarget := G.Must(G.Max(nextStateActionValues, 1))
	updateTarget = G.Must(G.HadamardProd(updateTarget, discounts))
	updateTarget = G.Must(G.Add(updateTarget, rewards))

	// Action selected in the previous state. This is needed to compute
	// the loss using the correct action value since the network
	// outputs N action values, one for each environmental action
	selectedActions := G.NewMatrix(
		gTrain,
		tensor.Float64,
		G.WithName("actionSelected"),
		G.WithShape(m.batchSize, m.numActions),
	)
	selectedActionsValue := G.Must(G.HadamardProd(trainNet.Prediction(),
		selectedActions))
	selectedActionsValue = G.Must(G.Sum(selectedActionsValue, 1))

	// Compute the Mean Squared TD error
	losses := G.Must(G.Sub(updateTarget, selectedActionsValue))
	losses = G.Must(G.Square(losses))
	cost := G.Must(G.Mean(losses))

	// Compute the gradient with respect to the Mean Squared TD error
	if _, err := G.Grad(cost, trainNet.Learnables()...); err != nil {
		return fmt.Errorf("initialize: could not compute gradient: %v",
			err)
	}

	// Compile the learning graph into a VM
	trainVM := G.NewTapeMachine(
		gTrain,
		G.BindDualValues(trainNet.Learnables()...),
	)

	slv := m.config.Solver
	if slv == nil {
		slv, err = solver.NewDefaultRMSProp(m.config.LearningRate,
			m.batchSize)
		if err != nil {
			return fmt.Errorf("initialize: could not create solver: %v",
				err)
		}
	}

	m.evalNet = evalNet
	m.evalVM = evalVM
	m.trainNet = trainNet
	m.trainVM = trainVM
	m.solver = slv
	m.targetNet = targetNet
	m.targetVM = targetVM
	m.nextStateActionValues = nextStateActionValues
	m.rewards = rewards
	m.discounts = discounts
	m.selectedActions = selectedActions
	m.initialized = true

	return m.SyncTarget()
}

// SelectAction returns the action with the highest predicted value in
// the state described by obs, breaking ties between equally valued
// actions uniformly at random. No learning occurs.
func (m *DQN) SelectAction(obs *mat.VecDense) (int, error) {
	if !m.initialized {
		return 0, &ModelError{Op: "selectaction", Err: errUninitialized}
	}

	if err := m.evalNet.SetInput(obs.RawVector().Data); err != nil {
		return 0, fmt.Errorf("selectaction: could not set selection "+
			"network input: %v", err)
	}
	if err := m.evalVM.RunAll(); err != nil {
		return 0, fmt.Errorf("selectaction: could not run selection "+
			"network: %v", err)
	}

	actionValues := m.evalNet.Output().Data().([]float64)
	m.evalVM.Reset()

	// If multiple actions have max value, return a random max-valued
	// action
	_, maxIndices := floatutils.MaxSlice(actionValues)
	return maxIndices[m.rng.Int()%len(maxIndices)], nil
}

// StoreTransition adds a transition to the model's experience replay
// buffer, overwriting the oldest stored transition when the buffer is
// full. Storing transitions does not require the model to be
// initialized.
func (m *DQN) StoreTransition(t timestep.Transition) error {
	return m.replay.Add(t)
}

// Learn samples a batch of transitions from the replay buffer and
// performs a single gradient step on the evaluation network's
// weights, minimizing the mean squared TD error against update
// targets computed from the target network. The target network's
// weights are never adjusted by Learn. Errors from sampling the
// replay buffer are returned unmodified, so an empty buffer can be
// detected with expreplay.IsEmptyBuffer.
func (m *DQN) Learn() error {
	if !m.initialized {
		return &ModelError{Op: "learn", Err: errUninitialized}
	}

	states, actions, rewards, nextStates, terminals, err :=
		m.replay.Sample(m.batchSize)
	if err != nil {
		return err
	}

	// Previous action one-hot vectors
	prevActions := make([]float64, m.batchSize*m.numActions)
	for i, action := range actions {
		prevActions[i*m.numActions+action] = 1.0
	}
	err = G.Let(m.selectedActions, tensor.New(
		tensor.WithShape(m.batchSize, m.numActions),
		tensor.WithBacking(prevActions),
	))
	if err != nil {
		return fmt.Errorf("learn: could not set selected actions: %v",
			err)
	}

	// Predict the action values in the sampled states
	if err := m.trainNet.SetInput(states); err != nil {
		return fmt.Errorf("learn: could not set learning network "+
			"input: %v", err)
	}

	// Predict the action values in the next states
	if err := m.targetNet.SetInput(nextStates); err != nil {
		return fmt.Errorf("learn: could not set target network "+
			"input: %v", err)
	}
	if err := m.targetVM.RunAll(); err != nil {
		return fmt.Errorf("learn: could not run target network: %v", err)
	}

	// Copy the target network's predictions out of its graph, zeroing
	// the action values of terminal next states so that the update
	// target of a terminal transition is the reward alone
	qNext := m.targetNet.Output().Data().([]float64)
	nextValues := make([]float64, len(qNext))
	copy(nextValues, qNext)
	for i, terminal := range terminals {
		if terminal {
			for a := 0; a < m.numActions; a++ {
				nextValues[i*m.numActions+a] = 0.0
			}
		}
	}
	err = G.Let(m.nextStateActionValues, tensor.New(
		tensor.WithShape(m.batchSize, m.numActions),
		tensor.WithBacking(nextValues),
	))
	if err != nil {
		return fmt.Errorf("learn: could not set next state-action "+
			"values: %v", err)
	}

	// Set the rewards for the sampled transitions
	err = G.Let(m.rewards, tensor.New(tensor.WithBacking(rewards),
		tensor.WithShape(m.batchSize)))
	if err != nil {
		return fmt.Errorf("learn: could not set rewards: %v", err)
	}

	// Set the discount of future rewards
	discounts := make([]float64, m.batchSize)
	for i := range discounts {
		discounts[i] = m.gamma
	}
	err = G.Let(m.discounts, tensor.New(tensor.WithBacking(discounts),
		tensor.WithShape(m.batchSize)))
	if err != nil {
		return fmt.Errorf("learn: could not set discounts: %v", err)
	}

	m.targetVM.Reset()

	// Run the learning step
	if err := m.trainVM.RunAll(); err != nil {
		return fmt.Errorf("learn: could not run learning network: %v",
			err)
	}
	if err := m.solver.Step(m.trainNet.Model()); err != nil {
		return fmt.Errorf("learn: could not step solver: %v", err)
	}
	m.trainVM.Reset()

	// Mirror the learned weights into the batch-1 selection graph
	if err := m.evalNet.Set(m.trainNet); err != nil {
		return fmt.Errorf("learn: could not update selection "+
			"network: %v", err)
	}

	return nil
}

// SyncTarget sets the weights of the target network to a copy of the
// evaluation network's weights
func (m *DQN) SyncTarget() error {
	if !m.initialized {
		return &ModelError{Op: "synctarget", Err: errUninitialized}
	}

	if err := m.targetNet.Set(m.trainNet); err != nil {
		return fmt.Errorf("synctarget: could not copy weights: %v", err)
	}
	return nil
}

// Save serializes the evaluation network's weights to the file at
// filename
func (m *DQN) Save(filename string) error {
	if !m.initialized {
		return &ModelError{Op: "save", Err: errUninitialized}
	}

	net, ok := m.evalNet.(checkpoint.Serializable)
	if !ok {
		return fmt.Errorf("save: network cannot be serialized")
	}
	return checkpoint.Save(filename, net)
}

// Load restores the evaluation network's weights from the file at
// filename and mirrors them into the target network, so that the two
// networks are synchronized afterwards. The file must have been saved
// from a model with the same architecture.
func (m *DQN) Load(filename string) error {
	if !m.initialized {
		return &ModelError{Op: "load", Err: errUninitialized}
	}

	// Decode into a clone so that a failed load leaves the model's
	// weights untouched
	clone, err := m.evalNet.Clone()
	if err != nil {
		return fmt.Errorf("load: could not clone selection network: %v",
			err)
	}
	loaded, ok := clone.(checkpoint.Serializable)
	if !ok {
		return fmt.Errorf("load: network cannot be deserialized")
	}
	if err := checkpoint.Load(filename, loaded); err != nil {
		return err
	}

	if err := m.evalNet.Set(clone); err != nil {
		return fmt.Errorf("load: could not set selection network "+
			"weights: %v", err)
	}
	if err := m.trainNet.Set(clone); err != nil {
		return fmt.Errorf("load: could not set learning network "+
			"weights: %v", err)
	}
	if err := m.targetNet.Set(clone); err != nil {
		return fmt.Errorf("load: could not set target network "+
			"weights: %v", err)
	}
	return nil
}

// ReplaySize returns the number of transitions currently stored in
// the replay buffer and available for sampling
func (m *DQN) ReplaySize() int {
	return m.replay.Size()
}

// ReplayCounter returns the total number of transitions ever stored
// in the replay buffer
func (m *DQN) ReplayCounter() int {
	return m.replay.Counter()
}

// NumActions returns the number of actions whose values the model
// predicts
func (m *DQN) NumActions() int {
	return m.numActions
}

// BatchSize returns the number of transitions sampled on each
// learning step
func (m *DQN) BatchSize() int {
	return m.batchSize
}

// Gamma returns the discount rate of future rewards
func (m *DQN) Gamma() float64 {
	return m.gamma
}
