// Package riverswim implements the discrete action RiverSwim
// environment
package riverswim

import (
	"fmt"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/mat"

	env "github.com/samuelfneumann/godqn/environment"
	ts "github.com/samuelfneumann/godqn/timestep"
)

const (
	// NumStates is the number of states in the chain
	NumStates int = 6

	// StartState is the state the swimmer begins each episode in
	StartState int = 1

	// Transition probabilities for swimming against the current. From
	// an interior state the swim succeeds with probability SwimProb,
	// and the current pushes the swimmer back one state with
	// probability DriftProb. At the leftmost state the swimmer cannot
	// be pushed back, and at the rightmost state the current pushes
	// back with probability FinalDriftProb.
	SwimProb       float64 = 0.3
	DriftProb      float64 = 0.1
	FinalDriftProb float64 = 0.4

	// DownstreamReward is given for swimming downstream at the
	// leftmost state. UpstreamReward is given for swimming upstream at
	// the rightmost state. All other rewards are 0.
	DownstreamReward float64 = 5.0 / 1000.0
	UpstreamReward   float64 = 1.0

	// Discrete Actions Env
	ActionDims        int = 1
	MinDiscreteAction int = 0
	MaxDiscreteAction int = 1
)

// RiverSwim implements the RiverSwim environment. In this environment,
// the agent controls a swimmer in a river consisting of a chain of
// NumStates states. The current flows from right to left, so swimming
// downstream (left) always succeeds while swimming upstream (right)
// only sometimes moves the swimmer up the chain. A small reward is
// given for swimming downstream at the leftmost state, and a large
// reward is given for swimming upstream at the rightmost state, so
// the agent must learn to swim against the current to perform well.
//
// State observations are one-hot encodings of the swimmer's position
// in the chain. Actions are 1-dimensional and discrete in (0, 1):
//
//	Action	Meaning
//	  0		Swim downstream (left)
//	  1		Swim upstream (right)
//
// Actions other than 0 or 1 result in a panic
//
// Episodes never end on their own. Instead, a timestep limit cuts
// episodes off after a fixed number of steps.
//
// RiverSwim implements the environment.Environment interface
type RiverSwim struct {
	ender    env.Ender
	rng      *rand.Rand
	lastStep ts.TimeStep
	discount float64
	state    int
}

// New creates a new RiverSwim environment, ending episodes after
// cutoff timesteps
func New(cutoff int, discount float64, seed uint64) (*RiverSwim, ts.TimeStep) {
	rng := rand.New(rand.NewSource(seed))

	firstStep := ts.New(ts.First, 0.0, discount, oneHot(StartState), 0)

	riverSwim := &RiverSwim{env.NewStepLimit(cutoff), rng, firstStep,
		discount, StartState}

	return riverSwim, firstStep
}

// Reset resets the environment, placing the swimmer back at the
// starting state
func (r *RiverSwim) Reset() ts.TimeStep {
	r.state = StartState
	startStep := ts.New(ts.First, 0, r.discount, oneHot(StartState), 0)
	r.lastStep = startStep

	return startStep
}

// Step takes one environmental step given action a and returns the
// next timestep as a timestep.TimeStep and a bool indicating whether
// or not the episode has ended. Legal actions are in the set {0, 1}.
// Actions outside this range will cause the environment to panic.
func (r *RiverSwim) Step(a int) (ts.TimeStep, bool) {
	// Ensure a legal action was selected
	if a > MaxDiscreteAction || a < MinDiscreteAction {
		panic(fmt.Sprintf("illegal action %v ∉ (0, 1)", a))
	}

	// Rewards depend on the state the action was taken in, not on
	// where the current takes the swimmer
	reward := r.reward(a)

	r.state = r.nextState(a)

	return r.update(reward)
}

// nextState computes the swimmer's next position in the chain given
// action a
func (r *RiverSwim) nextState(a int) int {
	// Swimming downstream always succeeds
	if a == MinDiscreteAction {
		if r.state > 0 {
			return r.state - 1
		}
		return r.state
	}

	u := r.rng.Float64()
	switch r.state {
	case 0:
		if u < SwimProb {
			return r.state + 1
		}
		return r.state

	case NumStates - 1:
		if u < FinalDriftProb {
			return r.state - 1
		}
		return r.state

	default:
		if u < SwimProb {
			return r.state + 1
		} else if u < SwimProb+DriftProb {
			return r.state - 1
		}
		return r.state
	}
}

// reward returns the reward for taking action a in the current state
func (r *RiverSwim) reward(a int) float64 {
	if a == MinDiscreteAction && r.state == 0 {
		return DownstreamReward
	}
	if a == MaxDiscreteAction && r.state == NumStates-1 {
		return UpstreamReward
	}
	return 0.0
}

// update creates the next timestep, checks whether it is the last in
// the episode, and updates the environment accordingly
func (r *RiverSwim) update(reward float64) (ts.TimeStep, bool) {
	nextStep := ts.New(ts.Mid, reward, r.discount, oneHot(r.state),
		r.lastStep.Number+1)

	// Check if the step is the last in the episode and adjust step
	// type if necessary
	r.ender.End(&nextStep)

	r.lastStep = nextStep
	return nextStep, nextStep.Last()
}

// ObservationSpec returns the observation specification of the
// environment
func (r *RiverSwim) ObservationSpec() env.Spec {
	shape := mat.NewVecDense(NumStates, nil)
	lowerBound := mat.NewVecDense(NumStates, nil)

	ones := make([]float64, NumStates)
	for i := range ones {
		ones[i] = 1.0
	}
	upperBound := mat.NewVecDense(NumStates, ones)

	return env.NewSpec(shape, env.Observation, lowerBound, upperBound,
		env.Discrete)
}

// ActionSpec returns the action specification of the environment
func (r *RiverSwim) ActionSpec() env.Spec {
	shape := mat.NewVecDense(ActionDims, nil)
	lowerBound := mat.NewVecDense(ActionDims,
		[]float64{float64(MinDiscreteAction)})
	upperBound := mat.NewVecDense(ActionDims,
		[]float64{float64(MaxDiscreteAction)})

	return env.NewSpec(shape, env.Action, lowerBound, upperBound,
		env.Discrete)
}

// String returns a string representation of the environment
func (r *RiverSwim) String() string {
	return fmt.Sprintf("River Swim  |  State: %v", r.state)
}

// oneHot returns the one-hot encoding of the argument state
func oneHot(state int) *mat.VecDense {
	obs := mat.NewVecDense(NumStates, nil)
	obs.SetVec(state, 1.0)
	return obs
}
