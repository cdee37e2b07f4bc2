// Package gym provides access to OpenAI's Gym environments.
//
// All environments only work with their default tasks and episode
// cutoffs. Environments with discrete action sets can be used for
// learning; environments with continuous action sets can be
// constructed but fail validation when handed to an agent.
//
// This is made possible through the Go bindings for OpenAI Gym,
// found at https://github.com/samuelfneumann/GoGym.
package gym

import (
	"fmt"

	"github.com/samuelfneumann/gogym"
	"gonum.org/v1/gonum/mat"

	env "github.com/samuelfneumann/godqn/environment"
	ts "github.com/samuelfneumann/godqn/timestep"
)

// GymEnv implements access to an OpenAI Gym environment using GoGym.
//
// A failure of the underlying Gym process partway through an episode
// leaves no sensible timestep to return, so Step and Reset panic if
// GoGym returns an error. Episodes that Gym cuts off at its time
// limit are indistinguishable from episodes that end on their own,
// and both are treated as episode ends.
//
// GymEnv implements the environment.Environment interface
type GymEnv struct {
	gogym.Environment

	name        string
	currentStep ts.TimeStep
	discount    float64
}

// New returns a new GymEnv with the given name, which must be a legal
// environment name from the OpenAI Gym suite.
func New(name string, discount float64, seed uint64) (*GymEnv, ts.TimeStep,
	error) {
	goGymEnv, err := gogym.Make(name)
	if err != nil {
		return nil, ts.TimeStep{}, fmt.Errorf("new: could not create "+
			"environment: %v", err)
	}

	goGymEnv.Seed(int(seed))
	obs, err := goGymEnv.Reset()
	if err != nil {
		return nil, ts.TimeStep{}, fmt.Errorf("new: could not reset "+
			"environment: %v", err)
	}

	gymEnv := &GymEnv{
		Environment: goGymEnv,
		name:        name,
		discount:    discount,
	}

	t := ts.New(ts.First, 0, discount, obs, 0)
	gymEnv.currentStep = t

	return gymEnv, t, nil
}

// Step takes a single environmental step given a discrete action
func (g *GymEnv) Step(action int) (ts.TimeStep, bool) {
	a := mat.NewVecDense(1, []float64{float64(action)})

	obs, reward, done, err := g.Environment.Step(a)
	if err != nil {
		panic(fmt.Sprintf("step: could not step GoGym environment: %v", err))
	}

	t := ts.New(ts.Mid, reward, g.discount, obs, g.currentStep.Number+1)
	if done {
		t.StepType = ts.Last
	}
	g.currentStep = t

	return t, done
}

// Reset resets the environment to some starting state
func (g *GymEnv) Reset() ts.TimeStep {
	obs, err := g.Environment.Reset()
	if err != nil {
		panic(fmt.Sprintf("reset: could not reset GoGym environment: %v",
			err))
	}

	t := ts.New(ts.First, 0, g.discount, obs, 0)
	g.currentStep = t

	return t
}

// CurrentTimeStep returns the current timestep in the environment
func (g *GymEnv) CurrentTimeStep() ts.TimeStep {
	return g.currentStep
}

// ObservationSpec returns the observation specification of the
// environment
func (g *GymEnv) ObservationSpec() env.Spec {
	space := g.ObservationSpace()

	var cardinality env.Cardinality
	switch space.(type) {
	case *gogym.BoxSpace:
		cardinality = env.Continuous
	case *gogym.DiscreteSpace:
		cardinality = env.Discrete
	default:
		panic("observationSpec: invalid space type, package gym supports " +
			"only GoGym's BoxSpace or DiscreteSpace")
	}

	low := space.Low()[0]
	high := space.High()[0]
	shape := mat.NewVecDense(low.Len(), nil)

	return env.NewSpec(shape, env.Observation, low, high, cardinality)
}

// ActionSpec returns the action specification of the environment
func (g *GymEnv) ActionSpec() env.Spec {
	space := g.ActionSpace()

	var cardinality env.Cardinality
	switch space.(type) {
	case *gogym.BoxSpace:
		cardinality = env.Continuous
	case *gogym.DiscreteSpace:
		cardinality = env.Discrete
	default:
		panic("actionSpec: invalid space type, package gym supports " +
			"only GoGym's BoxSpace or DiscreteSpace")
	}

	low := space.Low()[0]
	high := space.High()[0]
	shape := mat.NewVecDense(low.Len(), nil)

	return env.NewSpec(shape, env.Action, low, high, cardinality)
}

// String returns the name of the environment
func (g *GymEnv) String() string {
	return g.name
}

// Close performs resource cleanup after the environment is no longer
// needed
func (g *GymEnv) Close() error {
	g.Environment.Close()
	return nil
}
