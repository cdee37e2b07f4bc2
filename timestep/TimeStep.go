// Package timestep implements timesteps, which are returned by
// environments on each step of agent-environment interaction
package timestep

import "gonum.org/v1/gonum/mat"

// StepType denotes the type of a timestep in an episode
type StepType int

const (
	// First denotes the first timestep in an episode
	First StepType = iota

	// Mid denotes any timestep between the first and last timesteps
	// of an episode
	Mid

	// Last denotes the last timestep in an episode
	Last
)

// String returns the string representation of a StepType
func (s StepType) String() string {
	switch s {
	case First:
		return "First"

	case Mid:
		return "Mid"

	case Last:
		return "Last"

	default:
		return "Invalid step type"
	}
}

// TimeStep packages together all information returned from an
// environment at a single step of agent-environment interaction
type TimeStep struct {
	StepType    StepType
	Reward      float64
	Discount    float64
	Observation *mat.VecDense
	Number      int
}

// New constructs a new TimeStep
func New(t StepType, r, d float64, o *mat.VecDense, n int) TimeStep {
	return TimeStep{t, r, d, o, n}
}

// First returns whether a timestep is the first in an episode
func (t TimeStep) First() bool {
	return t.StepType == First
}

// Mid returns whether a timestep is between the first and last
// timesteps in an episode
func (t TimeStep) Mid() bool {
	return t.StepType == Mid
}

// Last returns whether a timestep is the last in an episode
func (t TimeStep) Last() bool {
	return t.StepType == Last
}

// Transition packages together the information about a single
// environmental transition: the state, the action taken in that
// state, the reward seen for taking the action, the next state, and
// whether the next state ended the episode
type Transition struct {
	State     *mat.VecDense
	Action    int
	Reward    float64
	NextState *mat.VecDense
	Terminal  bool
}

// NewTransition constructs a Transition from two consecutive
// timesteps and the action that joined them
func NewTransition(step TimeStep, action int, nextStep TimeStep) Transition {
	return Transition{
		State:     step.Observation,
		Action:    action,
		Reward:    nextStep.Reward,
		NextState: nextStep.Observation,
		Terminal:  nextStep.Last(),
	}
}
