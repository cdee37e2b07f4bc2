package environment

import "github.com/samuelfneumann/godqn/timestep"

// Ender determines when an episode ends for reasons other than the
// environment's own dynamics, such as a timestep limit
type Ender interface {
	// End takes the most recent timestep, modifying it in place to be
	// the last timestep of the episode where needed, and returns
	// whether the episode has ended
	End(*timestep.TimeStep) bool
}

// StepLimit implements the Ender interface to end episodes at specific
// timestep limits
type StepLimit struct {
	episodeSteps int
}

// NewStepLimit creates and returns a new step limit
func NewStepLimit(episodeSteps int) StepLimit {
	return StepLimit{episodeSteps}
}

// End determines whether or not the current episode should be ended,
// returning a boolean to indicate episode termination. If the episode
// should be ended End() will modify the timestep so that its StepType
// field is timestep.Last
func (s StepLimit) End(t *timestep.TimeStep) bool {
	if t.Number >= s.episodeSteps {
		t.StepType = timestep.Last
		return true
	}
	return false
}
