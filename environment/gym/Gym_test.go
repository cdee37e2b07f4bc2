package gym_test

import (
	"testing"

	"github.com/samuelfneumann/gogym"

	"github.com/samuelfneumann/godqn/environment"
	"github.com/samuelfneumann/godqn/environment/gym"
	ts "github.com/samuelfneumann/godqn/timestep"
)

// TestNew steps through a discrete action Gym environment, checking
// timestep bookkeeping and the action specification. The test is
// skipped when no Gym installation is available.
func TestNew(t *testing.T) {
	env, step, err := gym.New("CartPole-v1", 0.99, 123)
	if err != nil {
		t.Skipf("gym unavailable: %v", err)
	}
	defer env.Close()
	defer gogym.Close()

	if (step == ts.TimeStep{}) {
		t.Error("new: start timestep should be non-zero")
	}
	if !step.First() {
		t.Error("new: start timestep should have step type First")
	}

	actionSpec := env.ActionSpec()
	if actionSpec.Cardinality != environment.Discrete {
		t.Error("CartPole actions should be discrete")
	}
	numActions := int(actionSpec.UpperBound.AtVec(0)) + 1
	if numActions != 2 {
		t.Errorf("CartPole should have 2 actions, got %v", numActions)
	}

	obsSpec := env.ObservationSpec()
	if obsSpec.Shape.Len() != 4 {
		t.Errorf("CartPole observations should have length 4, got %v",
			obsSpec.Shape.Len())
	}

	// Take a bunch of steps in the environment to ensure it works
	number := 0
	for i := 0; i < 15; i++ {
		next, done := env.Step(i % numActions)
		number++

		if next.Observation.Len() != obsSpec.Shape.Len() {
			t.Errorf("step: expected observation length %v, got %v",
				obsSpec.Shape.Len(), next.Observation.Len())
		}
		if next.Number != number {
			t.Errorf("step: expected timestep number %v, got %v", number,
				next.Number)
		}

		if done {
			if !next.Last() {
				t.Error("step: final timestep should have step type Last")
			}
			start := env.Reset()
			if !start.First() {
				t.Error("reset: start timestep should have step type First")
			}
			number = 0
		}
	}
}
