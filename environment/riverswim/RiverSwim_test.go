package riverswim

import (
	"math"
	"testing"

	"github.com/samuelfneumann/godqn/environment"
	"github.com/samuelfneumann/godqn/timestep"
)

const testCutoff int = 1000

// TestNew ensures that a new environment starts in the starting state
// with a first timestep
func TestNew(t *testing.T) {
	r, firstStep := New(testCutoff, 1.0, 14)

	if !firstStep.First() {
		t.Error("first timestep should have step type First")
	}
	if firstStep.Number != 0 {
		t.Errorf("first timestep number should be 0, got %v", firstStep.Number)
	}
	if r.state != StartState {
		t.Errorf("expected starting state %v, got %v", StartState, r.state)
	}

	obs := firstStep.Observation
	if obs.Len() != NumStates {
		t.Errorf("expected observation length %v, got %v", NumStates,
			obs.Len())
	}
	for i := 0; i < obs.Len(); i++ {
		expected := 0.0
		if i == StartState {
			expected = 1.0
		}
		if obs.AtVec(i) != expected {
			t.Errorf("observation index %v: expected %v, got %v", i,
				expected, obs.AtVec(i))
		}
	}
}

// TestStepDownstream ensures that swimming downstream always succeeds
// and that the downstream reward is given only at the leftmost state
func TestStepDownstream(t *testing.T) {
	r, _ := New(testCutoff, 1.0, 14)

	step, done := r.Step(0)
	if done {
		t.Error("episode should not have ended")
	}
	if r.state != 0 {
		t.Errorf("swimming downstream from state %v should reach state 0, "+
			"got %v", StartState, r.state)
	}
	if step.Reward != 0.0 {
		t.Errorf("downstream reward given away from the leftmost state: %v",
			step.Reward)
	}
	if step.Number != 1 {
		t.Errorf("expected timestep number 1, got %v", step.Number)
	}

	// Swimming downstream at the leftmost state stays put and is
	// rewarded
	step, _ = r.Step(0)
	if r.state != 0 {
		t.Errorf("swimming downstream at the leftmost state should stay, "+
			"got state %v", r.state)
	}
	if step.Reward != DownstreamReward {
		t.Errorf("expected downstream reward %v, got %v", DownstreamReward,
			step.Reward)
	}
}

// TestStepUpstreamReward ensures that the upstream reward is given for
// swimming upstream at the rightmost state no matter where the current
// takes the swimmer
func TestStepUpstreamReward(t *testing.T) {
	r, _ := New(testCutoff, 1.0, 14)

	for i := 0; i < 10; i++ {
		r.state = NumStates - 1
		step, _ := r.Step(1)
		if step.Reward != UpstreamReward {
			t.Errorf("expected upstream reward %v, got %v", UpstreamReward,
				step.Reward)
		}
	}

	// No reward for swimming upstream anywhere else
	r.state = StartState
	step, _ := r.Step(1)
	if step.Reward != 0.0 {
		t.Errorf("upstream reward given away from the rightmost state: %v",
			step.Reward)
	}
}

// TestTransitionProbabilities estimates the empirical transition
// frequencies of swimming upstream and compares them to the
// environment's transition probabilities
func TestTransitionProbabilities(t *testing.T) {
	const draws int = 10000
	const tolerance float64 = 0.02
	r, _ := New(testCutoff, 1.0, 14)

	// Interior state: right SwimProb, left DriftProb, stay otherwise
	var right, left, stay int
	for i := 0; i < draws; i++ {
		r.state = 2
		switch r.nextState(1) {
		case 3:
			right++
		case 1:
			left++
		case 2:
			stay++
		default:
			t.Fatal("transition to a non-adjacent state")
		}
	}
	if math.Abs(float64(right)/float64(draws)-SwimProb) > tolerance {
		t.Errorf("interior upstream frequency %v, expected %v",
			float64(right)/float64(draws), SwimProb)
	}
	if math.Abs(float64(left)/float64(draws)-DriftProb) > tolerance {
		t.Errorf("interior drift frequency %v, expected %v",
			float64(left)/float64(draws), DriftProb)
	}
	if math.Abs(float64(stay)/float64(draws)-(1-SwimProb-DriftProb)) >
		tolerance {
		t.Errorf("interior stay frequency %v, expected %v",
			float64(stay)/float64(draws), 1-SwimProb-DriftProb)
	}

	// Leftmost state: the current cannot push the swimmer further back
	right = 0
	for i := 0; i < draws; i++ {
		r.state = 0
		next := r.nextState(1)
		if next == 1 {
			right++
		} else if next != 0 {
			t.Fatal("transition to a non-adjacent state")
		}
	}
	if math.Abs(float64(right)/float64(draws)-SwimProb) > tolerance {
		t.Errorf("leftmost upstream frequency %v, expected %v",
			float64(right)/float64(draws), SwimProb)
	}

	// Rightmost state: pushed back with probability FinalDriftProb
	left = 0
	for i := 0; i < draws; i++ {
		r.state = NumStates - 1
		next := r.nextState(1)
		if next == NumStates-2 {
			left++
		} else if next != NumStates-1 {
			t.Fatal("transition to a non-adjacent state")
		}
	}
	if math.Abs(float64(left)/float64(draws)-FinalDriftProb) > tolerance {
		t.Errorf("rightmost drift frequency %v, expected %v",
			float64(left)/float64(draws), FinalDriftProb)
	}
}

// TestCutoff ensures that episodes are cut off at the timestep limit
// and that the environment can be reset afterwards
func TestCutoff(t *testing.T) {
	const cutoff int = 10
	r, _ := New(cutoff, 1.0, 14)

	var step timestep.TimeStep
	var done bool
	for i := 0; i < cutoff; i++ {
		if done {
			t.Fatalf("episode ended early at timestep %v", i)
		}
		step, done = r.Step(1)
	}
	if !done {
		t.Error("episode should have ended at the timestep limit")
	}
	if !step.Last() {
		t.Error("final timestep should have step type Last")
	}

	startStep := r.Reset()
	if !startStep.First() {
		t.Error("reset timestep should have step type First")
	}
	if startStep.Number != 0 {
		t.Errorf("reset timestep number should be 0, got %v",
			startStep.Number)
	}
	if startStep.Observation.AtVec(StartState) != 1.0 {
		t.Error("reset should place the swimmer back at the starting state")
	}
}

// TestIllegalActionPanics ensures that illegal actions cause a panic
func TestIllegalActionPanics(t *testing.T) {
	r, _ := New(testCutoff, 1.0, 14)

	defer func() {
		if recover() == nil {
			t.Error("illegal action should panic")
		}
	}()
	r.Step(2)
}

// TestSpecs checks the action and observation specifications
func TestSpecs(t *testing.T) {
	r, _ := New(testCutoff, 1.0, 14)

	actionSpec := r.ActionSpec()
	if actionSpec.Cardinality != environment.Discrete {
		t.Error("actions should be discrete")
	}
	if actionSpec.Shape.Len() != ActionDims {
		t.Errorf("actions should be %v-dimensional", ActionDims)
	}
	if actionSpec.LowerBound.AtVec(0) != float64(MinDiscreteAction) {
		t.Errorf("expected action lower bound %v, got %v",
			MinDiscreteAction, actionSpec.LowerBound.AtVec(0))
	}
	if actionSpec.UpperBound.AtVec(0) != float64(MaxDiscreteAction) {
		t.Errorf("expected action upper bound %v, got %v",
			MaxDiscreteAction, actionSpec.UpperBound.AtVec(0))
	}

	obsSpec := r.ObservationSpec()
	if obsSpec.Shape.Len() != NumStates {
		t.Errorf("observations should have length %v, got %v", NumStates,
			obsSpec.Shape.Len())
	}
	if obsSpec.UpperBound.AtVec(0) != 1.0 || obsSpec.LowerBound.AtVec(0) != 0.0 {
		t.Error("one-hot observations should be bounded in [0, 1]")
	}
}
