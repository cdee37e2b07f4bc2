// Package schedule implements exploration rate schedules for
// epsilon-greedy action selection
package schedule

import (
	"fmt"

	"github.com/samuelfneumann/godqn/utils/floatutils"
)

// Schedule decays an exploration rate over time. DecayAndGet
// performs a single decay step and returns the new rate, and should
// be called exactly once per training-time action selection. Peek
// returns the current rate without mutating it. Min returns the
// floor that the rate decays toward.
type Schedule interface {
	DecayAndGet() float64
	Peek() float64
	Min() float64
}

// Linear linearly decays an exploration rate by a fixed amount on
// each call to DecayAndGet until the rate reaches a fixed floor,
// after which every later call returns the floor exactly.
type Linear struct {
	start float64
	decay float64
	min   float64
	steps int
}

// NewLinear returns a new Linear schedule which starts at start and
// decays by decay per step until reaching min.
func NewLinear(start, decay, min float64) (*Linear, error) {
	if min < 0 {
		return nil, fmt.Errorf("newLinear: minimum epsilon must be "+
			"non-negative\n\twant(>= 0)\n\thave(%v)", min)
	}
	if decay < 0 {
		return nil, fmt.Errorf("newLinear: decay must be "+
			"non-negative\n\twant(>= 0)\n\thave(%v)", decay)
	}
	if start < min {
		return nil, fmt.Errorf("newLinear: starting epsilon cannot be "+
			"below the minimum\n\twant(>= %v)\n\thave(%v)", min, start)
	}

	return &Linear{start: start, decay: decay, min: min}, nil
}

// DecayAndGet decays the exploration rate by one step and returns
// the new rate, clamped at the minimum.
func (l *Linear) DecayAndGet() float64 {
	l.steps++
	return l.Peek()
}

// Peek returns the current exploration rate without decaying it
func (l *Linear) Peek() float64 {
	return floatutils.Max(l.min, l.start-l.decay*float64(l.steps))
}

// Min returns the minimum exploration rate
func (l *Linear) Min() float64 {
	return l.min
}
