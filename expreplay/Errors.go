package expreplay

import (
	"errors"
)

// Sentinel errors for the error types in this package
var errEmptyBuffer error = errors.New("no transitions in buffer")

// ExpReplayError implements errors for experience replay buffers
type ExpReplayError struct {
	Op  string
	Err error
}

// Error implements the error interface
func (e *ExpReplayError) Error() string {
	return e.Op + ": " + e.Err.Error()
}

// IsEmptyBuffer returns whether the error err resulted from sampling
// from an experience replay buffer that holds no transitions
func IsEmptyBuffer(err error) bool {
	e, ok := err.(*ExpReplayError)
	if !ok {
		return false
	}
	return e.Err == errEmptyBuffer
}
