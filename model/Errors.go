package model

import (
	"errors"
)

// Sentinel errors for the error types in this package
var (
	errUninitialized error = errors.New("model has not been initialized")
	errInitialized   error = errors.New("model has already been " +
		"initialized")
)

// ModelError implements errors for DQN value models
type ModelError struct {
	Op  string
	Err error
}

// Error implements the error interface
func (e *ModelError) Error() string {
	return e.Op + ": " + e.Err.Error()
}

// IsUninitialized returns whether the error err resulted from using a
// model before its networks were initialized
func IsUninitialized(err error) bool {
	e, ok := err.(*ModelError)
	if !ok {
		return false
	}
	return e.Err == errUninitialized
}

// IsInitialized returns whether the error err resulted from
// initializing a model a second time
func IsInitialized(err error) bool {
	e, ok := err.(*ModelError)
	if !ok {
		return false
	}
	return e.Err == errInitialized
}
