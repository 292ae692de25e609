package engine

import (
	"errors"
	"fmt"
)

var (
	// ErrNotImplemented is returned by Base.RunModel; concrete engines must override it.
	ErrNotImplemented = errors.New("run model not implemented")
	// ErrConfiguration marks failures to build an engine from configuration.
	ErrConfiguration = errors.New("engine configuration error")
	// ErrTimeout marks an engine that did not finish within its budget.
	ErrTimeout = errors.New("engine timed out")
)

// UnknownEngineError is returned when creating an engine that was never registered.
type UnknownEngineError struct {
	ID string
}

func (e *UnknownEngineError) Error() string {
	return fmt.Sprintf("unknown engine %q", e.ID)
}

func (e *UnknownEngineError) Is(target error) bool {
	return target == ErrConfiguration
}

// ComputationError wraps a failure inside one of an engine's steps.
type ComputationError struct {
	Engine string
	Stage  string
	Err    error
}

func (e *ComputationError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Engine, e.Stage, e.Err)
}

func (e *ComputationError) Unwrap() error { return e.Err }
