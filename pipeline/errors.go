package pipeline

import (
	"errors"
	"fmt"
)

var (
	// ErrAlreadyRun is returned when Run is called on a used orchestrator.
	ErrAlreadyRun = errors.New("pipeline: orchestrator already run")
	// ErrNoSteps is returned by New for an empty stage list.
	ErrNoSteps = errors.New("pipeline: no steps")
)

// StepError wraps the failure of a step body.
type StepError struct {
	StepID string
	Err    error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("step %s failed: %v", e.StepID, e.Err)
}

func (e *StepError) Unwrap() error { return e.Err }
