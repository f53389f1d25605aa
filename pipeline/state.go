package pipeline

import (
	"slices"
	"time"
)

// Status is the lifecycle state of one step.
type Status string

const (
	StatusPending   Status = "pending"
	StatusRunning   Status = "running"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

// Terminal reports whether s is completed or failed.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// Definition identifies a step. IDs are unique within a run.
type Definition struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Step is the live progress of one step.
type Step struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Status    Status    `json:"status"`
	Progress  int       `json:"progress"`
	StartTime time.Time `json:"startTime,omitzero"`
	EndTime   time.Time `json:"endTime,omitzero"`
	// Result is set only on completed steps. It is shared with the step
	// body, which must not modify it after returning.
	Result any    `json:"result,omitempty"`
	Error  string `json:"error,omitempty"`
}

// State is the ordered progress of a run.
type State struct {
	Steps      []Step `json:"steps"`
	IsComplete bool   `json:"isComplete"`
}

func newState(defs []Definition) State {
	steps := make([]Step, len(defs))
	for i, d := range defs {
		steps[i] = Step{ID: d.ID, Name: d.Name, Status: StatusPending}
	}
	return State{Steps: steps}
}

// Clone returns a copy that shares nothing mutable with s.
func (s State) Clone() State {
	return State{Steps: slices.Clone(s.Steps), IsComplete: s.IsComplete}
}

// Step returns the step with the given ID.
func (s State) Step(id string) (Step, bool) {
	for _, st := range s.Steps {
		if st.ID == id {
			return st, true
		}
	}
	return Step{}, false
}

// Completed counts steps that reached StatusCompleted.
func (s State) Completed() int {
	n := 0
	for _, st := range s.Steps {
		if st.Status == StatusCompleted {
			n++
		}
	}
	return n
}

func (s *State) refresh() {
	for _, st := range s.Steps {
		if !st.Status.Terminal() {
			s.IsComplete = false
			return
		}
	}
	s.IsComplete = true
}
