// Package workflows models the step sequences shown while a resource is
// being created.
package workflows

import (
	"fmt"

	"github.com/chazuruo/aoss-console/internal/errors"
)

// Status is the progress of a single step.
type Status int

const (
	Pending Status = iota
	InProgress
	Success
	Error
)

func (s Status) String() string {
	switch s {
	case Pending:
		return "pending"
	case InProgress:
		return "in-progress"
	case Success:
		return "success"
	case Error:
		return "error"
	default:
		return fmt.Sprintf("Status(%d)", int(s))
	}
}

// MarshalText implements encoding.TextMarshaler.
func (s Status) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

// Terminal reports whether the step has finished, successfully or not.
func (s Status) Terminal() bool { return s == Success || s == Error }

// State is the lifecycle of a whole workflow.
type State int

const (
	Idle State = iota
	Running
	Completed
	Failed
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Running:
		return "running"
	case Completed:
		return "completed"
	case Failed:
		return "failed"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// MarshalText implements encoding.TextMarshaler.
func (s State) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

// Step is one labelled stage of a workflow.
type Step struct {
	Label  string `json:"label"`
	Status Status `json:"status"`
}

// Initial returns the starting configuration for labels: the first step in
// progress and the rest pending.
func Initial(labels []string) []Step {
	steps := make([]Step, len(labels))
	for i, l := range labels {
		steps[i] = Step{Label: l, Status: Pending}
	}
	if len(steps) > 0 {
		steps[0].Status = InProgress
	}
	return steps
}

// Labels returns the step labels in order.
func Labels(steps []Step) []string {
	out := make([]string, len(steps))
	for i, s := range steps {
		out[i] = s.Label
	}
	return out
}

// CheckInvariant verifies the shape of a step sequence: everything before the
// active step succeeded, everything after it is pending, and at most one step
// is in progress or failed. A sequence with no active step must be entirely
// successful or entirely pending.
func CheckInvariant(steps []Step) error {
	active := -1
	for i, s := range steps {
		if s.Status == InProgress || s.Status == Error {
			if active >= 0 {
				return fmt.Errorf("%w: steps %d and %d are both active", errors.ErrInvalid, active, i)
			}
			active = i
		}
	}

	if active < 0 {
		for i, s := range steps {
			if s.Status != steps[0].Status {
				return fmt.Errorf("%w: step %d is %s but step 0 is %s", errors.ErrInvalid, i, s.Status, steps[0].Status)
			}
		}
		return nil
	}

	for i, s := range steps {
		switch {
		case i < active && s.Status != Success:
			return fmt.Errorf("%w: step %d before active step %d is %s", errors.ErrInvalid, i, active, s.Status)
		case i > active && s.Status != Pending:
			return fmt.Errorf("%w: step %d after active step %d is %s", errors.ErrInvalid, i, active, s.Status)
		}
	}
	return nil
}

// StateOf derives the workflow state from its steps.
func StateOf(steps []Step) State {
	if len(steps) == 0 {
		return Idle
	}
	allSuccess := true
	for _, s := range steps {
		switch s.Status {
		case Error:
			return Failed
		case InProgress:
			return Running
		case Pending:
			allSuccess = false
		}
	}
	if allSuccess {
		return Completed
	}
	return Idle
}
