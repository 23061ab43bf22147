package pipeline

import (
	"context"
	"fmt"

	"github.com/orbit-stack/orbit-stack/orbit-deployer/pkg/deployer/state"
)

type StepOutcome int

const (
	StepSkipped StepOutcome = iota
	StepSucceeded
	StepFailed
)

func (o StepOutcome) String() string {
	switch o {
	case StepSkipped:
		return "skipped"
	case StepSucceeded:
		return "succeeded"
	case StepFailed:
		return "failed"
	default:
		return fmt.Sprintf("outcome(%d)", int(o))
	}
}

// StepResult records what happened to one step during a run.
type StepResult struct {
	Name    string
	Outcome StepOutcome
	Err     error
}

// Action performs a step. It must leave no completion record of its own:
// the sequencer marks the step done only after Action returns nil.
type Action func(ctx context.Context) error

// Step is a named unit of deployment work together with the state flag that records
// its completion.
type Step struct {
	Name        string
	Description string
	Done        func(st *state.RunState) bool
	MarkDone    func(st *state.RunState)
	Apply       Action
}

// StepError is returned when a step fails. The state file at StatePath holds every step
// completed before it, so rerunning resumes at Step.
type StepError struct {
	Step      string
	StatePath string
	Err       error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("step %s failed: %v", e.Step, e.Err)
}

func (e *StepError) Unwrap() error {
	return e.Err
}
