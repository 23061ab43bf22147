package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/log"
	"github.com/hashicorp/go-multierror"

	"github.com/orbit-stack/orbit-stack/orbit-deployer/pkg/deployer/state"
)

type PhaseKind int

const (
	PhasePending PhaseKind = iota
	PhaseSucceeded
	PhaseFailed
)

// Phase is the position of a run: pending on a step, succeeded, or failed at a step.
type Phase struct {
	Kind PhaseKind
	// Step indexes the pending or failed step.
	Step int
	Err  error
}

// Start returns the phase a run begins in: pending on the first incomplete step,
// or succeeded when every step is already done.
func Start(steps []Step, st *state.RunState) Phase {
	return advance(steps, st, 0)
}

// Transition applies the outcome of running the pending step. On success the step is
// marked done in st and the next incomplete step becomes pending. On failure st is left
// untouched. Phases other than pending are terminal.
func Transition(steps []Step, st *state.RunState, cur Phase, stepErr error) Phase {
	if cur.Kind != PhasePending {
		return cur
	}
	if stepErr != nil {
		return Phase{Kind: PhaseFailed, Step: cur.Step, Err: stepErr}
	}
	steps[cur.Step].MarkDone(st)
	return advance(steps, st, cur.Step+1)
}

func advance(steps []Step, st *state.RunState, from int) Phase {
	for i := from; i < len(steps); i++ {
		if !steps[i].Done(st) {
			return Phase{Kind: PhasePending, Step: i}
		}
	}
	return Phase{Kind: PhaseSucceeded, Step: len(steps)}
}

// NextPending returns the first step not yet done in st.
func NextPending(steps []Step, st *state.RunState) (Step, bool) {
	phase := Start(steps, st)
	if phase.Kind != PhasePending {
		return Step{}, false
	}
	return steps[phase.Step], true
}

type StateSaver interface {
	Save(st *state.RunState) error
	Path() string
}

type Metricer interface {
	RecordStep(name string) (onDone func(err error))
	RecordStepSkipped(name string)
}

type noopMetricer struct{}

func (noopMetricer) RecordStep(string) func(error) { return func(error) {} }
func (noopMetricer) RecordStepSkipped(string)      {}

// Sequencer runs steps in order, persisting the run state after every step it executes.
type Sequencer struct {
	log   log.Logger
	saver StateSaver
	m     Metricer
	steps []Step
}

func NewSequencer(l log.Logger, saver StateSaver, m Metricer, steps []Step) *Sequencer {
	if m == nil {
		m = noopMetricer{}
	}
	return &Sequencer{log: l, saver: saver, m: m, steps: steps}
}

// Run skips completed steps and executes the rest until one fails or all are done.
// A failing step leaves st as it was before the step and is returned as a *StepError.
// Steps are never retried within a run.
func (s *Sequencer) Run(ctx context.Context, st *state.RunState) ([]StepResult, error) {
	var results []StepResult
	phase := Start(s.steps, st)
	results = s.skip(results, 0, phase.Step)

	for phase.Kind == PhasePending {
		step := s.steps[phase.Step]
		lgr := s.log.New("step", step.Name)
		lgr.Info("Running step", "description", step.Description)

		start := time.Now()
		onDone := s.m.RecordStep(step.Name)
		err := step.Apply(ctx)
		onDone(err)

		next := Transition(s.steps, st, phase, err)
		if next.Kind == PhaseFailed {
			lgr.Error("Step failed", "err", err, "duration", time.Since(start))
			results = append(results, StepResult{Name: step.Name, Outcome: StepFailed, Err: err})
			st.LastError = fmt.Sprintf("%s: %v", step.Name, err)
			if saveErr := s.saver.Save(st); saveErr != nil {
				err = multierror.Append(err, fmt.Errorf("failed to persist run state: %w", saveErr))
			}
			return results, &StepError{Step: step.Name, StatePath: s.saver.Path(), Err: err}
		}

		st.LastError = ""
		if err := s.saver.Save(st); err != nil {
			return results, fmt.Errorf("step %s completed but the run state could not be saved to %s: %w", step.Name, s.saver.Path(), err)
		}
		lgr.Info("Step completed", "duration", time.Since(start))
		results = append(results, StepResult{Name: step.Name, Outcome: StepSucceeded})
		results = s.skip(results, phase.Step+1, next.Step)
		phase = next
	}
	return results, nil
}

func (s *Sequencer) skip(results []StepResult, from, to int) []StepResult {
	for i := from; i < to; i++ {
		s.log.Info("Step already completed, skipping", "step", s.steps[i].Name)
		s.m.RecordStepSkipped(s.steps[i].Name)
		results = append(results, StepResult{Name: s.steps[i].Name, Outcome: StepSkipped})
	}
	return results
}
