package scenario

import (
	"errors"
	"fmt"
	"slices"

	"github.com/rs/zerolog/log"

	"github.com/getsentry/go-dlist/dlist"
)

// Runner applies steps to a list it owns, remembering labelled nodes.
//
// Labelled nodes stay known after they are deleted so that they can be
// inserted again or used to check that a detached node is rejected as anchor.
type Runner struct {
	list   *dlist.DoublyLinkedList[int]
	labels map[string]*dlist.Node[int]
}

// Outcome is the result of one applied step.
type Outcome struct {
	Op    string `json:"op"`
	Value *int   `json:"value,omitempty"`
	Error string `json:"error,omitempty"`
	Size  int    `json:"size"`
}

// Report is the result of a complete scenario run.
type Report struct {
	Name     string    `json:"name"`
	Outcomes []Outcome `json:"outcomes"`
	Final    []int     `json:"final"`
}

func NewRunner() *Runner {
	return &Runner{
		list:   dlist.New[int](),
		labels: make(map[string]*dlist.Node[int]),
	}
}

// List returns the list the runner operates on.
func (r *Runner) List() *dlist.DoublyLinkedList[int] {
	return r.list
}

// Apply runs a single step.
//
// An error is returned when the operation fails and the step did not expect
// it, when the outcome differs from the step expectations, or when the list
// fails its consistency check afterwards.
func (r *Runner) Apply(step Step) (Outcome, error) {
	outcome := Outcome{Op: step.Op}
	handler := Lookup(step.Op)
	if handler == nil {
		return outcome, fmt.Errorf("%w: '%s'", ErrUnknownOp, step.Op)
	}

	val, opErr := handler(r, step)
	outcome.Value = val
	outcome.Size = r.list.Size()
	if opErr != nil {
		outcome.Error = ErrorName(opErr)
	}

	if err := r.list.Check(); err != nil {
		return outcome, err
	}

	if len(step.ExpectError) > 0 {
		expected := errorByName(step.ExpectError)
		if expected == nil {
			return outcome, fmt.Errorf("%w: '%s'", ErrUnknownErrorName, step.ExpectError)
		}
		if !errors.Is(opErr, expected) {
			return outcome, fmt.Errorf("%w: expected error %s got %v", ErrExpectation, step.ExpectError, opErr)
		}
		return outcome, nil
	}
	if opErr != nil {
		return outcome, opErr
	}
	if step.Expect != nil && (val == nil || *val != *step.Expect) {
		return outcome, fmt.Errorf("%w: expected value %d got %s", ErrExpectation, *step.Expect, formatValue(val))
	}
	return outcome, nil
}

// Run applies all the steps of a scenario, stopping at the first failure.
//
// The returned report holds the outcomes of the steps applied so far.
func (r *Runner) Run(s Scenario) (*Report, error) {
	report := &Report{Name: s.Name}
	for idx, step := range s.Steps {
		outcome, err := r.Apply(step)
		report.Outcomes = append(report.Outcomes, outcome)
		if err != nil {
			log.Error().Err(err).Msgf("Scenario %s failed at step %d (%s)", s.Name, idx, step.Op)
			return report, fmt.Errorf("scenario %s step %d (%s): %w", s.Name, idx, step.Op, err)
		}
		log.Debug().Str("scenario", s.Name).Int("step", idx).Str("op", step.Op).
			Str("value", formatValue(outcome.Value)).Str("error", outcome.Error).
			Msg(r.list.String())
	}
	report.Final = r.list.Values()

	if s.Expect != nil && !slices.Equal(s.Expect, report.Final) {
		return report, fmt.Errorf("scenario %s: %w: expected contents %v got %v", s.Name, ErrExpectation, s.Expect, report.Final)
	}
	log.Info().Msgf("Scenario %s passed, %d steps, final contents %s", s.Name, len(s.Steps), r.list)
	return report, nil
}

func (r *Runner) anchor(step Step) (*dlist.Node[int], error) {
	if len(step.Anchor) == 0 {
		return nil, nil // the list reports the nil anchor
	}
	n, ok := r.labels[step.Anchor]
	if !ok {
		return nil, fmt.Errorf("%w: anchor '%s'", ErrUnknownLabel, step.Anchor)
	}
	return n, nil
}

// insert links the node named by the step label, or a new node holding the
// step value, and binds the label once the insertion succeeded.
func (r *Runner) insert(step Step, link func(*dlist.Node[int]) error) error {
	n, known := r.labels[step.Label]
	if !known || len(step.Label) == 0 {
		n = dlist.NewNode(step.Value)
	}
	if err := link(n); err != nil {
		return err
	}
	if len(step.Label) > 0 {
		r.labels[step.Label] = n
	}
	return nil
}

func formatValue(val *int) string {
	if val == nil {
		return "none"
	}
	return fmt.Sprintf("%d", *val)
}
