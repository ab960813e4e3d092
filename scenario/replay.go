package scenario

import (
	"errors"
	"fmt"

	"github.com/annchain/settler/core"
	"github.com/annchain/settler/types"
	log "github.com/sirupsen/logrus"
)

var ErrExpectation = errors.New("scenario expectation not met")

// Outcome records what one step did. Admitted is set for schedule steps,
// Settlements and State for settle steps. Mismatch describes a failed
// expectation.
type Outcome struct {
	Step        int                `json:"step"`
	Op          string             `json:"op"`
	Transaction *types.Transaction `json:"transaction,omitempty"`
	Admitted    *bool              `json:"admitted,omitempty"`
	Settlements []core.Settlement  `json:"settlements,omitempty"`
	State       *core.State        `json:"state,omitempty"`
	Mismatch    string             `json:"mismatch,omitempty"`
}

// Report is the result of a replay.
type Report struct {
	Name     string     `json:"name"`
	Outcomes []Outcome  `json:"outcomes"`
	Final    core.State `json:"final"`
}

func (r *Report) Mismatches() int {
	n := 0
	for _, o := range r.Outcomes {
		if o.Mismatch != "" {
			n++
		}
	}
	return n
}

// Replay runs every step of s against e. All steps run even if some
// expectations fail; the report is returned with ErrExpectation then.
// An invariant violation during settlement stops the replay and is returned
// as an error together with the outcomes so far.
func Replay(e *core.Executor, s *Script) (report *Report, err error) {
	report = &Report{Name: s.Name}
	defer func() {
		if r := recover(); r != nil {
			violation, ok := r.(*types.InvariantViolation)
			if !ok {
				panic(r)
			}
			report.Final = e.State()
			err = fmt.Errorf("step %d: %w", len(report.Outcomes), violation)
		}
	}()

	for i, step := range s.Steps {
		var outcome Outcome
		switch step.Op {
		case OpSchedule:
			outcome, err = replaySchedule(e, i, step)
			if err != nil {
				return report, err
			}
		case OpSettle:
			outcome = replaySettle(e, i, step)
		default:
			return report, fmt.Errorf("%w: step %d: unknown op %q", ErrBadScript, i, step.Op)
		}
		if outcome.Mismatch != "" {
			log.WithField("scenario", s.Name).WithField("step", i).Warn(outcome.Mismatch)
		}
		report.Outcomes = append(report.Outcomes, outcome)
	}
	report.Final = e.State()

	if n := report.Mismatches(); n > 0 {
		return report, fmt.Errorf("%w: %d of %d steps", ErrExpectation, n, len(s.Steps))
	}
	return report, nil
}

func replaySchedule(e *core.Executor, i int, step Step) (Outcome, error) {
	tx, err := step.Transaction()
	if err != nil {
		return Outcome{}, fmt.Errorf("%w: step %d: %v", ErrBadScript, i, err)
	}
	admitted := e.Schedule(tx) == nil
	outcome := Outcome{Step: i, Op: OpSchedule, Transaction: &tx, Admitted: &admitted}

	switch {
	case step.Expect == ExpectAdmitted && !admitted:
		outcome.Mismatch = fmt.Sprintf("expected %s to be admitted", tx)
	case step.Expect == ExpectRejected && admitted:
		outcome.Mismatch = fmt.Sprintf("expected %s to be rejected", tx)
	}
	return outcome, nil
}

func replaySettle(e *core.Executor, i int, step Step) Outcome {
	settlements := e.Settle()
	state := e.State()
	outcome := Outcome{Step: i, Op: OpSettle, Settlements: settlements, State: &state}
	if step.State != nil {
		if want := step.State.toState(); want != state {
			outcome.Mismatch = fmt.Sprintf("expected state %s, got %s", want, state)
		}
	}
	return outcome
}
