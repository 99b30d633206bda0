package action

import (
	"errors"
	"fmt"
)

// ErrAbort is returned by a phase hook when the action's prerequisites are
// gone (target died, target left range). The run ends as OutcomeFailed.
var ErrAbort = errors.New("action aborted")

// Phase is one suspendable step of an action body.
//
// Enter runs once when the phase begins. Update runs on every later tick
// while the phase is current, with the time elapsed since the previous tick.
// The phase ends once Duration seconds have elapsed; a zero Duration phase
// ends in the same tick it begins.
type Phase struct {
	Name     string
	Duration float64
	Enter    func(r *Run) error
	Update   func(r *Run, dt float64) error
}

// Body is the phase sequence executed for one action.
type Body struct {
	Phases []Phase
	// OnExit runs on every exit path: completion, failure, interrupt, cancel.
	OnExit func(r *Run, o Outcome)
}

// Duration returns the sum of all phase durations.
func (b Body) Duration() float64 {
	total := 0.0
	for _, p := range b.Phases {
		total += p.Duration
	}
	return total
}

// Outcome describes how a run ended.
type Outcome uint8

const (
	OutcomeCompleted Outcome = iota
	OutcomeInterrupted
	OutcomeFailed
	OutcomeCancelled
)

func (o Outcome) String() string {
	switch o {
	case OutcomeCompleted:
		return "completed"
	case OutcomeInterrupted:
		return "interrupted"
	case OutcomeFailed:
		return "failed"
	case OutcomeCancelled:
		return "cancelled"
	default:
		return fmt.Sprintf("Outcome(%d)", uint8(o))
	}
}
