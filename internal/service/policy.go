package service

import "github.com/UnknownOlympus/iris/internal/models"

// DefaultFailureThreshold is the number of consecutive empty cycles at
// MinZoom after which a sweep gives up.
const DefaultFailureThreshold = 3

// State is a step of the sweep loop.
type State int

const (
	AwaitingBounds State = iota
	Harvesting
	Evaluating
	Terminated
)

func (s State) String() string {
	switch s {
	case AwaitingBounds:
		return "awaiting_bounds"
	case Harvesting:
		return "harvesting"
	case Evaluating:
		return "evaluating"
	case Terminated:
		return "terminated"
	default:
		return "unknown"
	}
}

// Refresh tells how the next cycle obtains its bounds from the view state.
type Refresh int

const (
	// RefreshNone reuses the bounds carried in the decision.
	RefreshNone Refresh = iota
	// RefreshCurrent re-reads the current view without waiting for the operator.
	RefreshCurrent
	// RefreshManual waits until the operator selects a new view.
	RefreshManual
)

// Decision is the outcome of evaluating a cycle.
type Decision struct {
	Next     State
	Bounds   *models.Bounds // Bounds is set when the next cycle reuses a widened view.
	Failures int            // Failures is the consecutive-failure count after this cycle.
	Widened  bool
	Flush    bool // Flush asks for the cycle's submissions to be written out.
	Refresh  Refresh
}

// Outcome labels the decision for metrics and the audit store.
func (d Decision) Outcome() string {
	switch {
	case d.Next == Terminated:
		return "exhausted"
	case d.Flush:
		return "submitted"
	case d.Widened:
		return "widened"
	default:
		return "retry"
	}
}

// Policy decides what follows a cycle.
type Policy struct {
	Threshold int
}

// NewPolicy returns a Policy; a non-positive threshold selects DefaultFailureThreshold.
func NewPolicy(threshold int) Policy {
	if threshold <= 0 {
		threshold = DefaultFailureThreshold
	}

	return Policy{Threshold: threshold}
}

// Evaluate is pure. A cycle with submissions resets the failure count. An
// empty cycle widens the view while the zoom allows it, otherwise it counts
// as a failure and ends the sweep once the threshold is reached.
func (p Policy) Evaluate(stats models.CycleStats, failures int) Decision {
	if stats.Succeeded() {
		return Decision{Next: AwaitingBounds, Flush: true, Refresh: RefreshCurrent}
	}

	failures++

	if widened, ok := stats.Bounds.Widen(); ok {
		return Decision{Next: AwaitingBounds, Bounds: &widened, Widened: true}
	}

	if failures >= p.Threshold {
		return Decision{Next: Terminated, Failures: failures}
	}

	return Decision{Next: AwaitingBounds, Failures: failures, Refresh: RefreshManual}
}
