package sim

import (
	"gonum.org/v1/gonum/mat"

	"github.com/pthm-cable/icing/systems"
)

// Status is the driver's state-machine position.
type Status int

const (
	// StatusRunning means another iteration may be stepped.
	StatusRunning Status = iota
	// StatusStopped is terminal; see State.Reason.
	StatusStopped
)

func (s Status) String() string {
	if s == StatusStopped {
		return "stopped"
	}
	return "running"
}

// Reason records which terminal transition stopped the run.
type Reason int

const (
	ReasonNone Reason = iota
	ReasonBudgetExhausted
	ReasonIceDetected
	// ReasonIterationLimit is an external stop requested through Abort.
	ReasonIterationLimit
)

func (r Reason) String() string {
	switch r {
	case ReasonBudgetExhausted:
		return "budget_exhausted"
	case ReasonIceDetected:
		return "ice_detected"
	case ReasonIterationLimit:
		return "iteration_limit"
	default:
		return "none"
	}
}

// State is the run's mutable bookkeeping. Droplets only grows; once Status is
// StatusStopped nothing changes again.
type State struct {
	Droplets      int // total deposited so far
	Budget        int // maximum droplets for the run
	Iteration     int // completed spray/deposit/diffuse iterations
	Status        Status
	Reason        Reason
	DropletsAtIce int // droplet count when ice was first detected
}

// BudgetRemaining returns how many droplets may still be deposited.
func (s State) BudgetRemaining() int {
	if s.Droplets >= s.Budget {
		return 0
	}
	return s.Budget - s.Droplets
}

// Result is the contract handed to the visualization collaborator.
type Result struct {
	Field          *mat.Dense      // NX x NY temperatures, a copy
	Mask           systems.IceMask // cells below the freezing point
	Reason         Reason
	Droplets       int
	DropletsAtIce  int
	Iterations     int
	IceFormed      bool
	MinTemperature float64
}
