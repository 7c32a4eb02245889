package harness

import (
	"github.com/roach88/reefcore/internal/core"
	"github.com/roach88/reefcore/internal/sim"
)

// Result is the outcome of running a case.
type Result struct {
	// Pass is true when no property or expectation failed.
	Pass bool `json:"pass"`

	// Errors lists every failure in the order found.
	Errors []string `json:"errors,omitempty"`

	// Snapshot is the final record.
	Snapshot core.Snapshot `json:"snapshot"`

	// Steps is the per-step trace.
	Steps []sim.StepRecord `json:"steps"`
}

// NewResult creates a passing result.
func NewResult() *Result {
	return &Result{Pass: true, Errors: []string{}}
}

// AddError records a failure and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}
